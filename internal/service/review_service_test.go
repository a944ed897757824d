package service

import (
	"context"
	"testing"

	"github.com/school-directory-api/internal/models"
)

func TestReviewService_Create(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Review Academy", models.SchoolStatusActive)

	review, err := svc.Create(ctx, &models.CreateReviewRequest{
		SchoolID:      school.ID,
		RatingOverall: intp(4),
		Pros:          "flexible schedule",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if review.SchoolID == nil || *review.SchoolID != school.ID {
		t.Error("Review should reference the school")
	}
	if review.SchoolName != "Review Academy" {
		t.Errorf("Expected school name copied onto the review, got %q", review.SchoolName)
	}
	if !review.Visible {
		t.Error("New review should be visible")
	}
	if review.Answers == nil {
		t.Error("Answers should default to an empty map")
	}
}

func TestReviewService_Create_Validation(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	// Neither school_id nor school_name
	if _, err := svc.Create(ctx, &models.CreateReviewRequest{}); !IsValidation(err) {
		t.Errorf("Expected validation error without school reference, got %v", err)
	}

	// Rating out of range
	_, err := svc.Create(ctx, &models.CreateReviewRequest{
		SchoolName:    "Somewhere High",
		RatingOverall: intp(6),
	})
	if !IsValidation(err) {
		t.Errorf("Expected validation error for rating 6, got %v", err)
	}

	// Unknown school ID
	_, err = svc.Create(ctx, &models.CreateReviewRequest{SchoolID: "missing-id"})
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for unknown school, got %v", err)
	}
}

func TestReviewService_SchoolStats_NullableDimensions(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Stats Academy", models.SchoolStatusActive)

	// Overall present on two of three reviews; teachers never rated
	r1 := seedReview(deps, school.ID, intp(5), nil)
	r1.RatingCampus = intp(4)
	deps.reviews.Create(ctx, r1)
	seedReview(deps, school.ID, nil, nil)
	seedReview(deps, school.ID, intp(3), nil)

	stats, err := svc.SchoolStats(ctx, school.ID)
	if err != nil {
		t.Fatalf("SchoolStats failed: %v", err)
	}
	if stats.ReviewCount != 3 {
		t.Errorf("Expected 3 reviews counted, got %d", stats.ReviewCount)
	}

	// mean(5, 3) = 4.00; the nil rating is excluded, not treated as zero
	overall := stats.Averages["overall"]
	if overall == nil || *overall != 4.0 {
		t.Errorf("Expected overall average 4.00, got %v", overall)
	}

	campus := stats.Averages["campus"]
	if campus == nil || *campus != 4.0 {
		t.Errorf("Expected campus average 4.00, got %v", campus)
	}

	// A dimension with no values reports nil, never zero
	if stats.Averages["teachers"] != nil {
		t.Errorf("Expected nil teachers average, got %v", *stats.Averages["teachers"])
	}
}

func TestReviewService_SchoolStats_ExcludesHiddenReviews(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Moderated Academy", models.SchoolStatusActive)
	seedReview(deps, school.ID, intp(5), nil)
	hidden := seedReview(deps, school.ID, intp(1), nil)
	deps.reviews.SetVisibility(ctx, hidden.ID, false)

	stats, err := svc.SchoolStats(ctx, school.ID)
	if err != nil {
		t.Fatalf("SchoolStats failed: %v", err)
	}
	if stats.ReviewCount != 1 {
		t.Errorf("Expected 1 visible review, got %d", stats.ReviewCount)
	}
	if overall := stats.Averages["overall"]; overall == nil || *overall != 5.0 {
		t.Errorf("Hidden review should not drag the average, got %v", overall)
	}
}

func TestReviewService_SchoolStats_Rounding(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Round Academy", models.SchoolStatusActive)
	seedReview(deps, school.ID, intp(5), nil)
	seedReview(deps, school.ID, intp(4), nil)
	seedReview(deps, school.ID, intp(4), nil)

	stats, err := svc.SchoolStats(ctx, school.ID)
	if err != nil {
		t.Fatalf("SchoolStats failed: %v", err)
	}
	// mean(5, 4, 4) = 4.333... -> 4.33
	if overall := stats.Averages["overall"]; overall == nil || *overall != 4.33 {
		t.Errorf("Expected overall average 4.33, got %v", overall)
	}
}

func TestReviewService_PrefectureStats(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Prefecture Academy", models.SchoolStatusActive)

	// Current key, legacy key, array value, and a review with no answer
	seedReview(deps, school.ID, nil, map[string]any{"campus_prefecture": "東京都"})
	seedReview(deps, school.ID, nil, map[string]any{"prefecture": "大阪府"})
	seedReview(deps, school.ID, nil, map[string]any{"campusPrefecture": []any{"東京都", "千葉県"}})
	seedReview(deps, school.ID, nil, map[string]any{"enrollment_year": "2023"})

	stats, err := svc.PrefectureStats(ctx, school.ID)
	if err != nil {
		t.Fatalf("PrefectureStats failed: %v", err)
	}

	// Only answered reviews count toward the total
	if stats.TotalResponses != 3 {
		t.Errorf("Expected 3 counted responses, got %d", stats.TotalResponses)
	}
	if len(stats.PrefectureStats) != 2 {
		t.Fatalf("Expected 2 prefecture buckets, got %d", len(stats.PrefectureStats))
	}

	// Sorted by count descending, 東京都 counted twice across both key spellings
	first := stats.PrefectureStats[0]
	if first.Prefecture != "東京都" || first.Count != 2 || first.Percentage != 67 {
		t.Errorf("Unexpected first bucket: %+v", first)
	}
	second := stats.PrefectureStats[1]
	if second.Prefecture != "大阪府" || second.Count != 1 || second.Percentage != 33 {
		t.Errorf("Unexpected second bucket: %+v", second)
	}
}

func TestReviewService_PrefectureStats_FirstPresentKeyDecides(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Key Priority Academy", models.SchoolStatusActive)

	// The highest-priority key is present but blank; the legacy key is ignored
	seedReview(deps, school.ID, nil, map[string]any{
		"campus_prefecture": "",
		"prefecture":        "大阪府",
	})

	stats, err := svc.PrefectureStats(ctx, school.ID)
	if err != nil {
		t.Fatalf("PrefectureStats failed: %v", err)
	}
	if stats.TotalResponses != 0 {
		t.Errorf("Blank answer under the winning key should count as absent, got total %d", stats.TotalResponses)
	}
	if len(stats.PrefectureStats) != 0 {
		t.Errorf("Expected no buckets, got %v", stats.PrefectureStats)
	}
}

func TestReviewService_PrefectureStats_EmptySchool(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Quiet Academy", models.SchoolStatusActive)

	stats, err := svc.PrefectureStats(ctx, school.ID)
	if err != nil {
		t.Fatalf("PrefectureStats failed: %v", err)
	}
	if stats.TotalResponses != 0 || len(stats.PrefectureStats) != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestReviewService_Rankings(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	// A: 3 reviews, mean 4.67; B: 5 reviews, mean 4.2; C: 2 reviews, mean 5.0
	schoolA := seedSchool(deps, "Academy A", models.SchoolStatusActive)
	schoolB := seedSchool(deps, "Academy B", models.SchoolStatusActive)
	schoolC := seedSchool(deps, "Academy C", models.SchoolStatusActive)

	for _, v := range []int{5, 5, 4} {
		seedReview(deps, schoolA.ID, intp(v), nil)
	}
	for _, v := range []int{4, 4, 4, 4, 5} {
		seedReview(deps, schoolB.ID, intp(v), nil)
	}
	for _, v := range []int{5, 5} {
		seedReview(deps, schoolC.ID, intp(v), nil)
	}

	rankings, err := svc.Rankings(ctx)
	if err != nil {
		t.Fatalf("Rankings failed: %v", err)
	}

	// C has the best mean but is below the review threshold
	if len(rankings.TopRated) != 2 {
		t.Fatalf("Expected 2 top-rated schools, got %d", len(rankings.TopRated))
	}
	if rankings.TopRated[0].SchoolID != schoolA.ID {
		t.Errorf("Expected A first in top-rated, got %s", rankings.TopRated[0].Name)
	}
	if avg := rankings.TopRated[0].AverageRating; avg == nil || *avg != 4.67 {
		t.Errorf("Expected A average 4.67, got %v", avg)
	}
	if rankings.TopRated[1].SchoolID != schoolB.ID {
		t.Errorf("Expected B second in top-rated, got %s", rankings.TopRated[1].Name)
	}

	// Most-reviewed has no threshold: B(5), A(3), C(2)
	if len(rankings.MostReviewed) != 3 {
		t.Fatalf("Expected 3 most-reviewed schools, got %d", len(rankings.MostReviewed))
	}
	wantOrder := []string{schoolB.ID, schoolA.ID, schoolC.ID}
	for i, want := range wantOrder {
		if rankings.MostReviewed[i].SchoolID != want {
			t.Errorf("Most-reviewed position %d: expected %s, got %s", i, want, rankings.MostReviewed[i].SchoolID)
		}
	}
}

func TestReviewService_Rankings_ExcludesUnratedFromTopRated(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	// Enough reviews, but none carry an overall rating
	school := seedSchool(deps, "Unrated Academy", models.SchoolStatusActive)
	for i := 0; i < 4; i++ {
		seedReview(deps, school.ID, nil, nil)
	}

	rankings, err := svc.Rankings(ctx)
	if err != nil {
		t.Fatalf("Rankings failed: %v", err)
	}
	if len(rankings.TopRated) != 0 {
		t.Errorf("School without ratings should not appear in top-rated, got %d entries", len(rankings.TopRated))
	}
	if len(rankings.MostReviewed) != 1 {
		t.Errorf("School should still appear in most-reviewed, got %d entries", len(rankings.MostReviewed))
	}
}

func TestReviewService_SetVisibility(t *testing.T) {
	deps := newTestDeps()
	svc := newReviewService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Visibility Academy", models.SchoolStatusActive)
	review := seedReview(deps, school.ID, intp(2), nil)

	if err := svc.SetVisibility(ctx, review.ID, false); err != nil {
		t.Fatalf("SetVisibility failed: %v", err)
	}
	stored, _ := deps.reviews.GetByID(ctx, review.ID)
	if stored.Visible {
		t.Error("Review should be hidden")
	}

	if err := svc.SetVisibility(ctx, "missing-id", false); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
