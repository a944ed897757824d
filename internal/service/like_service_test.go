package service

import (
	"context"
	"testing"

	"github.com/school-directory-api/internal/models"
)

func TestLikeService_Toggle(t *testing.T) {
	deps := newTestDeps()
	svc := newLikeService(deps.repos, testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Liked Academy", models.SchoolStatusActive)
	review := seedReview(deps, school.ID, intp(5), nil)

	result, err := svc.Toggle(ctx, review.ID, "203.0.113.7", "like")
	if err != nil {
		t.Fatalf("Toggle like failed: %v", err)
	}
	if !result.Success {
		t.Error("Expected success")
	}
	if result.LikeCount != 1 {
		t.Errorf("Expected like count 1, got %d", result.LikeCount)
	}
	if !result.IsLiked {
		t.Error("Expected is_liked true")
	}

	result, err = svc.Toggle(ctx, review.ID, "203.0.113.7", "unlike")
	if err != nil {
		t.Fatalf("Toggle unlike failed: %v", err)
	}
	if result.LikeCount != 0 {
		t.Errorf("Expected like count 0 after unlike, got %d", result.LikeCount)
	}
	if result.IsLiked {
		t.Error("Expected is_liked false after unlike")
	}
}

func TestLikeService_Toggle_RepeatLikeIdempotent(t *testing.T) {
	deps := newTestDeps()
	svc := newLikeService(deps.repos, testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Repeat Academy", models.SchoolStatusActive)
	review := seedReview(deps, school.ID, intp(4), nil)

	for i := 0; i < 3; i++ {
		result, err := svc.Toggle(ctx, review.ID, "203.0.113.7", "like")
		if err != nil {
			t.Fatalf("Toggle attempt %d failed: %v", i+1, err)
		}
		if result.LikeCount != 1 {
			t.Errorf("Attempt %d: expected like count 1, got %d", i+1, result.LikeCount)
		}
	}
}

func TestLikeService_Toggle_UnlikeWithoutLike(t *testing.T) {
	deps := newTestDeps()
	svc := newLikeService(deps.repos, testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Unliked Academy", models.SchoolStatusActive)
	review := seedReview(deps, school.ID, intp(4), nil)

	result, err := svc.Toggle(ctx, review.ID, "203.0.113.9", "unlike")
	if err != nil {
		t.Fatalf("Unlike without prior like should succeed, got %v", err)
	}
	if result.LikeCount != 0 || result.IsLiked {
		t.Errorf("Expected count 0 and is_liked false, got %+v", result)
	}
}

func TestLikeService_Toggle_CountsPerClient(t *testing.T) {
	deps := newTestDeps()
	svc := newLikeService(deps.repos, testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Popular Academy", models.SchoolStatusActive)
	review := seedReview(deps, school.ID, intp(5), nil)

	svc.Toggle(ctx, review.ID, "203.0.113.1", "like")
	result, err := svc.Toggle(ctx, review.ID, "203.0.113.2", "like")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if result.LikeCount != 2 {
		t.Errorf("Expected like count 2 across clients, got %d", result.LikeCount)
	}
}

func TestLikeService_Toggle_InvalidAction(t *testing.T) {
	deps := newTestDeps()
	svc := newLikeService(deps.repos, testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Action Academy", models.SchoolStatusActive)
	review := seedReview(deps, school.ID, intp(5), nil)

	_, err := svc.Toggle(ctx, review.ID, "203.0.113.1", "upvote")
	if !IsValidation(err) {
		t.Errorf("Expected validation error for unknown action, got %v", err)
	}
}

func TestLikeService_Toggle_HiddenOrMissingReview(t *testing.T) {
	deps := newTestDeps()
	svc := newLikeService(deps.repos, testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Hidden Academy", models.SchoolStatusActive)
	hidden := seedReview(deps, school.ID, intp(1), nil)
	deps.reviews.SetVisibility(ctx, hidden.ID, false)

	if _, err := svc.Toggle(ctx, hidden.ID, "203.0.113.1", "like"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for hidden review, got %v", err)
	}
	if _, err := svc.Toggle(ctx, "missing-id", "203.0.113.1", "like"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing review, got %v", err)
	}
}
