package service

import (
	"context"
	"strings"
	"testing"

	"github.com/school-directory-api/internal/models"
)

func TestSchoolService_CreateOrFind_NewSchool(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school, created, err := svc.CreateOrFind(ctx, "さくら通信高校", "東京都")
	if err != nil {
		t.Fatalf("CreateOrFind failed: %v", err)
	}
	if !created {
		t.Error("Expected created=true for a new school")
	}
	if school.Status != models.SchoolStatusPending {
		t.Errorf("Expected pending status, got %s", school.Status)
	}
	if !school.Visible {
		t.Error("New school should be visible")
	}
	if len(school.Prefectures) != 1 || school.Prefectures[0] != "東京都" {
		t.Errorf("Expected prefectures [東京都], got %v", school.Prefectures)
	}
	if len(deps.schools.Schools) != 1 {
		t.Errorf("Expected 1 stored school, got %d", len(deps.schools.Schools))
	}
}

func TestSchoolService_CreateOrFind_EquivalentNameFindsExisting(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	first, created, err := svc.CreateOrFind(ctx, "ABC High School", "")
	if err != nil || !created {
		t.Fatalf("First submission failed: created=%v err=%v", created, err)
	}

	// Full-width letters, different case, extra whitespace: all the same name
	variants := []string{
		"ＡＢＣ Ｈｉｇｈ Ｓｃｈｏｏｌ",
		"abc high school",
		"  ABC   High   School  ",
	}
	for _, variant := range variants {
		found, created, err := svc.CreateOrFind(ctx, variant, "")
		if err != nil {
			t.Fatalf("CreateOrFind(%q) failed: %v", variant, err)
		}
		if created {
			t.Errorf("CreateOrFind(%q) should find the existing school", variant)
		}
		if found.ID != first.ID {
			t.Errorf("CreateOrFind(%q) returned a different school", variant)
		}
	}

	if len(deps.schools.Schools) != 1 {
		t.Errorf("Expected 1 stored school after duplicates, got %d", len(deps.schools.Schools))
	}
}

func TestSchoolService_CreateOrFind_InvalidNames(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single rune", "a"},
		{"too long", strings.Repeat("あ", 41)},
		{"no word characters", "##!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateOrFind(ctx, tt.input, "")
			if !IsValidation(err) {
				t.Errorf("Expected validation error for %q, got %v", tt.input, err)
			}
		})
	}
}

func TestSchoolService_CreateOrFind_BoundaryLengths(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	if _, _, err := svc.CreateOrFind(ctx, strings.Repeat("あ", 40), ""); err != nil {
		t.Errorf("40-rune name should be accepted, got %v", err)
	}
	if _, _, err := svc.CreateOrFind(ctx, "ab", ""); err != nil {
		t.Errorf("2-rune name should be accepted, got %v", err)
	}
}

func TestSchoolService_Merge(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	source := seedSchool(deps, "Old Academy", models.SchoolStatusActive)
	target := seedSchool(deps, "New Academy", models.SchoolStatusActive)
	seedReview(deps, source.ID, intp(4), nil)
	seedReview(deps, source.ID, intp(5), nil)
	seedReview(deps, target.ID, intp(3), nil)

	if err := svc.Merge(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// Source name survives as an alias of the target
	aliases, _ := deps.aliases.ListBySchool(ctx, target.ID)
	if len(aliases) != 1 {
		t.Fatalf("Expected 1 alias on target, got %d", len(aliases))
	}
	if aliases[0].Name != "Old Academy" {
		t.Errorf("Expected alias 'Old Academy', got %q", aliases[0].Name)
	}

	// All reviews now point at the target
	for _, r := range deps.reviews.Reviews {
		if r.SchoolID == nil || *r.SchoolID != target.ID {
			t.Errorf("Review %s not reassigned to target", r.ID)
		}
	}

	// Source is flipped to merged
	merged, _ := deps.schools.GetByID(ctx, source.ID)
	if merged.Status != models.SchoolStatusMerged {
		t.Errorf("Expected source status merged, got %s", merged.Status)
	}
}

func TestSchoolService_Merge_Repeatable(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	source := seedSchool(deps, "Dup Academy", models.SchoolStatusActive)
	target := seedSchool(deps, "Main Academy", models.SchoolStatusActive)

	if err := svc.Merge(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("First merge failed: %v", err)
	}
	// A retry must not fail on the already-present alias
	if err := svc.Merge(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("Repeated merge failed: %v", err)
	}

	aliases, _ := deps.aliases.ListBySchool(ctx, target.ID)
	if len(aliases) != 1 {
		t.Errorf("Expected 1 alias after repeated merge, got %d", len(aliases))
	}
}

func TestSchoolService_Merge_SelfRejected(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	school := seedSchool(deps, "Solo Academy", models.SchoolStatusActive)

	err := svc.Merge(context.Background(), school.ID, school.ID)
	if err != ErrSelfMerge {
		t.Errorf("Expected ErrSelfMerge, got %v", err)
	}
}

func TestSchoolService_Merge_MissingSchools(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Real Academy", models.SchoolStatusActive)

	if err := svc.Merge(ctx, "missing-id", school.ID); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing source, got %v", err)
	}
	if err := svc.Merge(ctx, school.ID, "missing-id"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing target, got %v", err)
	}
}

func TestSchoolService_MergedSchoolInvisibleToLookup(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	source := seedSchool(deps, "Gone Academy", models.SchoolStatusActive)
	target := seedSchool(deps, "Kept Academy", models.SchoolStatusActive)

	if err := svc.Merge(ctx, source.ID, target.ID); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// The merged name no longer resolves through the registry lookup
	found, err := deps.schools.GetByNormalizedName(ctx, source.NormalizedName)
	if err != nil {
		t.Fatalf("GetByNormalizedName failed: %v", err)
	}
	if found != nil {
		t.Error("Merged school should not be found by normalized name")
	}
}

func TestSchoolService_AddAlias_Duplicate(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	school := seedSchool(deps, "Alias Academy", models.SchoolStatusActive)

	if _, err := svc.AddAlias(ctx, school.ID, "Nickname School"); err != nil {
		t.Fatalf("AddAlias failed: %v", err)
	}
	// Width/case variant of the same alias
	if _, err := svc.AddAlias(ctx, school.ID, "ｎｉｃｋｎａｍｅ ｓｃｈｏｏｌ"); err != ErrAliasExists {
		t.Errorf("Expected ErrAliasExists, got %v", err)
	}
}

func TestSchoolService_RemoveAlias_OwnershipEnforced(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	schoolA := seedSchool(deps, "Academy A", models.SchoolStatusActive)
	schoolB := seedSchool(deps, "Academy B", models.SchoolStatusActive)

	alias, err := svc.AddAlias(ctx, schoolA.ID, "A Nickname")
	if err != nil {
		t.Fatalf("AddAlias failed: %v", err)
	}

	// Deleting through the wrong school must not touch the alias
	if err := svc.RemoveAlias(ctx, schoolB.ID, alias.ID); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for cross-school delete, got %v", err)
	}
	if len(deps.aliases.Aliases) != 1 {
		t.Error("Alias should survive a cross-school delete attempt")
	}

	if err := svc.RemoveAlias(ctx, schoolA.ID, alias.ID); err != nil {
		t.Fatalf("RemoveAlias failed: %v", err)
	}
	if len(deps.aliases.Aliases) != 0 {
		t.Error("Alias should be deleted by its own school")
	}
}

func TestSchoolService_Autocomplete(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	active := seedSchool(deps, "Sakura Academy", models.SchoolStatusActive)
	seedSchool(deps, "Sakura Pending", models.SchoolStatusPending)
	hidden := seedSchool(deps, "Sakura Hidden", models.SchoolStatusActive)
	hidden.Visible = false

	// Matches are filtered to visible, active schools; the query is width-folded
	schools, err := svc.Autocomplete(ctx, "ＳＡＫＵＲＡ")
	if err != nil {
		t.Fatalf("Autocomplete failed: %v", err)
	}
	if len(schools) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(schools))
	}
	if schools[0].ID != active.ID {
		t.Errorf("Expected active school, got %s", schools[0].Name)
	}

	// An empty query is not an error
	schools, err = svc.Autocomplete(ctx, "   ")
	if err != nil {
		t.Fatalf("Autocomplete with blank query failed: %v", err)
	}
	if len(schools) != 0 {
		t.Errorf("Expected empty result for blank query, got %d", len(schools))
	}
}

func TestSchoolService_Update_Conflicts(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)
	ctx := context.Background()

	first := seedSchool(deps, "First Academy", models.SchoolStatusActive)
	second := seedSchool(deps, "Second Academy", models.SchoolStatusActive)

	// Renaming second to an equivalent of first's name
	_, err := svc.Update(ctx, second.ID, &models.UpdateSchoolRequest{
		Name: "ｆｉｒｓｔ ａｃａｄｅｍｙ",
		Slug: "second-academy",
	})
	if err != ErrNameExists {
		t.Errorf("Expected ErrNameExists, got %v", err)
	}

	// Taking first's slug
	_, err = svc.Update(ctx, second.ID, &models.UpdateSchoolRequest{
		Name: "Second Academy",
		Slug: first.Slug,
	})
	if err != ErrSlugExists {
		t.Errorf("Expected ErrSlugExists, got %v", err)
	}

	// Keeping its own name and slug is not a conflict
	updated, err := svc.Update(ctx, second.ID, &models.UpdateSchoolRequest{
		Name:   "Second Academy",
		Slug:   second.Slug,
		Status: "active",
	})
	if err != nil {
		t.Fatalf("Self-update failed: %v", err)
	}
	if updated.Name != "Second Academy" {
		t.Errorf("Unexpected name after update: %s", updated.Name)
	}
}

func TestSchoolService_Get_NotFound(t *testing.T) {
	deps := newTestDeps()
	svc := newSchoolService(deps.repos, testConfig(), testLog)

	if _, err := svc.Get(context.Background(), "missing-id"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
