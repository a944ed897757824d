package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/config"
	"github.com/school-directory-api/internal/mocks"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/normalize"
	"github.com/school-directory-api/internal/repository"
)

// testDeps bundles the in-memory repositories behind a Repositories value so
// the service constructors can be exercised without a database
type testDeps struct {
	schools  *mocks.MockSchoolRepository
	aliases  *mocks.MockAliasRepository
	reviews  *mocks.MockReviewRepository
	likes    *mocks.MockLikeRepository
	articles *mocks.MockArticleRepository
	repos    *repository.Repositories
}

func newTestDeps() *testDeps {
	schools := mocks.NewMockSchoolRepository()
	reviews := mocks.NewMockReviewRepository()
	reviews.Schools = schools

	deps := &testDeps{
		schools:  schools,
		aliases:  mocks.NewMockAliasRepository(),
		reviews:  reviews,
		likes:    mocks.NewMockLikeRepository(),
		articles: mocks.NewMockArticleRepository(),
	}
	deps.repos = &repository.Repositories{
		School:  deps.schools,
		Alias:   deps.aliases,
		Review:  deps.reviews,
		Like:    deps.likes,
		Article: deps.articles,
	}
	return deps
}

func testConfig() *config.Config {
	return &config.Config{
		Listing: config.ListingConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
			AutocompleteMax: 10,
			RankingSize:     10,
			RankingMinCount: 3,
		},
	}
}

// seedSchool inserts a school directly into the mock repository
func seedSchool(deps *testDeps, name string, status models.SchoolStatus) *models.School {
	school := &models.School{
		ID:             uuid.New().String(),
		Name:           name,
		NormalizedName: normalize.Fold(name),
		Slug:           normalize.Slugify(name),
		Prefectures:    []string{},
		Visible:        true,
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	deps.schools.Schools[school.ID] = school
	return school
}

// seedReview inserts a visible review for a school with the given overall rating
func seedReview(deps *testDeps, schoolID string, overall *int, answers map[string]any) *models.Review {
	if answers == nil {
		answers = map[string]any{}
	}
	review := &models.Review{
		ID:            uuid.New().String(),
		SchoolID:      &schoolID,
		Answers:       answers,
		RatingOverall: overall,
		Visible:       true,
		CreatedAt:     time.Now(),
	}
	deps.reviews.Create(context.Background(), review)
	return review
}

func intp(v int) *int {
	return &v
}

var testLog = zerolog.Nop()
