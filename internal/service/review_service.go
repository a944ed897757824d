package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/config"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/repository"
	"github.com/school-directory-api/internal/validation"
)

// prefectureKeys lists the answer-bag keys that may hold the campus
// prefecture, in priority order. The same semantic field has appeared under
// several names as the survey schema drifted; new legacy spellings are added
// here, not as new conditionals.
var prefectureKeys = []string{"campus_prefecture", "campusPrefecture", "prefecture"}

// reviewService is the concrete implementation of ReviewService
type reviewService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newReviewService creates a new ReviewService
func newReviewService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *reviewService {
	return &reviewService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "review").Logger(),
	}
}

// Create stores a submitted survey response
func (s *reviewService) Create(ctx context.Context, req *models.CreateReviewRequest) (*models.Review, error) {
	if errs := validation.ValidateReview(req); len(errs) > 0 {
		return nil, NewValidationError("invalid review", toFieldErrors(errs)...)
	}

	review := &models.Review{
		ID:             uuid.New().String(),
		SchoolName:     req.SchoolName,
		Answers:        req.Answers,
		RatingOverall:  req.RatingOverall,
		RatingTeachers: req.RatingTeachers,
		RatingCampus:   req.RatingCampus,
		RatingSupport:  req.RatingSupport,
		Pros:           req.Pros,
		Cons:           req.Cons,
		Visible:        true,
		CreatedAt:      time.Now(),
	}
	if review.Answers == nil {
		review.Answers = map[string]any{}
	}

	if req.SchoolID != "" {
		school, err := s.repos.School.GetByID(ctx, req.SchoolID)
		if err != nil {
			return nil, fmt.Errorf("failed to get school: %w", err)
		}
		if school == nil {
			return nil, ErrNotFound
		}
		review.SchoolID = &school.ID
		if review.SchoolName == "" {
			review.SchoolName = school.Name
		}
	}

	if err := s.repos.Review.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.log.Info().Str("review_id", review.ID).Msg("Review submitted")
	return review, nil
}

// Get retrieves a review by ID
func (s *reviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	review, err := s.repos.Review.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, ErrNotFound
	}
	return review, nil
}

// List returns a page of reviews for the admin listing
func (s *reviewService) List(ctx context.Context, filter *models.ReviewListFilter) ([]*models.Review, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = s.cfg.Listing.DefaultPageSize
	}
	if filter.Limit > s.cfg.Listing.MaxPageSize {
		filter.Limit = s.cfg.Listing.MaxPageSize
	}

	reviews, total, err := s.repos.Review.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

// SetVisibility updates a review's visibility flag
func (s *reviewService) SetVisibility(ctx context.Context, id string, visible bool) error {
	review, err := s.repos.Review.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return ErrNotFound
	}

	if err := s.repos.Review.SetVisibility(ctx, id, visible); err != nil {
		return fmt.Errorf("failed to set review visibility: %w", err)
	}
	return nil
}

// SchoolStats computes per-school aggregates over visible reviews. Each
// rating dimension averages only its present values, rounded to 2 decimal
// places; a dimension with no values reports a nil average, not zero.
func (s *reviewService) SchoolStats(ctx context.Context, schoolID string) (*models.SchoolStats, error) {
	school, err := s.repos.School.GetByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrNotFound
	}

	reviews, err := s.repos.Review.ListBySchool(ctx, schoolID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	stats := &models.SchoolStats{
		SchoolID:    schoolID,
		ReviewCount: len(reviews),
		Averages:    make(map[string]*float64, len(models.RatingDimensions)),
	}

	for _, dim := range models.RatingDimensions {
		sum, n := 0, 0
		for _, review := range reviews {
			if v := review.Rating(dim); v != nil {
				sum += *v
				n++
			}
		}
		if n == 0 {
			stats.Averages[dim] = nil
			continue
		}
		avg := round2(float64(sum) / float64(n))
		stats.Averages[dim] = &avg
	}

	return stats, nil
}

// PrefectureStats tallies the campus-prefecture answer across a school's
// visible reviews. Per review, the first present key in prefectureKeys wins;
// an array value contributes its first element; blank values are absent and
// the review is excluded from the counted total. Percentages are of counted
// responses, not of all reviews.
func (s *reviewService) PrefectureStats(ctx context.Context, schoolID string) (*models.PrefectureStatsResponse, error) {
	school, err := s.repos.School.GetByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrNotFound
	}

	reviews, err := s.repos.Review.ListBySchool(ctx, schoolID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	counts := make(map[string]int)
	total := 0
	for _, review := range reviews {
		value, ok := answerValue(review.Answers, prefectureKeys)
		if !ok {
			continue
		}
		counts[value]++
		total++
	}

	stats := make([]models.PrefectureStat, 0, len(counts))
	for prefecture, count := range counts {
		stats = append(stats, models.PrefectureStat{
			Prefecture: prefecture,
			Count:      count,
			Percentage: int(math.Round(float64(count) / float64(total) * 100)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Prefecture < stats[j].Prefecture
	})

	return &models.PrefectureStatsResponse{
		PrefectureStats: stats,
		TotalResponses:  total,
	}, nil
}

// Rankings composes per-school review counts and mean overall ratings across
// all visible schools. Top-rated requires at least the configured minimum of
// reviews and a present mean; most-reviewed has no threshold.
func (s *reviewService) Rankings(ctx context.Context) (*models.Rankings, error) {
	entries, err := s.repos.Review.SchoolAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate schools: %w", err)
	}

	for _, entry := range entries {
		if entry.AverageRating != nil {
			rounded := round2(*entry.AverageRating)
			entry.AverageRating = &rounded
		}
	}

	topRated := make([]models.RankingEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ReviewCount >= s.cfg.Listing.RankingMinCount && entry.AverageRating != nil {
			topRated = append(topRated, *entry)
		}
	}
	sort.Slice(topRated, func(i, j int) bool {
		if *topRated[i].AverageRating != *topRated[j].AverageRating {
			return *topRated[i].AverageRating > *topRated[j].AverageRating
		}
		return topRated[i].ReviewCount > topRated[j].ReviewCount
	})

	mostReviewed := make([]models.RankingEntry, 0, len(entries))
	for _, entry := range entries {
		mostReviewed = append(mostReviewed, *entry)
	}
	sort.Slice(mostReviewed, func(i, j int) bool {
		return mostReviewed[i].ReviewCount > mostReviewed[j].ReviewCount
	})

	size := s.cfg.Listing.RankingSize
	if len(topRated) > size {
		topRated = topRated[:size]
	}
	if len(mostReviewed) > size {
		mostReviewed = mostReviewed[:size]
	}

	return &models.Rankings{TopRated: topRated, MostReviewed: mostReviewed}, nil
}

// answerValue resolves an answer field that may appear under several
// historical key names. Keys are tried in priority order; the first present
// key decides. A list value contributes its first element; blank values
// count as absent.
func answerValue(answers map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		raw, ok := answers[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			if v != "" {
				return v, true
			}
		case []any:
			if len(v) > 0 {
				if str, ok := v[0].(string); ok && str != "" {
					return str, true
				}
			}
		case []string:
			if len(v) > 0 && v[0] != "" {
				return v[0], true
			}
		}
		return "", false
	}
	return "", false
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
