package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/repository"
)

// exportAnswerKeys is the fixed question-ordered column layout of the
// open-ended answer bag in the review export
var exportAnswerKeys = []string{
	"campus_prefecture",
	"enrollment_year",
	"course_type",
	"commute_frequency",
	"tuition_band",
	"decision_factor",
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamReviewsCSV writes all raw review rows as a UTF-8 CSV prefixed with a
// byte-order mark, for offline analysis in spreadsheet tools.
func (s *exportService) StreamReviewsCSV(ctx context.Context, w io.Writer) error {
	s.log.Info().Msg("Starting reviews export")

	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "school_id", "school_name"}
	for _, dim := range models.RatingDimensions {
		header = append(header, "rating_"+dim)
	}
	header = append(header, exportAnswerKeys...)
	header = append(header, "pros", "cons", "visible", "created_at")
	if err := writer.Write(header); err != nil {
		return err
	}

	count := 0
	err := s.repos.Review.StreamAll(ctx, func(review *models.Review) error {
		record := []string{review.ID, strPtrValue(review.SchoolID), review.SchoolName}
		for _, dim := range models.RatingDimensions {
			record = append(record, intPtrValue(review.Rating(dim)))
		}
		for _, key := range exportAnswerKeys {
			value, _ := answerValue(review.Answers, []string{key})
			record = append(record, value)
		}
		record = append(record,
			review.Pros,
			review.Cons,
			strconv.FormatBool(review.Visible),
			review.CreatedAt.Format("2006-01-02T15:04:05Z"),
		)
		count++
		return writer.Write(record)
	})

	s.log.Info().Int("count", count).Msg("Reviews export completed")
	return err
}

// GetCount returns the row count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "schools":
		return s.repos.School.Count(ctx)
	case "aliases":
		return s.repos.Alias.Count(ctx)
	case "reviews":
		return s.repos.Review.Count(ctx)
	case "articles":
		return s.repos.Article.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}

func strPtrValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intPtrValue(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
