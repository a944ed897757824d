package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/normalize"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// School name length bounds, in runes
const (
	SchoolNameMinLen = 2
	SchoolNameMaxLen = 40
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateSchoolName checks a user-submitted school name
func ValidateSchoolName(name string) []ValidationError {
	var errors []ValidationError

	length := utf8.RuneCountInString(name)
	if length < SchoolNameMinLen || length > SchoolNameMaxLen {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("name must be between %d and %d characters", SchoolNameMinLen, SchoolNameMaxLen),
			Value:   name,
		})
		return errors
	}

	if !normalize.HasWordChar(name) {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "name must contain at least one letter or digit",
			Value:   name,
		})
	}

	return errors
}

// ValidateSchoolUpdate checks a full-replace school update
func ValidateSchoolUpdate(req *models.UpdateSchoolRequest) []ValidationError {
	errors := ValidateSchoolName(req.Name)

	if req.Slug == "" {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(req.Slug) {
		errors = append(errors, ValidationError{
			Field:   "slug",
			Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)",
			Value:   req.Slug,
		})
	}

	if req.Status != "" && !models.ValidSchoolStatuses[req.Status] {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: pending, active, merged",
			Value:   req.Status,
		})
	}

	return errors
}

// ValidateReview checks a review submission
func ValidateReview(req *models.CreateReviewRequest) []ValidationError {
	var errors []ValidationError

	if req.SchoolID == "" && req.SchoolName == "" {
		errors = append(errors, ValidationError{
			Field:   "school_id",
			Message: "school_id or school_name is required",
		})
	}

	ratings := map[string]*int{
		"rating_overall":  req.RatingOverall,
		"rating_teachers": req.RatingTeachers,
		"rating_campus":   req.RatingCampus,
		"rating_support":  req.RatingSupport,
	}
	for field, rating := range ratings {
		if rating != nil && (*rating < 1 || *rating > 5) {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "rating must be between 1 and 5",
				Value:   *rating,
			})
		}
	}

	return errors
}

// ValidateArticle checks an article create/update payload
func ValidateArticle(title, slug, category string) []ValidationError {
	var errors []ValidationError

	if title == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}

	if slug == "" {
		errors = append(errors, ValidationError{Field: "slug", Message: "slug is required"})
	} else if !slugRegex.MatchString(slug) {
		errors = append(errors, ValidationError{
			Field:   "slug",
			Message: "slug must be kebab-case (lowercase letters, numbers, hyphens)",
			Value:   slug,
		})
	}

	if category == "" {
		errors = append(errors, ValidationError{Field: "category", Message: "category is required"})
	} else if !models.ValidCategories[category] {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: "invalid category, must be one of: interview, column",
			Value:   category,
		})
	}

	return errors
}
