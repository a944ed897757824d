package validation

import (
	"strings"
	"testing"

	"github.com/school-directory-api/internal/models"
)

func TestValidateSchoolName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErrors int
	}{
		{
			name:       "valid ascii name",
			input:      "Tokyo Academy",
			wantErrors: 0,
		},
		{
			name:       "valid two-character name",
			input:      "A1",
			wantErrors: 0,
		},
		{
			name:       "valid japanese name",
			input:      "さくら国際高等学校",
			wantErrors: 0,
		},
		{
			name:       "too short - single character",
			input:      "A",
			wantErrors: 1,
		},
		{
			name:       "too long - over 40 characters",
			input:      strings.Repeat("a", 41),
			wantErrors: 1,
		},
		{
			name:       "exactly 40 characters is accepted",
			input:      strings.Repeat("a", 40),
			wantErrors: 0,
		},
		{
			name:       "symbol-only name rejected",
			input:      "##",
			wantErrors: 1,
		},
		{
			name:       "empty name",
			input:      "",
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateSchoolName(tt.input)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateSchoolName(%q) got %d errors, want %d. Errors: %v", tt.input, len(errors), tt.wantErrors, errors)
			}
		})
	}
}

func TestValidateSchoolUpdate(t *testing.T) {
	tests := []struct {
		name       string
		req        *models.UpdateSchoolRequest
		wantErrors int
		wantFields []string
	}{
		{
			name: "valid update",
			req: &models.UpdateSchoolRequest{
				Name:   "Tokyo Academy",
				Slug:   "tokyo-academy",
				Status: "active",
			},
			wantErrors: 0,
		},
		{
			name: "missing slug",
			req: &models.UpdateSchoolRequest{
				Name: "Tokyo Academy",
			},
			wantErrors: 1,
			wantFields: []string{"slug"},
		},
		{
			name: "uppercase slug rejected",
			req: &models.UpdateSchoolRequest{
				Name: "Tokyo Academy",
				Slug: "Tokyo-Academy",
			},
			wantErrors: 1,
			wantFields: []string{"slug"},
		},
		{
			name: "invalid status",
			req: &models.UpdateSchoolRequest{
				Name:   "Tokyo Academy",
				Slug:   "tokyo-academy",
				Status: "archived",
			},
			wantErrors: 1,
			wantFields: []string{"status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateSchoolUpdate(tt.req)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateSchoolUpdate() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, wantField := range tt.wantFields {
				found := false
				for _, err := range errors {
					if err.Field == wantField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}

func TestValidateReview(t *testing.T) {
	three := 3
	six := 6

	tests := []struct {
		name       string
		req        *models.CreateReviewRequest
		wantErrors int
	}{
		{
			name: "valid review with school id",
			req: &models.CreateReviewRequest{
				SchoolID:      "550e8400-e29b-41d4-a716-446655440000",
				RatingOverall: &three,
			},
			wantErrors: 0,
		},
		{
			name: "valid legacy review with only school name",
			req: &models.CreateReviewRequest{
				SchoolName: "Tokyo Academy",
			},
			wantErrors: 0,
		},
		{
			name:       "missing school reference",
			req:        &models.CreateReviewRequest{},
			wantErrors: 1,
		},
		{
			name: "rating out of range",
			req: &models.CreateReviewRequest{
				SchoolName:    "Tokyo Academy",
				RatingOverall: &six,
			},
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateReview(tt.req)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateReview() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
		})
	}
}

func TestValidateArticle(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		slug       string
		category   string
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid interview article",
			title:      "Principal Interview",
			slug:       "principal-interview",
			category:   "interview",
			wantErrors: 0,
		},
		{
			name:       "valid column article",
			title:      "Choosing a School",
			slug:       "choosing-a-school",
			category:   "column",
			wantErrors: 0,
		},
		{
			name:       "missing everything",
			title:      "",
			slug:       "",
			category:   "",
			wantErrors: 3,
		},
		{
			name:       "invalid category",
			title:      "Some Title",
			slug:       "some-title",
			category:   "news",
			wantErrors: 1,
			wantFields: []string{"category"},
		},
		{
			name:       "slug with spaces",
			title:      "Some Title",
			slug:       "some title",
			category:   "column",
			wantErrors: 1,
			wantFields: []string{"slug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateArticle(tt.title, tt.slug, tt.category)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateArticle() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, wantField := range tt.wantFields {
				found := false
				for _, err := range errors {
					if err.Field == wantField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}
