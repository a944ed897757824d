package service

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses by the API layer
var (
	// ErrNotFound is returned when a referenced entity is absent or filtered
	// out by visibility
	ErrNotFound = errors.New("not found")

	// ErrSelfMerge is returned when a merge names the same school on both sides
	ErrSelfMerge = errors.New("cannot merge a school into itself")

	// ErrAliasExists is returned when an explicitly added alias already exists
	ErrAliasExists = errors.New("alias already exists")

	// ErrSlugExists is returned when a slug collides with a different record
	ErrSlugExists = errors.New("slug already exists")

	// ErrNameExists is returned when a school name collides with a different school
	ErrNameExists = errors.New("school name already exists")

	// ErrAssociationExists is returned when an article-school pair already exists
	ErrAssociationExists = errors.New("school is already attached to this article")
)

// ValidationError carries field-level validation failures to the API layer
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// FieldError is one field-level failure
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a message and optional fields
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// stepError wraps a merge step failure with the step that failed, so a
// partially completed merge can be inspected and retried manually
func stepError(step string, err error) error {
	return fmt.Errorf("merge step %s failed: %w", step, err)
}
