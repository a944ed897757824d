package models

import (
	"time"
)

// SchoolStatus represents the lifecycle status of a school record
type SchoolStatus string

const (
	SchoolStatusPending SchoolStatus = "pending"
	SchoolStatusActive  SchoolStatus = "active"
	SchoolStatusMerged  SchoolStatus = "merged"
)

// ValidSchoolStatuses defines allowed school statuses
var ValidSchoolStatuses = map[string]bool{
	"pending": true,
	"active":  true,
	"merged":  true,
}

// School represents a correspondence high school in the directory
type School struct {
	ID             string       `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	NormalizedName string       `json:"-" db:"normalized_name"`
	Slug           string       `json:"slug" db:"slug"`
	Prefectures    []string     `json:"prefectures" db:"prefectures"`
	Introduction   string       `json:"introduction,omitempty" db:"introduction"`
	Highlights     string       `json:"highlights,omitempty" db:"highlights"`
	FAQ            string       `json:"faq,omitempty" db:"faq"`
	Visible        bool         `json:"visible" db:"visible"`
	Status         SchoolStatus `json:"status" db:"status"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// SchoolAlias maps an alternate name string to a canonical school record
type SchoolAlias struct {
	ID             string    `json:"id" db:"id"`
	SchoolID       string    `json:"school_id" db:"school_id"`
	Name           string    `json:"name" db:"name"`
	NormalizedName string    `json:"-" db:"normalized_name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// CreateSchoolRequest is the body of POST /v1/schools
type CreateSchoolRequest struct {
	Name       string `json:"name"`
	Prefecture string `json:"prefecture,omitempty"`
}

// UpdateSchoolRequest is the body of PUT /v1/schools/:id.
// All editable fields are replaced.
type UpdateSchoolRequest struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Prefectures  []string `json:"prefectures"`
	Introduction string   `json:"introduction"`
	Highlights   string   `json:"highlights"`
	FAQ          string   `json:"faq"`
	Visible      bool     `json:"visible"`
	Status       string   `json:"status"`
}

// MergeSchoolRequest is the body of POST /v1/schools/:id/merge
type MergeSchoolRequest struct {
	TargetSchoolID string `json:"target_school_id"`
}

// AddAliasRequest is the body of POST /v1/schools/:id/aliases
type AddAliasRequest struct {
	Name string `json:"name"`
}

// SchoolListFilter narrows the admin school listing
type SchoolListFilter struct {
	Status  string
	Query   string
	Page    int
	Limit   int
	Visible *bool
}
