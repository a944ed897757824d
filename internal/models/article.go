package models

import (
	"time"
)

// ValidCategories defines allowed article categories
var ValidCategories = map[string]bool{
	"interview": true,
	"column":    true,
}

// Article represents an editorial article
type Article struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Category    string     `json:"category" db:"category"`
	Body        string     `json:"body,omitempty" db:"body"`
	Excerpt     string     `json:"excerpt,omitempty" db:"excerpt"`
	Visible     bool       `json:"visible" db:"visible"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ArticleSchool is a join row associating an article with a school
type ArticleSchool struct {
	ArticleID    string `json:"article_id" db:"article_id"`
	SchoolID     string `json:"school_id" db:"school_id"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
	Note         string `json:"note,omitempty" db:"note"`
}

// CreateArticleRequest is the body of POST /v1/articles
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Body     string `json:"body,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	Visible  bool   `json:"visible"`
}

// UpdateArticleRequest is the body of PUT /v1/articles/:id
type UpdateArticleRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Body     string `json:"body"`
	Excerpt  string `json:"excerpt"`
	Visible  bool   `json:"visible"`
}

// AttachSchoolRequest is the body of POST /v1/articles/:id/schools
type AttachSchoolRequest struct {
	SchoolID     string `json:"school_id"`
	DisplayOrder int    `json:"display_order"`
	Note         string `json:"note,omitempty"`
}

// ArticleListFilter narrows the article listing
type ArticleListFilter struct {
	Category    string
	Query       string
	Page        int
	Limit       int
	VisibleOnly bool
}

// ArticleList is the paginated listing payload
type ArticleList struct {
	Articles   []*Article `json:"articles"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}
