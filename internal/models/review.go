package models

import (
	"time"
)

// Review represents a single survey response about a school.
//
// SchoolID is nullable: legacy rows may carry only a free-text school name.
// Answers is an open-ended key/value bag whose schema is not fixed; new
// question keys may appear over time without a migration.
type Review struct {
	ID             string         `json:"id" db:"id"`
	SchoolID       *string        `json:"school_id,omitempty" db:"school_id"`
	SchoolName     string         `json:"school_name,omitempty" db:"school_name"`
	Answers        map[string]any `json:"answers" db:"-"` // Stored as JSONB in DB
	RatingOverall  *int           `json:"rating_overall,omitempty" db:"rating_overall"`
	RatingTeachers *int           `json:"rating_teachers,omitempty" db:"rating_teachers"`
	RatingCampus   *int           `json:"rating_campus,omitempty" db:"rating_campus"`
	RatingSupport  *int           `json:"rating_support,omitempty" db:"rating_support"`
	Pros           string         `json:"pros,omitempty" db:"pros"`
	Cons           string         `json:"cons,omitempty" db:"cons"`
	Visible        bool           `json:"visible" db:"visible"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// RatingDimensions lists the independently nullable numeric rating fields, in
// the order they are reported and exported.
var RatingDimensions = []string{"overall", "teachers", "campus", "support"}

// Rating returns the value of a rating dimension by name, or nil.
func (r *Review) Rating(dimension string) *int {
	switch dimension {
	case "overall":
		return r.RatingOverall
	case "teachers":
		return r.RatingTeachers
	case "campus":
		return r.RatingCampus
	case "support":
		return r.RatingSupport
	}
	return nil
}

// CreateReviewRequest is the body of POST /v1/reviews
type CreateReviewRequest struct {
	SchoolID       string         `json:"school_id,omitempty"`
	SchoolName     string         `json:"school_name,omitempty"`
	Answers        map[string]any `json:"answers,omitempty"`
	RatingOverall  *int           `json:"rating_overall,omitempty"`
	RatingTeachers *int           `json:"rating_teachers,omitempty"`
	RatingCampus   *int           `json:"rating_campus,omitempty"`
	RatingSupport  *int           `json:"rating_support,omitempty"`
	Pros           string         `json:"pros,omitempty"`
	Cons           string         `json:"cons,omitempty"`
}

// SchoolStats holds per-school aggregates over visible reviews
type SchoolStats struct {
	SchoolID    string              `json:"school_id"`
	ReviewCount int                 `json:"review_count"`
	Averages    map[string]*float64 `json:"averages"` // per rating dimension; nil when no values present
}

// PrefectureStat is one bucket of the campus-prefecture tally
type PrefectureStat struct {
	Prefecture string `json:"prefecture"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"` // of counted responses, not of all reviews
}

// PrefectureStatsResponse is the payload of GET /v1/schools/:id/prefecture-stats
type PrefectureStatsResponse struct {
	PrefectureStats []PrefectureStat `json:"prefectureStats"`
	TotalResponses  int              `json:"totalResponses"`
}

// RankingEntry is one school in a ranking list
type RankingEntry struct {
	SchoolID      string   `json:"school_id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	ReviewCount   int      `json:"review_count"`
	AverageRating *float64 `json:"average_rating,omitempty"`
}

// Rankings is the payload of GET /v1/rankings
type Rankings struct {
	TopRated     []RankingEntry `json:"top_rated"`
	MostReviewed []RankingEntry `json:"most_reviewed"`
}

// ReviewListFilter narrows the admin review listing
type ReviewListFilter struct {
	SchoolID string
	Visible  *bool
	Page     int
	Limit    int
}
