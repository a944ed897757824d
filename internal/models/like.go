package models

import (
	"time"
)

// LikeActions defines allowed like toggle actions
var LikeActions = map[string]bool{
	"like":   true,
	"unlike": true,
}

// ReviewLike records at most one like per client per review.
// ClientID is derived from the request origin address.
type ReviewLike struct {
	ReviewID  string    `json:"review_id" db:"review_id"`
	ClientID  string    `json:"-" db:"client_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LikeRequest is the body of POST /v1/reviews/:id/like
type LikeRequest struct {
	Action string `json:"action"`
}

// LikeResponse reports the state after a toggle
type LikeResponse struct {
	Success   bool `json:"success"`
	LikeCount int  `json:"like_count"`
	IsLiked   bool `json:"is_liked"`
}
