package repository

import (
	"context"
	"time"

	"github.com/school-directory-api/internal/database"
)

// likeRepo is the concrete implementation of LikeRepository
type likeRepo struct {
	db *database.DB
}

// NewLikeRepo creates a new review like repository
func NewLikeRepo(db *database.DB) LikeRepository {
	return &likeRepo{db: db}
}

// Insert records a (review, client) like pair. A duplicate pair surfaces as a
// unique violation for the caller to treat as idempotent success.
func (r *likeRepo) Insert(ctx context.Context, reviewID, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO review_likes (review_id, client_id, created_at) VALUES ($1, $2, $3)`,
		reviewID, clientID, time.Now(),
	)
	return err
}

// Delete removes a like pair. Deleting a non-existent pair is not an error.
func (r *likeRepo) Delete(ctx context.Context, reviewID, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM review_likes WHERE review_id = $1 AND client_id = $2`,
		reviewID, clientID,
	)
	return err
}

// Exists checks if a client currently has a like recorded for a review
func (r *likeRepo) Exists(ctx context.Context, reviewID, clientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM review_likes WHERE review_id = $1 AND client_id = $2)`,
		reviewID, clientID,
	).Scan(&exists)
	return exists, err
}

// CountByReview returns the total like count for a review
func (r *likeRepo) CountByReview(ctx context.Context, reviewID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_likes WHERE review_id = $1`,
		reviewID,
	).Scan(&count)
	return count, err
}
