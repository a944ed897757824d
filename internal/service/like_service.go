package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/repository"
)

// likeService is the concrete implementation of LikeService
type likeService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newLikeService creates a new LikeService
func newLikeService(repos *repository.Repositories, log zerolog.Logger) *likeService {
	return &likeService{
		repos: repos,
		log:   log.With().Str("service", "like").Logger(),
	}
}

// Toggle applies a like or unlike for a (review, client) pair and returns the
// resulting count and client state. Re-liking is idempotent: the uniqueness
// conflict on the pair is treated as success. Unliking a pair that does not
// exist is not an error. The review must exist and be visible.
func (s *likeService) Toggle(ctx context.Context, reviewID, clientID, action string) (*models.LikeResponse, error) {
	if !models.LikeActions[action] {
		return nil, NewValidationError("action must be one of: like, unlike",
			FieldError{Field: "action", Message: "invalid action", Value: action})
	}

	review, err := s.repos.Review.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil || !review.Visible {
		return nil, ErrNotFound
	}

	switch action {
	case "like":
		if err := s.repos.Like.Insert(ctx, reviewID, clientID); err != nil && !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to record like: %w", err)
		}
	case "unlike":
		if err := s.repos.Like.Delete(ctx, reviewID, clientID); err != nil {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}
	}

	count, err := s.repos.Like.CountByReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	liked, err := s.repos.Like.Exists(ctx, reviewID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like state: %w", err)
	}

	return &models.LikeResponse{Success: true, LikeCount: count, IsLiked: liked}, nil
}
