package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/config"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/repository"
	"github.com/school-directory-api/internal/validation"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *articleService {
	return &articleService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "article").Logger(),
	}
}

// Create stores a new article. The publish timestamp is set only when the
// article is created visible.
func (s *articleService) Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error) {
	if errs := validation.ValidateArticle(req.Title, req.Slug, req.Category); len(errs) > 0 {
		return nil, NewValidationError("invalid article", toFieldErrors(errs)...)
	}

	taken, err := s.repos.Article.SlugExists(ctx, req.Slug, uuid.Nil.String())
	if err != nil {
		return nil, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if taken {
		return nil, ErrSlugExists
	}

	now := time.Now()
	article := &models.Article{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Slug:      req.Slug,
		Category:  req.Category,
		Body:      req.Body,
		Excerpt:   req.Excerpt,
		Visible:   req.Visible,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Visible {
		article.PublishedAt = &now
	}

	if err := s.repos.Article.Create(ctx, article); err != nil {
		// A concurrent create can slip past the explicit check
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", article.Slug).Msg("Article created")
	return article, nil
}

// Update replaces the editable fields of an article. The publish timestamp is
// set exactly once, when visibility first turns on.
func (s *articleService) Update(ctx context.Context, id string, req *models.UpdateArticleRequest) (*models.Article, error) {
	if errs := validation.ValidateArticle(req.Title, req.Slug, req.Category); len(errs) > 0 {
		return nil, NewValidationError("invalid article", toFieldErrors(errs)...)
	}

	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}

	taken, err := s.repos.Article.SlugExists(ctx, req.Slug, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if taken {
		return nil, ErrSlugExists
	}

	article.Title = req.Title
	article.Slug = req.Slug
	article.Category = req.Category
	article.Body = req.Body
	article.Excerpt = req.Excerpt
	if req.Visible && article.PublishedAt == nil {
		now := time.Now()
		article.PublishedAt = &now
	}
	article.Visible = req.Visible

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	s.log.Info().Str("article_id", id).Msg("Article updated")
	return article, nil
}

// GetBySlug retrieves an article by slug. Unless includeHidden is set,
// invisible articles report not found.
func (s *articleService) GetBySlug(ctx context.Context, slug string, includeHidden bool) (*models.Article, error) {
	article, err := s.repos.Article.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil || (!article.Visible && !includeHidden) {
		return nil, ErrNotFound
	}
	return article, nil
}

// List returns a paginated article listing. An unknown category filter is
// ignored rather than rejected.
func (s *articleService) List(ctx context.Context, filter *models.ArticleListFilter) (*models.ArticleList, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = s.cfg.Listing.DefaultPageSize
	}
	if filter.Limit > s.cfg.Listing.MaxPageSize {
		filter.Limit = s.cfg.Listing.MaxPageSize
	}
	if !models.ValidCategories[filter.Category] {
		filter.Category = ""
	}

	articles, total, err := s.repos.Article.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	totalPages := total / filter.Limit
	if total%filter.Limit > 0 {
		totalPages++
	}

	return &models.ArticleList{
		Articles:   articles,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListLatest returns the most recently published visible articles
func (s *articleService) ListLatest(ctx context.Context, limit int) ([]*models.Article, error) {
	if limit < 1 {
		limit = s.cfg.Listing.DefaultPageSize
	}
	articles, err := s.repos.Article.ListLatestVisible(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest articles: %w", err)
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	return articles, nil
}

// AttachSchool associates a school with an article. Each pair is unique.
func (s *articleService) AttachSchool(ctx context.Context, articleID string, req *models.AttachSchoolRequest) error {
	if req.SchoolID == "" {
		return NewValidationError("school_id is required",
			FieldError{Field: "school_id", Message: "school_id is required"})
	}

	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return ErrNotFound
	}

	school, err := s.repos.School.GetByID(ctx, req.SchoolID)
	if err != nil {
		return fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return ErrNotFound
	}

	assoc := &models.ArticleSchool{
		ArticleID:    articleID,
		SchoolID:     req.SchoolID,
		DisplayOrder: req.DisplayOrder,
		Note:         req.Note,
	}
	if err := s.repos.Article.AttachSchool(ctx, assoc); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrAssociationExists
		}
		return fmt.Errorf("failed to attach school: %w", err)
	}

	return nil
}

// DetachSchool removes an article-school association
func (s *articleService) DetachSchool(ctx context.Context, articleID, schoolID string) error {
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return ErrNotFound
	}

	if err := s.repos.Article.DetachSchool(ctx, articleID, schoolID); err != nil {
		return fmt.Errorf("failed to detach school: %w", err)
	}
	return nil
}

// ListSchools retrieves an article's school associations in display order
func (s *articleService) ListSchools(ctx context.Context, articleID string) ([]*models.ArticleSchool, error) {
	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}

	assocs, err := s.repos.Article.ListSchools(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list article schools: %w", err)
	}
	if assocs == nil {
		assocs = []*models.ArticleSchool{}
	}
	return assocs, nil
}
