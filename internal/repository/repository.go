package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/school-directory-api/internal/database"
	"github.com/school-directory-api/internal/models"
)

// SchoolRepository defines the interface for school data operations
type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id string) (*models.School, error)
	GetBySlug(ctx context.Context, slug string) (*models.School, error)
	GetByNormalizedName(ctx context.Context, normalized string) (*models.School, error)
	Update(ctx context.Context, school *models.School) error
	SetStatus(ctx context.Context, id string, status models.SchoolStatus) error
	List(ctx context.Context, filter *models.SchoolListFilter) ([]*models.School, int, error)
	Autocomplete(ctx context.Context, normalizedQuery string, limit int) ([]*models.School, error)
	NameExists(ctx context.Context, normalized, excludeID string) (bool, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// AliasRepository defines the interface for school alias operations
type AliasRepository interface {
	Create(ctx context.Context, alias *models.SchoolAlias) error
	GetByID(ctx context.Context, id string) (*models.SchoolAlias, error)
	ListBySchool(ctx context.Context, schoolID string) ([]*models.SchoolAlias, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	List(ctx context.Context, filter *models.ReviewListFilter) ([]*models.Review, int, error)
	ListBySchool(ctx context.Context, schoolID string, visibleOnly bool) ([]*models.Review, error)
	ReassignSchool(ctx context.Context, fromSchoolID, toSchoolID string) (int64, error)
	SetVisibility(ctx context.Context, id string, visible bool) error
	SchoolAggregates(ctx context.Context) ([]*models.RankingEntry, error)
	StreamAll(ctx context.Context, callback func(*models.Review) error) error
	Count(ctx context.Context) (int, error)
}

// LikeRepository defines the interface for review like operations
type LikeRepository interface {
	Insert(ctx context.Context, reviewID, clientID string) error
	Delete(ctx context.Context, reviewID, clientID string) error
	Exists(ctx context.Context, reviewID, clientID string) (bool, error)
	CountByReview(ctx context.Context, reviewID string) (int, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, filter *models.ArticleListFilter) ([]*models.Article, int, error)
	ListLatestVisible(ctx context.Context, limit int) ([]*models.Article, error)
	AttachSchool(ctx context.Context, assoc *models.ArticleSchool) error
	DetachSchool(ctx context.Context, articleID, schoolID string) error
	ListSchools(ctx context.Context, articleID string) ([]*models.ArticleSchool, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	School  SchoolRepository
	Alias   AliasRepository
	Review  ReviewRepository
	Like    LikeRepository
	Article ArticleRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		School:  NewSchoolRepo(db),
		Alias:   NewAliasRepo(db),
		Review:  NewReviewRepo(db),
		Like:    NewLikeRepo(db),
		Article: NewArticleRepo(db),
	}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. Used by idempotent-insert paths, which treat the conflict as
// success while propagating any other failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// nullInt converts a nil *int to a SQL NULL
func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// intPtr converts a SQL nullable integer back to *int
func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
