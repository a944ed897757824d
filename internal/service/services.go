package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/config"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/repository"
)

// SchoolService defines the interface for school registry operations
type SchoolService interface {
	CreateOrFind(ctx context.Context, name, prefecture string) (*models.School, bool, error)
	Get(ctx context.Context, id string) (*models.School, error)
	List(ctx context.Context, filter *models.SchoolListFilter) ([]*models.School, int, error)
	Update(ctx context.Context, id string, req *models.UpdateSchoolRequest) (*models.School, error)
	Autocomplete(ctx context.Context, query string) ([]*models.School, error)
	AddAlias(ctx context.Context, schoolID, name string) (*models.SchoolAlias, error)
	ListAliases(ctx context.Context, schoolID string) ([]*models.SchoolAlias, error)
	RemoveAlias(ctx context.Context, schoolID, aliasID string) error
	Merge(ctx context.Context, sourceID, targetID string) error
}

// ReviewService defines the interface for review submission and aggregation
type ReviewService interface {
	Create(ctx context.Context, req *models.CreateReviewRequest) (*models.Review, error)
	Get(ctx context.Context, id string) (*models.Review, error)
	List(ctx context.Context, filter *models.ReviewListFilter) ([]*models.Review, int, error)
	SetVisibility(ctx context.Context, id string, visible bool) error
	SchoolStats(ctx context.Context, schoolID string) (*models.SchoolStats, error)
	PrefectureStats(ctx context.Context, schoolID string) (*models.PrefectureStatsResponse, error)
	Rankings(ctx context.Context) (*models.Rankings, error)
}

// LikeService defines the interface for the per-review like counter
type LikeService interface {
	Toggle(ctx context.Context, reviewID, clientID, action string) (*models.LikeResponse, error)
}

// ArticleService defines the interface for article operations
type ArticleService interface {
	Create(ctx context.Context, req *models.CreateArticleRequest) (*models.Article, error)
	Update(ctx context.Context, id string, req *models.UpdateArticleRequest) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string, includeHidden bool) (*models.Article, error)
	List(ctx context.Context, filter *models.ArticleListFilter) (*models.ArticleList, error)
	ListLatest(ctx context.Context, limit int) ([]*models.Article, error)
	AttachSchool(ctx context.Context, articleID string, req *models.AttachSchoolRequest) error
	DetachSchool(ctx context.Context, articleID, schoolID string) error
	ListSchools(ctx context.Context, articleID string) ([]*models.ArticleSchool, error)
}

// ExportService defines the interface for data export
type ExportService interface {
	StreamReviewsCSV(ctx context.Context, w io.Writer) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	School  SchoolService
	Review  ReviewService
	Like    LikeService
	Article ArticleService
	Export  ExportService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		School:  newSchoolService(repos, cfg, log),
		Review:  newReviewService(repos, cfg, log),
		Like:    newLikeService(repos, log),
		Article: newArticleService(repos, cfg, log),
		Export:  newExportService(repos, log),
	}
}
