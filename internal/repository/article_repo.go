package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/school-directory-api/internal/database"
	"github.com/school-directory-api/internal/models"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `id, title, slug, category, body, excerpt, visible, published_at, created_at, updated_at`

// Create inserts a new article. A duplicate slug surfaces as a unique violation.
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (id, title, slug, category, body, excerpt, visible, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Slug, article.Category,
		article.Body, article.Excerpt, article.Visible, article.PublishedAt,
		article.CreatedAt, time.Now(),
	)
	return err
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id = $1`, articleColumns)
	return scanArticle(r.db.QueryRowContext(ctx, query, id).Scan)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE slug = $1`, articleColumns)
	return scanArticle(r.db.QueryRowContext(ctx, query, slug).Scan)
}

// Update replaces the editable fields of an article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles SET
			title = $1, slug = $2, category = $3, body = $4, excerpt = $5,
			visible = $6, published_at = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		article.Title, article.Slug, article.Category, article.Body, article.Excerpt,
		article.Visible, article.PublishedAt, time.Now(), article.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SlugExists checks if an article other than excludeID holds a slug
func (r *articleRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

// List returns a page of articles matching the filter plus the total count
func (r *articleRepo) List(ctx context.Context, filter *models.ArticleListFilter) ([]*models.Article, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	argn := 1

	if filter.VisibleOnly {
		where += ` AND visible = TRUE`
	}
	if filter.Category != "" {
		where += fmt.Sprintf(` AND category = $%d`, argn)
		args = append(args, filter.Category)
		argn++
	}
	if filter.Query != "" {
		where += fmt.Sprintf(` AND title ILIKE $%d`, argn)
		args = append(args, "%"+filter.Query+"%")
		argn++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM articles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		articleColumns, where, argn, argn+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles, err := collectArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// ListLatestVisible returns the most recently published visible articles
func (r *articleRepo) ListLatestVisible(ctx context.Context, limit int) ([]*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE visible = TRUE
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`, articleColumns)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectArticles(rows)
}

// AttachSchool inserts an article-school association. A duplicate pair
// surfaces as a unique violation.
func (r *articleRepo) AttachSchool(ctx context.Context, assoc *models.ArticleSchool) error {
	query := `
		INSERT INTO article_schools (article_id, school_id, display_order, note)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		assoc.ArticleID, assoc.SchoolID, assoc.DisplayOrder, assoc.Note,
	)
	return err
}

// DetachSchool removes an article-school association
func (r *articleRepo) DetachSchool(ctx context.Context, articleID, schoolID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM article_schools WHERE article_id = $1 AND school_id = $2`,
		articleID, schoolID,
	)
	return err
}

// ListSchools retrieves an article's school associations in display order
func (r *articleRepo) ListSchools(ctx context.Context, articleID string) ([]*models.ArticleSchool, error) {
	query := `
		SELECT article_id, school_id, display_order, note
		FROM article_schools WHERE article_id = $1 ORDER BY display_order
	`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assocs []*models.ArticleSchool
	for rows.Next() {
		var assoc models.ArticleSchool
		if err := rows.Scan(&assoc.ArticleID, &assoc.SchoolID, &assoc.DisplayOrder, &assoc.Note); err != nil {
			return nil, err
		}
		assocs = append(assocs, &assoc)
	}
	return assocs, rows.Err()
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

// scanArticle scans one article row, mapping sql.ErrNoRows to (nil, nil)
func scanArticle(scan func(...interface{}) error) (*models.Article, error) {
	var article models.Article
	var publishedAt sql.NullTime

	err := scan(
		&article.ID, &article.Title, &article.Slug, &article.Category,
		&article.Body, &article.Excerpt, &article.Visible, &publishedAt,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid {
		article.PublishedAt = &publishedAt.Time
	}
	return &article, nil
}

func collectArticles(rows *sql.Rows) ([]*models.Article, error) {
	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var publishedAt sql.NullTime
		err := rows.Scan(
			&article.ID, &article.Title, &article.Slug, &article.Category,
			&article.Body, &article.Excerpt, &article.Visible, &publishedAt,
			&article.CreatedAt, &article.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			article.PublishedAt = &publishedAt.Time
		}
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}
