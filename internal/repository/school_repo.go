package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/school-directory-api/internal/database"
	"github.com/school-directory-api/internal/models"
)

// schoolRepo is the concrete implementation of SchoolRepository
type schoolRepo struct {
	db *database.DB
}

// NewSchoolRepo creates a new school repository
func NewSchoolRepo(db *database.DB) SchoolRepository {
	return &schoolRepo{db: db}
}

const schoolColumns = `id, name, normalized_name, slug, prefectures, introduction, highlights, faq, visible, status, created_at, updated_at`

// Create inserts a new school
func (r *schoolRepo) Create(ctx context.Context, school *models.School) error {
	query := `
		INSERT INTO schools (id, name, normalized_name, slug, prefectures, introduction, highlights, faq, visible, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		school.ID, school.Name, school.NormalizedName, school.Slug,
		pq.Array(school.Prefectures), school.Introduction, school.Highlights, school.FAQ,
		school.Visible, school.Status, school.CreatedAt, time.Now(),
	)
	return err
}

// GetByID retrieves a school by ID
func (r *schoolRepo) GetByID(ctx context.Context, id string) (*models.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE id = $1`, schoolColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a school by slug
func (r *schoolRepo) GetBySlug(ctx context.Context, slug string) (*models.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE slug = $1`, schoolColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

// GetByNormalizedName retrieves the non-merged school holding a normalized name
func (r *schoolRepo) GetByNormalizedName(ctx context.Context, normalized string) (*models.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE normalized_name = $1 AND status <> 'merged'`, schoolColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, normalized))
}

// Update replaces all editable fields of a school
func (r *schoolRepo) Update(ctx context.Context, school *models.School) error {
	query := `
		UPDATE schools SET
			name = $1, normalized_name = $2, slug = $3, prefectures = $4,
			introduction = $5, highlights = $6, faq = $7, visible = $8, status = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		school.Name, school.NormalizedName, school.Slug, pq.Array(school.Prefectures),
		school.Introduction, school.Highlights, school.FAQ, school.Visible, school.Status,
		time.Now(), school.ID,
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

// SetStatus updates only the lifecycle status of a school
func (r *schoolRepo) SetStatus(ctx context.Context, id string, status models.SchoolStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE schools SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
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

// List returns a page of schools matching the filter plus the total count
func (r *schoolRepo) List(ctx context.Context, filter *models.SchoolListFilter) ([]*models.School, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	argn := 1

	if filter.Status != "" {
		where += fmt.Sprintf(` AND status = $%d`, argn)
		args = append(args, filter.Status)
		argn++
	}
	if filter.Query != "" {
		where += fmt.Sprintf(` AND normalized_name LIKE $%d`, argn)
		args = append(args, "%"+filter.Query+"%")
		argn++
	}
	if filter.Visible != nil {
		where += fmt.Sprintf(` AND visible = $%d`, argn)
		args = append(args, *filter.Visible)
		argn++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM schools ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM schools %s ORDER BY name LIMIT $%d OFFSET $%d`,
		schoolColumns, where, argn, argn+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	schools, err := r.scanMany(rows)
	if err != nil {
		return nil, 0, err
	}
	return schools, total, nil
}

// Autocomplete returns visible active schools whose normalized name contains
// the query, ascending by name
func (r *schoolRepo) Autocomplete(ctx context.Context, normalizedQuery string, limit int) ([]*models.School, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM schools
		WHERE visible = TRUE AND status = 'active' AND normalized_name LIKE $1
		ORDER BY name
		LIMIT $2
	`, schoolColumns)

	rows, err := r.db.QueryContext(ctx, query, "%"+normalizedQuery+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// NameExists checks if a non-merged school other than excludeID holds a normalized name
func (r *schoolRepo) NameExists(ctx context.Context, normalized, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schools WHERE normalized_name = $1 AND status <> 'merged' AND id <> $2)`,
		normalized, excludeID,
	).Scan(&exists)
	return exists, err
}

// SlugExists checks if a school other than excludeID holds a slug
func (r *schoolRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schools WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	return exists, err
}

// Count returns the total number of schools
func (r *schoolRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schools`).Scan(&count)
	return count, err
}

// scanOne scans a single school row, mapping sql.ErrNoRows to (nil, nil)
func (r *schoolRepo) scanOne(row *sql.Row) (*models.School, error) {
	var school models.School
	err := row.Scan(
		&school.ID, &school.Name, &school.NormalizedName, &school.Slug,
		pq.Array(&school.Prefectures), &school.Introduction, &school.Highlights, &school.FAQ,
		&school.Visible, &school.Status, &school.CreatedAt, &school.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepo) scanMany(rows *sql.Rows) ([]*models.School, error) {
	var schools []*models.School
	for rows.Next() {
		var school models.School
		err := rows.Scan(
			&school.ID, &school.Name, &school.NormalizedName, &school.Slug,
			pq.Array(&school.Prefectures), &school.Introduction, &school.Highlights, &school.FAQ,
			&school.Visible, &school.Status, &school.CreatedAt, &school.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		schools = append(schools, &school)
	}
	return schools, rows.Err()
}
