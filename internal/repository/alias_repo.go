package repository

import (
	"context"
	"database/sql"

	"github.com/school-directory-api/internal/database"
	"github.com/school-directory-api/internal/models"
)

// aliasRepo is the concrete implementation of AliasRepository
type aliasRepo struct {
	db *database.DB
}

// NewAliasRepo creates a new school alias repository
func NewAliasRepo(db *database.DB) AliasRepository {
	return &aliasRepo{db: db}
}

// Create inserts a new alias. A unique violation on normalized_name surfaces
// as-is for the caller to classify.
func (r *aliasRepo) Create(ctx context.Context, alias *models.SchoolAlias) error {
	query := `
		INSERT INTO school_aliases (id, school_id, name, normalized_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		alias.ID, alias.SchoolID, alias.Name, alias.NormalizedName, alias.CreatedAt,
	)
	return err
}

// GetByID retrieves an alias by ID
func (r *aliasRepo) GetByID(ctx context.Context, id string) (*models.SchoolAlias, error) {
	query := `
		SELECT id, school_id, name, normalized_name, created_at
		FROM school_aliases WHERE id = $1
	`

	var alias models.SchoolAlias
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&alias.ID, &alias.SchoolID, &alias.Name, &alias.NormalizedName, &alias.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alias, nil
}

// ListBySchool retrieves all aliases of a school
func (r *aliasRepo) ListBySchool(ctx context.Context, schoolID string) ([]*models.SchoolAlias, error) {
	query := `
		SELECT id, school_id, name, normalized_name, created_at
		FROM school_aliases WHERE school_id = $1 ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []*models.SchoolAlias
	for rows.Next() {
		var alias models.SchoolAlias
		err := rows.Scan(&alias.ID, &alias.SchoolID, &alias.Name, &alias.NormalizedName, &alias.CreatedAt)
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, &alias)
	}
	return aliases, rows.Err()
}

// Delete removes an alias by ID
func (r *aliasRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM school_aliases WHERE id = $1`, id)
	return err
}

// Count returns the total number of aliases
func (r *aliasRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM school_aliases`).Scan(&count)
	return count, err
}
