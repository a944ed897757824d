package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/school-directory-api/internal/database"
	"github.com/school-directory-api/internal/models"
)

// reviewRepo is the concrete implementation of ReviewRepository
type reviewRepo struct {
	db *database.DB
}

// NewReviewRepo creates a new review repository
func NewReviewRepo(db *database.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

const reviewColumns = `id, school_id, school_name, answers, rating_overall, rating_teachers, rating_campus, rating_support, pros, cons, visible, created_at`

// Create inserts a new review
func (r *reviewRepo) Create(ctx context.Context, review *models.Review) error {
	answersJSON, err := json.Marshal(review.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	if review.Answers == nil {
		answersJSON = []byte("{}")
	}

	query := `
		INSERT INTO reviews (id, school_id, school_name, answers, rating_overall, rating_teachers, rating_campus, rating_support, pros, cons, visible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		review.ID, review.SchoolID, review.SchoolName, answersJSON,
		nullInt(review.RatingOverall), nullInt(review.RatingTeachers),
		nullInt(review.RatingCampus), nullInt(review.RatingSupport),
		review.Pros, review.Cons, review.Visible, review.CreatedAt,
	)
	return err
}

// GetByID retrieves a review by ID
func (r *reviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

// List returns a page of reviews matching the filter plus the total count
func (r *reviewRepo) List(ctx context.Context, filter *models.ReviewListFilter) ([]*models.Review, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	argn := 1

	if filter.SchoolID != "" {
		where += fmt.Sprintf(` AND school_id = $%d`, argn)
		args = append(args, filter.SchoolID)
		argn++
	}
	if filter.Visible != nil {
		where += fmt.Sprintf(` AND visible = $%d`, argn)
		args = append(args, *filter.Visible)
		argn++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM reviews %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reviewColumns, where, argn, argn+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListBySchool retrieves all reviews for a school, newest first
func (r *reviewRepo) ListBySchool(ctx context.Context, schoolID string, visibleOnly bool) ([]*models.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE school_id = $1`, reviewColumns)
	if visibleOnly {
		query += ` AND visible = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviews(rows)
}

// ReassignSchool moves every review pointing at one school to another.
// Returns the number of rows moved.
func (r *reviewRepo) ReassignSchool(ctx context.Context, fromSchoolID, toSchoolID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET school_id = $1 WHERE school_id = $2`,
		toSchoolID, fromSchoolID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SetVisibility updates the visibility flag of a review
func (r *reviewRepo) SetVisibility(ctx context.Context, id string, visible bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET visible = $1 WHERE id = $2`, visible, id,
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

// SchoolAggregates returns per-school visible review counts and mean overall
// ratings across all visible non-merged schools
func (r *reviewRepo) SchoolAggregates(ctx context.Context) ([]*models.RankingEntry, error) {
	query := `
		SELECT s.id, s.name, s.slug,
			COUNT(r.id) FILTER (WHERE r.visible),
			AVG(r.rating_overall) FILTER (WHERE r.visible)
		FROM schools s
		LEFT JOIN reviews r ON r.school_id = s.id
		WHERE s.visible = TRUE AND s.status <> 'merged'
		GROUP BY s.id, s.name, s.slug
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.RankingEntry
	for rows.Next() {
		var entry models.RankingEntry
		var avg sql.NullFloat64
		if err := rows.Scan(&entry.SchoolID, &entry.Name, &entry.Slug, &entry.ReviewCount, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := avg.Float64
			entry.AverageRating = &v
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// StreamAll streams all raw review rows for export, oldest first
func (r *reviewRepo) StreamAll(ctx context.Context, callback func(*models.Review) error) error {
	query := fmt.Sprintf(`SELECT %s FROM reviews ORDER BY created_at`, reviewColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		review, err := scanReview(rows.Scan)
		if err != nil {
			return err
		}
		if err := callback(review); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the total number of reviews
func (r *reviewRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count)
	return count, err
}

// scanReview scans one review row through the given scan function
func scanReview(scan func(...interface{}) error) (*models.Review, error) {
	var review models.Review
	var schoolID sql.NullString
	var answersJSON []byte
	var overall, teachers, campus, support sql.NullInt64

	err := scan(
		&review.ID, &schoolID, &review.SchoolName, &answersJSON,
		&overall, &teachers, &campus, &support,
		&review.Pros, &review.Cons, &review.Visible, &review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if schoolID.Valid {
		review.SchoolID = &schoolID.String
	}
	review.RatingOverall = intPtr(overall)
	review.RatingTeachers = intPtr(teachers)
	review.RatingCampus = intPtr(campus)
	review.RatingSupport = intPtr(support)

	// Malformed answer payloads leave the bag empty rather than failing the row
	if err := json.Unmarshal(answersJSON, &review.Answers); err != nil {
		review.Answers = map[string]any{}
	}

	return &review, nil
}

func collectReviews(rows *sql.Rows) ([]*models.Review, error) {
	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
