package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/config"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/normalize"
	"github.com/school-directory-api/internal/repository"
	"github.com/school-directory-api/internal/validation"
)

// schoolService is the concrete implementation of SchoolService
type schoolService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newSchoolService creates a new SchoolService
func newSchoolService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *schoolService {
	return &schoolService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "school").Logger(),
	}
}

// CreateOrFind registers a user-submitted school name. If a non-merged school
// already holds the normalized name, that school is returned unchanged, which
// makes duplicate submissions safe to retry. The second return value reports
// whether a new row was created.
func (s *schoolService) CreateOrFind(ctx context.Context, name, prefecture string) (*models.School, bool, error) {
	if errs := validation.ValidateSchoolName(name); len(errs) > 0 {
		return nil, false, NewValidationError("invalid school name", toFieldErrors(errs)...)
	}

	normalized := normalize.Fold(name)

	existing, err := s.repos.School.GetByNormalizedName(ctx, normalized)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up school by name: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	school := &models.School{
		ID:             uuid.New().String(),
		Name:           name,
		NormalizedName: normalized,
		Slug:           s.uniqueSlug(ctx, name),
		Visible:        true,
		Status:         models.SchoolStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if prefecture != "" {
		school.Prefectures = []string{prefecture}
	} else {
		school.Prefectures = []string{}
	}

	if err := s.repos.School.Create(ctx, school); err != nil {
		// Two identical submissions can race past the lookup; the unique
		// index decides the winner and we return it.
		if repository.IsUniqueViolation(err) {
			winner, lookupErr := s.repos.School.GetByNormalizedName(ctx, normalized)
			if lookupErr == nil && winner != nil {
				return winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create school: %w", err)
	}

	s.log.Info().Str("school_id", school.ID).Str("name", name).Msg("School registered")
	return school, true, nil
}

// Get retrieves a school by ID
func (s *schoolService) Get(ctx context.Context, id string) (*models.School, error) {
	school, err := s.repos.School.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrNotFound
	}
	return school, nil
}

// List returns a page of schools for the admin listing
func (s *schoolService) List(ctx context.Context, filter *models.SchoolListFilter) ([]*models.School, int, error) {
	s.clampPaging(&filter.Page, &filter.Limit)
	filter.Query = normalize.Fold(filter.Query)

	schools, total, err := s.repos.School.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schools: %w", err)
	}
	return schools, total, nil
}

// Update replaces all editable fields of a school. Name and slug uniqueness
// checks exclude the school itself.
func (s *schoolService) Update(ctx context.Context, id string, req *models.UpdateSchoolRequest) (*models.School, error) {
	if errs := validation.ValidateSchoolUpdate(req); len(errs) > 0 {
		return nil, NewValidationError("invalid school update", toFieldErrors(errs)...)
	}

	school, err := s.repos.School.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrNotFound
	}

	normalized := normalize.Fold(req.Name)

	nameTaken, err := s.repos.School.NameExists(ctx, normalized, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check name uniqueness: %w", err)
	}
	if nameTaken {
		return nil, ErrNameExists
	}

	slugTaken, err := s.repos.School.SlugExists(ctx, req.Slug, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if slugTaken {
		return nil, ErrSlugExists
	}

	school.Name = req.Name
	school.NormalizedName = normalized
	school.Slug = req.Slug
	school.Prefectures = req.Prefectures
	if school.Prefectures == nil {
		school.Prefectures = []string{}
	}
	school.Introduction = req.Introduction
	school.Highlights = req.Highlights
	school.FAQ = req.FAQ
	school.Visible = req.Visible
	if req.Status != "" {
		school.Status = models.SchoolStatus(req.Status)
	}

	if err := s.repos.School.Update(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to update school: %w", err)
	}

	s.log.Info().Str("school_id", id).Msg("School updated")
	return school, nil
}

// Autocomplete returns up to the configured maximum of visible, active
// schools whose normalized name contains the query. An empty query yields an
// empty list, never an error.
func (s *schoolService) Autocomplete(ctx context.Context, query string) ([]*models.School, error) {
	normalized := normalize.Fold(query)
	if normalized == "" {
		return []*models.School{}, nil
	}

	schools, err := s.repos.School.Autocomplete(ctx, normalized, s.cfg.Listing.AutocompleteMax)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete schools: %w", err)
	}
	if schools == nil {
		schools = []*models.School{}
	}
	return schools, nil
}

// AddAlias adds an alternate name to a school. Duplicate aliases are rejected.
func (s *schoolService) AddAlias(ctx context.Context, schoolID, name string) (*models.SchoolAlias, error) {
	if errs := validation.ValidateSchoolName(name); len(errs) > 0 {
		return nil, NewValidationError("invalid alias name", toFieldErrors(errs)...)
	}

	school, err := s.repos.School.GetByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrNotFound
	}

	alias := &models.SchoolAlias{
		ID:             uuid.New().String(),
		SchoolID:       schoolID,
		Name:           name,
		NormalizedName: normalize.Fold(name),
		CreatedAt:      time.Now(),
	}

	if err := s.repos.Alias.Create(ctx, alias); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAliasExists
		}
		return nil, fmt.Errorf("failed to create alias: %w", err)
	}

	s.log.Info().Str("school_id", schoolID).Str("alias", name).Msg("Alias added")
	return alias, nil
}

// ListAliases retrieves all aliases of a school
func (s *schoolService) ListAliases(ctx context.Context, schoolID string) ([]*models.SchoolAlias, error) {
	school, err := s.repos.School.GetByID(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrNotFound
	}

	aliases, err := s.repos.Alias.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	if aliases == nil {
		aliases = []*models.SchoolAlias{}
	}
	return aliases, nil
}

// RemoveAlias deletes an alias after verifying it belongs to the school.
// The ownership check prevents cross-school deletion by ID guessing.
func (s *schoolService) RemoveAlias(ctx context.Context, schoolID, aliasID string) error {
	alias, err := s.repos.Alias.GetByID(ctx, aliasID)
	if err != nil {
		return fmt.Errorf("failed to get alias: %w", err)
	}
	if alias == nil || alias.SchoolID != schoolID {
		return ErrNotFound
	}

	if err := s.repos.Alias.Delete(ctx, aliasID); err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}

	s.log.Info().Str("school_id", schoolID).Str("alias_id", aliasID).Msg("Alias removed")
	return nil
}

// Merge folds the source school into the target as an ordered sequence of
// independent effects:
//
//  1. insert the source's name as an alias of the target (duplicate ignored)
//  2. reassign every review pointing at the source to the target
//  3. set the source's status to merged
//
// The status flip comes last: once merged, the source is invisible to search
// and its identity is only discoverable via the new alias. There is no
// cross-step rollback; a mid-sequence failure leaves the source partially
// merged and is surfaced for manual retry or inspection.
func (s *schoolService) Merge(ctx context.Context, sourceID, targetID string) error {
	if sourceID == targetID {
		return ErrSelfMerge
	}

	source, err := s.repos.School.GetByID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to get source school: %w", err)
	}
	if source == nil {
		return ErrNotFound
	}

	target, err := s.repos.School.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to get target school: %w", err)
	}
	if target == nil {
		return ErrNotFound
	}

	// Step 1: source name becomes an alias of the target. A duplicate alias
	// means a previous merge attempt got this far; treat it as done.
	alias := &models.SchoolAlias{
		ID:             uuid.New().String(),
		SchoolID:       targetID,
		Name:           source.Name,
		NormalizedName: source.NormalizedName,
		CreatedAt:      time.Now(),
	}
	if err := s.repos.Alias.Create(ctx, alias); err != nil && !repository.IsUniqueViolation(err) {
		return stepError("alias", err)
	}

	// Step 2: move the source's reviews to the target
	moved, err := s.repos.Review.ReassignSchool(ctx, sourceID, targetID)
	if err != nil {
		return stepError("reassign-reviews", err)
	}

	// Step 3: flip the source's lifecycle status
	if err := s.repos.School.SetStatus(ctx, sourceID, models.SchoolStatusMerged); err != nil {
		return stepError("status", err)
	}

	s.log.Info().
		Str("source_id", sourceID).
		Str("target_id", targetID).
		Int64("reviews_moved", moved).
		Msg("Schools merged")
	return nil
}

// uniqueSlug derives a slug from the name, suffixing a short random fragment
// when the plain slug is taken
func (s *schoolService) uniqueSlug(ctx context.Context, name string) string {
	slug := normalize.Slugify(name)
	if slug == "" {
		slug = "school"
	}

	taken, err := s.repos.School.SlugExists(ctx, slug, uuid.Nil.String())
	if err != nil || taken {
		slug = fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
	}
	return slug
}

func (s *schoolService) clampPaging(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 {
		*limit = s.cfg.Listing.DefaultPageSize
	}
	if *limit > s.cfg.Listing.MaxPageSize {
		*limit = s.cfg.Listing.MaxPageSize
	}
}

// toFieldErrors converts validation package errors to service field errors
func toFieldErrors(errs []validation.ValidationError) []FieldError {
	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, FieldError{Field: e.Field, Message: e.Message, Value: e.Value})
	}
	return fields
}
