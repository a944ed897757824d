package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/school-directory-api/internal/models"
)

// uniqueViolation mimics the PostgreSQL duplicate-key error surfaced by lib/pq
func uniqueViolation() error {
	return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

// MockSchoolRepository is an in-memory implementation of SchoolRepository
type MockSchoolRepository struct {
	Schools map[string]*models.School
	Err     error
}

func NewMockSchoolRepository() *MockSchoolRepository {
	return &MockSchoolRepository{Schools: make(map[string]*models.School)}
}

func (m *MockSchoolRepository) Create(ctx context.Context, school *models.School) error {
	if m.Err != nil {
		return m.Err
	}
	for _, s := range m.Schools {
		if s.NormalizedName == school.NormalizedName && s.Status != models.SchoolStatusMerged {
			return uniqueViolation()
		}
		if s.Slug == school.Slug {
			return uniqueViolation()
		}
	}
	cp := *school
	m.Schools[school.ID] = &cp
	return nil
}

func (m *MockSchoolRepository) GetByID(ctx context.Context, id string) (*models.School, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	school, ok := m.Schools[id]
	if !ok {
		return nil, nil
	}
	cp := *school
	return &cp, nil
}

func (m *MockSchoolRepository) GetBySlug(ctx context.Context, slug string) (*models.School, error) {
	for _, s := range m.Schools {
		if s.Slug == slug {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockSchoolRepository) GetByNormalizedName(ctx context.Context, normalized string) (*models.School, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, s := range m.Schools {
		if s.NormalizedName == normalized && s.Status != models.SchoolStatusMerged {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockSchoolRepository) Update(ctx context.Context, school *models.School) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *school
	m.Schools[school.ID] = &cp
	return nil
}

func (m *MockSchoolRepository) SetStatus(ctx context.Context, id string, status models.SchoolStatus) error {
	if m.Err != nil {
		return m.Err
	}
	school, ok := m.Schools[id]
	if !ok {
		return nil
	}
	school.Status = status
	return nil
}

func (m *MockSchoolRepository) List(ctx context.Context, filter *models.SchoolListFilter) ([]*models.School, int, error) {
	var out []*models.School
	for _, s := range m.Schools {
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *MockSchoolRepository) Autocomplete(ctx context.Context, normalizedQuery string, limit int) ([]*models.School, error) {
	var out []*models.School
	for _, s := range m.Schools {
		if !s.Visible || s.Status != models.SchoolStatusActive {
			continue
		}
		if !strings.Contains(s.NormalizedName, normalizedQuery) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockSchoolRepository) NameExists(ctx context.Context, normalized, excludeID string) (bool, error) {
	for _, s := range m.Schools {
		if s.ID != excludeID && s.NormalizedName == normalized && s.Status != models.SchoolStatusMerged {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSchoolRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, s := range m.Schools {
		if s.ID != excludeID && s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSchoolRepository) Count(ctx context.Context) (int, error) {
	return len(m.Schools), nil
}

// MockAliasRepository is an in-memory implementation of AliasRepository
type MockAliasRepository struct {
	Aliases map[string]*models.SchoolAlias
	Err     error
}

func NewMockAliasRepository() *MockAliasRepository {
	return &MockAliasRepository{Aliases: make(map[string]*models.SchoolAlias)}
}

func (m *MockAliasRepository) Create(ctx context.Context, alias *models.SchoolAlias) error {
	if m.Err != nil {
		return m.Err
	}
	for _, a := range m.Aliases {
		if a.NormalizedName == alias.NormalizedName {
			return uniqueViolation()
		}
	}
	cp := *alias
	m.Aliases[alias.ID] = &cp
	return nil
}

func (m *MockAliasRepository) GetByID(ctx context.Context, id string) (*models.SchoolAlias, error) {
	alias, ok := m.Aliases[id]
	if !ok {
		return nil, nil
	}
	cp := *alias
	return &cp, nil
}

func (m *MockAliasRepository) ListBySchool(ctx context.Context, schoolID string) ([]*models.SchoolAlias, error) {
	var out []*models.SchoolAlias
	for _, a := range m.Aliases {
		if a.SchoolID == schoolID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockAliasRepository) Delete(ctx context.Context, id string) error {
	delete(m.Aliases, id)
	return nil
}

func (m *MockAliasRepository) Count(ctx context.Context) (int, error) {
	return len(m.Aliases), nil
}

// MockReviewRepository is an in-memory implementation of ReviewRepository
type MockReviewRepository struct {
	Reviews map[string]*models.Review
	Schools *MockSchoolRepository // for SchoolAggregates
	Err     error
}

func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{Reviews: make(map[string]*models.Review)}
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *review
	m.Reviews[review.ID] = &cp
	return nil
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	review, ok := m.Reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *review
	return &cp, nil
}

func (m *MockReviewRepository) List(ctx context.Context, filter *models.ReviewListFilter) ([]*models.Review, int, error) {
	var out []*models.Review
	for _, r := range m.Reviews {
		if filter.SchoolID != "" && (r.SchoolID == nil || *r.SchoolID != filter.SchoolID) {
			continue
		}
		if filter.Visible != nil && r.Visible != *filter.Visible {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *MockReviewRepository) ListBySchool(ctx context.Context, schoolID string, visibleOnly bool) ([]*models.Review, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*models.Review
	for _, r := range m.Reviews {
		if r.SchoolID == nil || *r.SchoolID != schoolID {
			continue
		}
		if visibleOnly && !r.Visible {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockReviewRepository) ReassignSchool(ctx context.Context, fromSchoolID, toSchoolID string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	var moved int64
	for _, r := range m.Reviews {
		if r.SchoolID != nil && *r.SchoolID == fromSchoolID {
			to := toSchoolID
			r.SchoolID = &to
			moved++
		}
	}
	return moved, nil
}

func (m *MockReviewRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	review, ok := m.Reviews[id]
	if !ok {
		return nil
	}
	review.Visible = visible
	return nil
}

func (m *MockReviewRepository) SchoolAggregates(ctx context.Context) ([]*models.RankingEntry, error) {
	if m.Schools == nil {
		return nil, nil
	}
	var entries []*models.RankingEntry
	for _, s := range m.Schools.Schools {
		if !s.Visible || s.Status == models.SchoolStatusMerged {
			continue
		}
		entry := &models.RankingEntry{SchoolID: s.ID, Name: s.Name, Slug: s.Slug}
		sum, n := 0, 0
		for _, r := range m.Reviews {
			if r.SchoolID == nil || *r.SchoolID != s.ID || !r.Visible {
				continue
			}
			entry.ReviewCount++
			if r.RatingOverall != nil {
				sum += *r.RatingOverall
				n++
			}
		}
		if n > 0 {
			avg := float64(sum) / float64(n)
			entry.AverageRating = &avg
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *MockReviewRepository) StreamAll(ctx context.Context, callback func(*models.Review) error) error {
	var out []*models.Review
	for _, r := range m.Reviews {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	for _, r := range out {
		if err := callback(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockReviewRepository) Count(ctx context.Context) (int, error) {
	return len(m.Reviews), nil
}

// MockLikeRepository is an in-memory implementation of LikeRepository
type MockLikeRepository struct {
	Likes map[string]map[string]bool // review ID -> client ID set
	Err   error
}

func NewMockLikeRepository() *MockLikeRepository {
	return &MockLikeRepository{Likes: make(map[string]map[string]bool)}
}

func (m *MockLikeRepository) Insert(ctx context.Context, reviewID, clientID string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Likes[reviewID] == nil {
		m.Likes[reviewID] = make(map[string]bool)
	}
	if m.Likes[reviewID][clientID] {
		return uniqueViolation()
	}
	m.Likes[reviewID][clientID] = true
	return nil
}

func (m *MockLikeRepository) Delete(ctx context.Context, reviewID, clientID string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Likes[reviewID], clientID)
	return nil
}

func (m *MockLikeRepository) Exists(ctx context.Context, reviewID, clientID string) (bool, error) {
	return m.Likes[reviewID][clientID], nil
}

func (m *MockLikeRepository) CountByReview(ctx context.Context, reviewID string) (int, error) {
	return len(m.Likes[reviewID]), nil
}

// MockArticleRepository is an in-memory implementation of ArticleRepository
type MockArticleRepository struct {
	Articles     map[string]*models.Article
	Associations []*models.ArticleSchool
	Err          error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	for _, a := range m.Articles {
		if a.Slug == article.Slug {
			return uniqueViolation()
		}
	}
	cp := *article
	m.Articles[article.ID] = &cp
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	article, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	cp := *article
	return &cp, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	for _, a := range m.Articles {
		if a.Slug == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *article
	m.Articles[article.ID] = &cp
	return nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, a := range m.Articles {
		if a.ID != excludeID && a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter *models.ArticleListFilter) ([]*models.Article, int, error) {
	var matched []*models.Article
	for _, a := range m.Articles {
		if filter.VisibleOnly && !a.Visible {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(a.Title, filter.Query) {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *MockArticleRepository) ListLatestVisible(ctx context.Context, limit int) ([]*models.Article, error) {
	var out []*models.Article
	for _, a := range m.Articles {
		if a.Visible {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublishedAt == nil || out[j].PublishedAt == nil {
			return out[j].PublishedAt == nil
		}
		return out[i].PublishedAt.After(*out[j].PublishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockArticleRepository) AttachSchool(ctx context.Context, assoc *models.ArticleSchool) error {
	for _, a := range m.Associations {
		if a.ArticleID == assoc.ArticleID && a.SchoolID == assoc.SchoolID {
			return uniqueViolation()
		}
	}
	cp := *assoc
	m.Associations = append(m.Associations, &cp)
	return nil
}

func (m *MockArticleRepository) DetachSchool(ctx context.Context, articleID, schoolID string) error {
	out := m.Associations[:0]
	for _, a := range m.Associations {
		if !(a.ArticleID == articleID && a.SchoolID == schoolID) {
			out = append(out, a)
		}
	}
	m.Associations = out
	return nil
}

func (m *MockArticleRepository) ListSchools(ctx context.Context, articleID string) ([]*models.ArticleSchool, error) {
	var out []*models.ArticleSchool
	for _, a := range m.Associations {
		if a.ArticleID == articleID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	return len(m.Articles), nil
}

