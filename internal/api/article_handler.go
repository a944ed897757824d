package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/service"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /v1/articles?category=&q=&page=&limit=.
// An unknown category value is ignored, not rejected.
func (h *ArticleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	filter := &models.ArticleListFilter{
		Category:    c.Query("category"),
		Query:       c.Query("q"),
		Page:        page,
		Limit:       limit,
		VisibleOnly: true,
	}

	list, err := h.services.Article.List(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Article.Create(ctx, &req)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrSlugExists {
			h.log.Error().Err(err).Msg("Failed to create article")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// GetBySlug handles GET /v1/articles/:slug
func (h *ArticleHandler) GetBySlug(c *gin.Context) {
	ctx := c.Request.Context()

	article, err := h.services.Article.GetBySlug(ctx, c.Param("slug"), false)
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("slug", c.Param("slug")).Msg("Failed to get article")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// Update handles PUT /v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Article.Update(ctx, c.Param("id"), &req)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrNotFound && err != service.ErrSlugExists {
			h.log.Error().Err(err).Str("article_id", c.Param("id")).Msg("Failed to update article")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// AttachSchool handles POST /v1/articles/:id/schools
func (h *ArticleHandler) AttachSchool(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.AttachSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.services.Article.AttachSchool(ctx, c.Param("id"), &req)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrNotFound && err != service.ErrAssociationExists {
			h.log.Error().Err(err).Str("article_id", c.Param("id")).Msg("Failed to attach school")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "school attached"})
}

// DetachSchool handles DELETE /v1/articles/:id/schools/:school_id
func (h *ArticleHandler) DetachSchool(c *gin.Context) {
	ctx := c.Request.Context()

	err := h.services.Article.DetachSchool(ctx, c.Param("id"), c.Param("school_id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("article_id", c.Param("id")).Msg("Failed to detach school")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "school detached"})
}

// ListSchools handles GET /v1/articles/:slug/schools.
// The article is resolved by slug; hidden articles are included so the admin
// UI can manage associations before publication.
func (h *ArticleHandler) ListSchools(c *gin.Context) {
	ctx := c.Request.Context()

	article, err := h.services.Article.GetBySlug(ctx, c.Param("slug"), true)
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("slug", c.Param("slug")).Msg("Failed to get article")
		}
		respondError(c, err)
		return
	}

	assocs, err := h.services.Article.ListSchools(ctx, article.ID)
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("article_id", article.ID).Msg("Failed to list article schools")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schools": assocs})
}
