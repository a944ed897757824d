package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/service"
)

// ReviewHandler handles review, aggregation and ranking endpoints
type ReviewHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(services *service.Services, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		services: services,
		log:      log.With().Str("handler", "review").Logger(),
	}
}

// Create handles POST /v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	review, err := h.services.Review.Create(ctx, &req)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrNotFound {
			h.log.Error().Err(err).Msg("Failed to create review")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// Get handles GET /v1/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	review, err := h.services.Review.Get(ctx, c.Param("id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("review_id", c.Param("id")).Msg("Failed to get review")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// List handles GET /v1/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	filter := &models.ReviewListFilter{
		SchoolID: c.Query("school_id"),
		Page:     page,
		Limit:    limit,
	}
	if v := c.Query("visible"); v != "" {
		visible := v == "true"
		filter.Visible = &visible
	}

	reviews, total, err := h.services.Review.List(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reviews")
		respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// SetVisibility handles PUT /v1/reviews/:id/visibility
func (h *ReviewHandler) SetVisibility(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Visible == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visible is required"})
		return
	}

	if err := h.services.Review.SetVisibility(ctx, c.Param("id"), *req.Visible); err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("review_id", c.Param("id")).Msg("Failed to set review visibility")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "visibility updated"})
}

// Like handles POST /v1/reviews/:id/like.
// The client identity is the request origin address.
func (h *ReviewHandler) Like(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.services.Like.Toggle(ctx, c.Param("id"), c.ClientIP(), req.Action)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrNotFound {
			h.log.Error().Err(err).Str("review_id", c.Param("id")).Msg("Failed to toggle like")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SchoolStats handles GET /v1/schools/:id/stats
func (h *ReviewHandler) SchoolStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.services.Review.SchoolStats(ctx, c.Param("id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("school_id", c.Param("id")).Msg("Failed to compute school stats")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// PrefectureStats handles GET /v1/schools/:id/prefecture-stats
func (h *ReviewHandler) PrefectureStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.services.Review.PrefectureStats(ctx, c.Param("id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("school_id", c.Param("id")).Msg("Failed to compute prefecture stats")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Rankings handles GET /v1/rankings
func (h *ReviewHandler) Rankings(c *gin.Context) {
	ctx := c.Request.Context()

	rankings, err := h.services.Review.Rankings(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute rankings")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rankings)
}

// Home handles GET /v1/home: rankings plus the latest visible articles
func (h *ReviewHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()

	rankings, err := h.services.Review.Rankings(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute rankings")
		respondError(c, err)
		return
	}

	articles, err := h.services.Article.ListLatest(ctx, 5)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list latest articles")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rankings":        rankings,
		"latest_articles": articles,
	})
}
