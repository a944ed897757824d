package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/models"
	"github.com/school-directory-api/internal/service"
)

// SchoolHandler handles school registry endpoints
type SchoolHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSchoolHandler creates a new SchoolHandler
func NewSchoolHandler(services *service.Services, log zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		services: services,
		log:      log.With().Str("handler", "school").Logger(),
	}
}

// CreateOrFind handles POST /v1/schools.
// Returns 201 when a new school is registered and 200 when an existing school
// with an equivalent name is found, so duplicate submissions are safe.
func (h *SchoolHandler) CreateOrFind(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	school, created, err := h.services.School.CreateOrFind(ctx, req.Name, req.Prefecture)
	if err != nil {
		if !service.IsValidation(err) {
			h.log.Error().Err(err).Msg("Failed to register school")
		}
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"id":     school.ID,
		"name":   school.Name,
		"status": school.Status,
	})
}

// Get handles GET /v1/schools/:id. The autocomplete path shares this wildcard
// segment and is dispatched here.
func (h *SchoolHandler) Get(c *gin.Context) {
	if c.Param("id") == "autocomplete" {
		h.Autocomplete(c)
		return
	}

	ctx := c.Request.Context()
	school, err := h.services.School.Get(ctx, c.Param("id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("school_id", c.Param("id")).Msg("Failed to get school")
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, school)
}

// List handles GET /v1/schools
func (h *SchoolHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	filter := &models.SchoolListFilter{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Page:   page,
		Limit:  limit,
	}

	schools, total, err := h.services.School.List(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list schools")
		respondError(c, err)
		return
	}
	if schools == nil {
		schools = []*models.School{}
	}

	c.JSON(http.StatusOK, gin.H{
		"schools": schools,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// Autocomplete handles GET /v1/schools/autocomplete?q=.
// An empty query returns an empty list, never an error.
func (h *SchoolHandler) Autocomplete(c *gin.Context) {
	ctx := c.Request.Context()

	schools, err := h.services.School.Autocomplete(ctx, c.Query("q"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to autocomplete schools")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schools": schools})
}

// Update handles PUT /v1/schools/:id
func (h *SchoolHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.UpdateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	school, err := h.services.School.Update(ctx, c.Param("id"), &req)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrNotFound &&
			err != service.ErrNameExists && err != service.ErrSlugExists {
			h.log.Error().Err(err).Str("school_id", c.Param("id")).Msg("Failed to update school")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, school)
}

// Merge handles POST /v1/schools/:id/merge
func (h *SchoolHandler) Merge(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.MergeSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TargetSchoolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_school_id is required"})
		return
	}

	if err := h.services.School.Merge(ctx, c.Param("id"), req.TargetSchoolID); err != nil {
		if err != service.ErrNotFound && err != service.ErrSelfMerge {
			// A failed step leaves the merge partially applied; log enough
			// context for manual inspection
			h.log.Error().Err(err).
				Str("source_id", c.Param("id")).
				Str("target_id", req.TargetSchoolID).
				Msg("Merge failed")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "schools merged"})
}

// AddAlias handles POST /v1/schools/:id/aliases
func (h *SchoolHandler) AddAlias(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.AddAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alias, err := h.services.School.AddAlias(ctx, c.Param("id"), req.Name)
	if err != nil {
		if !service.IsValidation(err) && err != service.ErrNotFound && err != service.ErrAliasExists {
			h.log.Error().Err(err).Str("school_id", c.Param("id")).Msg("Failed to add alias")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, alias)
}

// ListAliases handles GET /v1/schools/:id/aliases
func (h *SchoolHandler) ListAliases(c *gin.Context) {
	ctx := c.Request.Context()

	aliases, err := h.services.School.ListAliases(ctx, c.Param("id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("school_id", c.Param("id")).Msg("Failed to list aliases")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"aliases": aliases})
}

// RemoveAlias handles DELETE /v1/schools/:id/aliases/:alias_id
func (h *SchoolHandler) RemoveAlias(c *gin.Context) {
	ctx := c.Request.Context()

	err := h.services.School.RemoveAlias(ctx, c.Param("id"), c.Param("alias_id"))
	if err != nil {
		if err != service.ErrNotFound {
			h.log.Error().Err(err).Str("alias_id", c.Param("alias_id")).Msg("Failed to remove alias")
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "alias removed"})
}
