package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamReviewsCSV handles GET /v1/exports/reviews.csv.
// Streams all raw review rows directly to the response.
func (h *ExportHandler) StreamReviewsCSV(c *gin.Context) {
	ctx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
	c.Writer.Header().Set("Content-Disposition", "attachment; filename=reviews.csv")

	if err := h.services.Export.StreamReviewsCSV(ctx, c.Writer); err != nil {
		h.log.Error().Err(err).Msg("Reviews export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
