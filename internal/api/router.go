package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-directory-api/internal/config"
	"github.com/school-directory-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	schoolHandler := NewSchoolHandler(services, log)
	reviewHandler := NewReviewHandler(services, log)
	articleHandler := NewArticleHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	{
		schools := v1.Group("/schools")
		{
			schools.POST("", schoolHandler.CreateOrFind)
			schools.GET("", schoolHandler.List)
			// GET /schools/autocomplete is served through the :id wildcard:
			// gin's tree rejects a static sibling of a path parameter
			schools.GET("/:id", schoolHandler.Get)
			schools.PUT("/:id", schoolHandler.Update)
			schools.POST("/:id/merge", schoolHandler.Merge)
			schools.GET("/:id/stats", reviewHandler.SchoolStats)
			schools.GET("/:id/prefecture-stats", reviewHandler.PrefectureStats)
			schools.POST("/:id/aliases", schoolHandler.AddAlias)
			schools.GET("/:id/aliases", schoolHandler.ListAliases)
			schools.DELETE("/:id/aliases/:alias_id", schoolHandler.RemoveAlias)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", reviewHandler.Create)
			reviews.GET("", reviewHandler.List)
			reviews.GET("/:id", reviewHandler.Get)
			reviews.POST("/:id/like", reviewHandler.Like)
			reviews.PUT("/:id/visibility", reviewHandler.SetVisibility)
		}

		v1.GET("/rankings", reviewHandler.Rankings)
		v1.GET("/home", reviewHandler.Home)

		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", articleHandler.Create)
			articles.GET("/:slug", articleHandler.GetBySlug)
			articles.GET("/:slug/schools", articleHandler.ListSchools)
			articles.PUT("/:id", articleHandler.Update)
			articles.POST("/:id/schools", articleHandler.AttachSchool)
			articles.DELETE("/:id/schools/:school_id", articleHandler.DetachSchool)
		}

		exports := v1.Group("/exports")
		{
			exports.GET("/reviews.csv", exportHandler.StreamReviewsCSV)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "school-directory-api",
	})
}

// metricsHandler returns database row counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		schoolsCount, _ := services.Export.GetCount(ctx, "schools")
		aliasesCount, _ := services.Export.GetCount(ctx, "aliases")
		reviewsCount, _ := services.Export.GetCount(ctx, "reviews")
		articlesCount, _ := services.Export.GetCount(ctx, "articles")

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"schools":  schoolsCount,
				"aliases":  aliasesCount,
				"reviews":  reviewsCount,
				"articles": articlesCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// respondError maps service errors onto HTTP statuses. Validation errors are
// client errors with the field details attached; uniqueness conflicts on
// explicit-create paths report "already exists"; anything else is a server
// error logged by the caller.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		body := gin.H{"error": ve.Message}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrSelfMerge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAliasExists),
		errors.Is(err, service.ErrSlugExists),
		errors.Is(err, service.ErrNameExists),
		errors.Is(err, service.ErrAssociationExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
