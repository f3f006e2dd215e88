package router

import (
	"net/http"

	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/cuongbtq/job-board/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// Options holds the cross-cutting HTTP settings
type Options struct {
	AllowedOrigins []string
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *RateLimiter
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	dto.SetupValidator()

	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	healthHandler := handler.NewHealthHandler(deps)
	r.GET("/health", healthHandler.Health)

	jobHandler := handler.NewJobHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	if opts.RateLimiter != nil {
		v1.Use(RateLimitMiddleware(opts.RateLimiter))
	}
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobHandler.ListJobs)
			jobs.POST("", jobHandler.CreateJob)

			jobs.GET("/search", jobHandler.SearchJobs)
			jobs.GET("/stats", jobHandler.GetStats)
			jobs.GET("/filters", jobHandler.GetFilters)
			jobs.GET("/suggestions", jobHandler.GetSuggestions)

			jobs.GET("/:id", jobHandler.GetJob)
			jobs.PUT("/:id", jobHandler.UpdateJob)
			jobs.PATCH("/:id", jobHandler.UpdateJob)
			jobs.DELETE("/:id", jobHandler.DeleteJob)
			jobs.PATCH("/:id/status", jobHandler.UpdateJobStatus)
			jobs.POST("/:id/apply", jobHandler.ApplyToJob)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Response{
			Success: false,
			Error:   "Route not found",
		})
	})

	return r
}
