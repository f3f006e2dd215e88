package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/cuongbtq/job-board/internal/api/service"
	"github.com/gin-gonic/gin"
)

// GetStats handles GET /api/v1/jobs/stats
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    stats,
	})
}

// GetFilters handles GET /api/v1/jobs/filters
func (h *JobHandler) GetFilters(c *gin.Context) {
	facets, err := h.service.Facets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    facets,
	})
}

// GetSuggestions handles GET /api/v1/jobs/suggestions
func (h *JobHandler) GetSuggestions(c *gin.Context) {
	var req dto.SuggestionsQuery
	_ = c.ShouldBindQuery(&req)

	suggestions, err := h.service.Suggest(c.Request.Context(), req.Q, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    suggestions,
	})
}

// HealthHandler serves GET /health
type HealthHandler struct {
	logger      *slog.Logger
	service     *service.JobService
	serviceName string
	version     string
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		logger:      deps.Logger,
		service:     deps.Service,
		serviceName: deps.ServiceName,
		version:     deps.Version,
	}
}

// Health reports liveness and whether the Job Store is reachable
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Version: h.version,
		Store:   "up",
	}

	if err := h.service.HealthCheck(ctx); err != nil {
		h.logger.Error("Health check failed", slog.Any("error", err))
		resp.Status = "unhealthy"
		resp.Store = "down"
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   "Job store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    resp,
	})
}
