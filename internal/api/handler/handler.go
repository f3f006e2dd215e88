package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/cuongbtq/job-board/internal/api/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Service      *service.JobService
	ListLimits   dto.PageLimits
	SearchLimits dto.PageLimits
	ServiceName  string
	Version      string
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger       *slog.Logger
	service      *service.JobService
	listLimits   dto.PageLimits
	searchLimits dto.PageLimits
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:       deps.Logger,
		service:      deps.Service,
		listLimits:   deps.ListLimits,
		searchLimits: deps.SearchLimits,
	}
}

// parseJobID reads and validates the :id path parameter. It writes a 400
// response and returns false when the id is not a UUID.
func (h *JobHandler) parseJobID(c *gin.Context) (string, bool) {
	jobID := c.Param("id")
	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Warn("Invalid job id format",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		respondError(c, domain.NewValidationError("id", "must be a valid UUID"))
		return "", false
	}
	return jobID, true
}

// respondError maps an error onto the response envelope. Store failures are
// reported with a generic message; the cause has already been logged.
func respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Error:   "Validation failed",
			Details: vErr.Details,
		})
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, dto.Response{
			Success: false,
			Error:   "Job not found",
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.Response{
			Success: false,
			Error:   "Internal server error",
		})
	}
}

// respondBindError reports a request that failed binding or validation
func (h *JobHandler) respondBindError(c *gin.Context, op string, err error) {
	vErr := dto.ValidationErrorFrom(err)
	h.logger.Warn("Invalid request",
		slog.String("operation", op),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.String("error", vErr.Error()),
	)
	respondError(c, vErr)
}
