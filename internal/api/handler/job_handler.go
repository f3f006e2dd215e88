package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, "CreateJob", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondBindError(c, "CreateJob", err)
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), req.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Data:    dto.NewJobResponse(job, h.service.Now()),
		Message: "Job created successfully",
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := h.parseJobID(c)
	if !ok {
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.NewJobResponse(job, h.service.Now()),
	})
}

// ListJobs handles GET /api/v1/jobs
// Lists jobs with optional filtering, sorting and pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondBindError(c, "ListJobs", err)
		return
	}

	q, err := req.ToQuery(h.listLimits)
	if err != nil {
		h.respondBindError(c, "ListJobs", err)
		return
	}

	h.logger.Debug("Listing jobs",
		slog.String("sort", string(q.Sort.Key)),
		slog.String("order", string(q.Sort.Direction)),
		slog.Int("page", q.Page.Number),
		slog.Int("limit", q.Page.Limit),
	)

	result, err := h.service.ListJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success:    true,
		Data:       dto.NewJobResponses(result.Jobs, h.service.Now()),
		Pagination: &result.Pagination,
	})
}

// SearchJobs handles GET /api/v1/jobs/search
// Full-text search over active jobs with optional JSON filters
func (h *JobHandler) SearchJobs(c *gin.Context) {
	var req dto.SearchJobsQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondBindError(c, "SearchJobs", err)
		return
	}

	q, err := req.ToQuery(h.searchLimits)
	if err != nil {
		h.respondBindError(c, "SearchJobs", err)
		return
	}

	h.logger.Debug("Searching jobs",
		slog.Any("terms", q.Predicate.Terms),
		slog.String("sort", string(q.Sort.Key)),
		slog.Int("page", q.Page.Number),
		slog.Int("limit", q.Page.Limit),
	)

	result, err := h.service.SearchJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success:    true,
		Data:       dto.NewJobResponses(result.Jobs, h.service.Now()),
		Pagination: &result.Pagination,
	})
}

// UpdateJob handles PUT and PATCH /api/v1/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID, ok := h.parseJobID(c)
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, "UpdateJob", err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondBindError(c, "UpdateJob", err)
		return
	}

	job, err := h.service.UpdateJob(c.Request.Context(), jobID, req.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.NewJobResponse(job, h.service.Now()),
		Message: "Job updated successfully",
	})
}

// UpdateJobStatus handles PATCH /api/v1/jobs/:id/status
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	jobID, ok := h.parseJobID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, "UpdateJobStatus", err)
		return
	}

	job, err := h.service.UpdateJobStatus(c.Request.Context(), jobID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.NewJobResponse(job, h.service.Now()),
		Message: "Job status updated successfully",
	})
}

// ApplyToJob handles POST /api/v1/jobs/:id/apply
func (h *JobHandler) ApplyToJob(c *gin.Context) {
	jobID, ok := h.parseJobID(c)
	if !ok {
		return
	}

	job, err := h.service.ApplyToJob(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.NewJobResponse(job, h.service.Now()),
		Message: "Application recorded",
	})
}

// DeleteJob handles DELETE /api/v1/jobs/:id
// Permanently deletes a job record
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, ok := h.parseJobID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteJob(c.Request.Context(), jobID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job deleted successfully",
	})
}
