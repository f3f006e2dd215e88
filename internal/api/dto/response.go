package dto

import (
	"time"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
)

// Response is the envelope of every API response
type Response struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Pagination *query.Pagination   `json:"pagination,omitempty"`
	Message    string              `json:"message,omitempty"`
	Error      string              `json:"error,omitempty"`
	Details    []domain.FieldError `json:"details,omitempty"`
}

// JobResponse is a job with its derived display attributes
type JobResponse struct {
	domain.Job
	SalaryRange     string `json:"salaryRange,omitempty"`
	DaysSincePosted int    `json:"daysSincePosted"`
	IsExpired       bool   `json:"isExpired"`
}

// NewJobResponse derives the display attributes of j at now
func NewJobResponse(j *domain.Job, now time.Time) JobResponse {
	return JobResponse{
		Job:             *j,
		SalaryRange:     j.SalaryRange(),
		DaysSincePosted: j.DaysSincePosted(now),
		IsExpired:       j.IsExpired(now),
	}
}

// NewJobResponses converts a page of jobs
func NewJobResponses(jobs []domain.Job, now time.Time) []JobResponse {
	out := make([]JobResponse, len(jobs))
	for i := range jobs {
		out[i] = NewJobResponse(&jobs[i], now)
	}
	return out
}

// HealthResponse is the payload of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Store   string `json:"store"`
}
