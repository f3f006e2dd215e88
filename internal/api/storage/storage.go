// Package storage implements the Job Store: persistence, predicate
// execution and aggregation over job postings.
package storage

import (
	"context"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
)

// Store is the persisted job collection
type Store interface {
	// CreateJob inserts a new job; the job must already carry its id and defaults
	CreateJob(ctx context.Context, job *domain.Job) error

	// GetJobByID returns domain.ErrJobNotFound when no job has the id
	GetJobByID(ctx context.Context, id string) (*domain.Job, error)

	// UpdateJob writes every mutable attribute of job. Views and applications
	// are never written; the stored counters are copied back into job.
	UpdateJob(ctx context.Context, job *domain.Job) error

	// UpdateJobStatus sets the status of one job and returns the updated record
	UpdateJobStatus(ctx context.Context, id, status string) (*domain.Job, error)

	// DeleteJob permanently removes a job
	DeleteJob(ctx context.Context, id string) error

	// FindJobs executes a compiled query, returning one page of hits and the
	// total number of matching jobs
	FindJobs(ctx context.Context, q query.Query) (*FindResult, error)

	// IncrementViews atomically adds one view to each listed job
	IncrementViews(ctx context.Context, ids []string) error

	// IncrementApplications atomically adds one application to a job
	IncrementApplications(ctx context.Context, id string) (*domain.Job, error)

	// Stats aggregates statistics over the whole collection
	Stats(ctx context.Context) (*domain.JobStats, error)

	// Facets lists the filter values in use by active jobs
	Facets(ctx context.Context) (*domain.FilterFacets, error)

	// DistinctValues returns up to limit distinct values of a suggestion
	// family among active jobs containing partial, case-insensitively
	DistinctValues(ctx context.Context, family, partial string, limit int) ([]string, error)

	// HealthCheck verifies the store is reachable
	HealthCheck(ctx context.Context) error
}

// FindResult is one page of a list or search query
type FindResult struct {
	Hits  []query.Hit
	Total int64
}

// Jobs returns the jobs of the page in order
func (r *FindResult) Jobs() []domain.Job {
	jobs := make([]domain.Job, len(r.Hits))
	for i, h := range r.Hits {
		jobs[i] = h.Job
	}
	return jobs
}

// IDs returns the ids of the jobs in the page
func (r *FindResult) IDs() []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.Job.ID
	}
	return ids
}
