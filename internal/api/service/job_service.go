// Package service implements the job board operations on top of the Job Store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/job-board/internal/api/cache"
	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
	"github.com/cuongbtq/job-board/internal/api/storage"
	"github.com/cuongbtq/job-board/internal/api/views"
	"github.com/google/uuid"
)

// Suggestion limits
const (
	MinSuggestionLength  = 2
	SuggestionsPerFamily = 10
	SuggestionsPerAll    = 5
)

// Config holds the collaborators of a JobService
type Config struct {
	Store  storage.Store
	Cache  *cache.Cache
	Views  views.Recorder
	Logger *slog.Logger
}

// JobService coordinates the store, the aggregate cache and view recording
type JobService struct {
	store  storage.Store
	cache  *cache.Cache
	views  views.Recorder
	logger *slog.Logger
	now    func() time.Time
}

// NewJobService creates a JobService. Cache may be nil.
func NewJobService(cfg *Config) *JobService {
	return &JobService{
		store:  cfg.Store,
		cache:  cfg.Cache,
		views:  cfg.Views,
		logger: cfg.Logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Now returns the service clock
func (s *JobService) Now() time.Time {
	return s.now()
}

// FindResult is one page of jobs with its pagination metadata
type FindResult struct {
	Jobs       []domain.Job
	Pagination query.Pagination
}

// CreateJob assigns an id and the system-maintained defaults, then stores the job
func (s *JobService) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	job.ID = uuid.New().String()
	job.ApplyDefaults(s.now())

	if err := s.store.CreateJob(ctx, job); err != nil {
		s.logger.Error("Failed to create job",
			slog.String("title", job.Title),
			slog.String("company", job.Company),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.cache.Invalidate(ctx)

	s.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.String("source", job.Source),
	)

	return job, nil
}

// GetJob returns one job and records a view for it
func (s *JobService) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		s.logStoreError("GetJob", err, slog.String("job_id", id))
		return nil, err
	}

	s.views.Record([]string{job.ID})
	return job, nil
}

// UpdateJob merges a partial update into the stored job. Counters are never
// changed by an update.
func (s *JobService) UpdateJob(ctx context.Context, id string, update *domain.JobUpdate) (*domain.Job, error) {
	job, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		s.logStoreError("UpdateJob", err, slog.String("job_id", id))
		return nil, err
	}

	update.Apply(job, s.now())

	if job.Salary != nil {
		if lo, hi := job.Salary.Min, job.Salary.Max; lo != nil && hi != nil && *lo > *hi {
			return nil, domain.NewValidationError("salary.max", "must be greater than or equal to salary.min")
		}
	}
	if job.ExpiryDate.Before(job.PostedDate) {
		return nil, domain.NewValidationError("expiryDate", "must not be before postedDate")
	}

	if err := s.store.UpdateJob(ctx, job); err != nil {
		s.logStoreError("UpdateJob", err, slog.String("job_id", id))
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return job, nil
}

// UpdateJobStatus moves a job to another status
func (s *JobService) UpdateJobStatus(ctx context.Context, id, status string) (*domain.Job, error) {
	if !domain.Contains(domain.JobStatuses, status) {
		return nil, domain.NewValidationError("status", "must be one of: "+strings.Join(domain.JobStatuses, ", "))
	}

	job, err := s.store.UpdateJobStatus(ctx, id, status)
	if err != nil {
		s.logStoreError("UpdateJobStatus", err,
			slog.String("job_id", id),
			slog.String("status", status),
		)
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return job, nil
}

// ApplyToJob counts one application for an active job
func (s *JobService) ApplyToJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		s.logStoreError("ApplyToJob", err, slog.String("job_id", id))
		return nil, err
	}
	if !job.IsActive() {
		return nil, domain.NewValidationError("status", "applications are only accepted for active jobs")
	}

	job, err = s.store.IncrementApplications(ctx, id)
	if err != nil {
		s.logStoreError("ApplyToJob", err, slog.String("job_id", id))
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return job, nil
}

// DeleteJob permanently removes a job
func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	if err := s.store.DeleteJob(ctx, id); err != nil {
		s.logStoreError("DeleteJob", err, slog.String("job_id", id))
		return err
	}

	s.cache.Invalidate(ctx)

	s.logger.Info("Job deleted", slog.String("job_id", id))
	return nil
}

// ListJobs runs a listing query
func (s *JobService) ListJobs(ctx context.Context, q query.Query) (*FindResult, error) {
	return s.find(ctx, "ListJobs", q)
}

// SearchJobs runs a search query
func (s *JobService) SearchJobs(ctx context.Context, q query.Query) (*FindResult, error) {
	return s.find(ctx, "SearchJobs", q)
}

// find executes q and records one view for every returned job once the page is built
func (s *JobService) find(ctx context.Context, op string, q query.Query) (*FindResult, error) {
	res, err := s.store.FindJobs(ctx, q)
	if err != nil {
		s.logStoreError(op, err,
			slog.Any("terms", q.Predicate.Terms),
			slog.String("sort", string(q.Sort.Key)),
			slog.Int("page", q.Page.Number),
			slog.Int("limit", q.Page.Limit),
		)
		return nil, err
	}

	result := &FindResult{
		Jobs:       res.Jobs(),
		Pagination: query.NewPagination(q.Page, res.Total),
	}

	s.views.Record(res.IDs())
	return result, nil
}

// Stats returns the collection statistics, served from cache when possible
func (s *JobService) Stats(ctx context.Context) (*domain.JobStats, error) {
	var cached domain.JobStats
	if s.cache.GetJSON(ctx, cache.KeyStats, &cached) {
		return &cached, nil
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.logStoreError("Stats", err)
		return nil, err
	}

	s.cache.SetJSON(ctx, cache.KeyStats, stats)
	return stats, nil
}

// Facets returns the filter values in use, served from cache when possible
func (s *JobService) Facets(ctx context.Context) (*domain.FilterFacets, error) {
	var cached domain.FilterFacets
	if s.cache.GetJSON(ctx, cache.KeyFilters, &cached) {
		return &cached, nil
	}

	facets, err := s.store.Facets(ctx)
	if err != nil {
		s.logStoreError("Facets", err)
		return nil, err
	}

	s.cache.SetJSON(ctx, cache.KeyFilters, facets)
	return facets, nil
}

// Suggest completes partial text within a suggestion family. Input shorter
// than MinSuggestionLength yields no suggestions, and an unknown family is
// treated as "all".
func (s *JobService) Suggest(ctx context.Context, partial, family string) ([]domain.Suggestion, error) {
	partial = strings.TrimSpace(partial)
	if len([]rune(partial)) < MinSuggestionLength {
		return []domain.Suggestion{}, nil
	}

	families := []string{family}
	limit := SuggestionsPerFamily
	if !domain.Contains(domain.SuggestionFamilies, family) {
		families = domain.SuggestionFamilies
		limit = SuggestionsPerAll
	}

	suggestions := []domain.Suggestion{}
	for _, f := range families {
		values, err := s.store.DistinctValues(ctx, f, partial, limit)
		if err != nil {
			s.logStoreError("Suggest", err,
				slog.String("family", f),
				slog.String("partial", partial),
			)
			return nil, err
		}
		for _, v := range values {
			suggestions = append(suggestions, domain.Suggestion{Text: v, Type: f})
		}
	}

	return suggestions, nil
}

// HealthCheck verifies the store is reachable
func (s *JobService) HealthCheck(ctx context.Context) error {
	return s.store.HealthCheck(ctx)
}

// logStoreError logs unexpected store failures; not-found and validation
// outcomes are expected and stay at debug level.
func (s *JobService) logStoreError(op string, err error, attrs ...any) {
	args := append([]any{slog.String("operation", op), slog.Any("error", err)}, attrs...)
	if isExpected(err) {
		s.logger.Debug("Job store request rejected", args...)
		return
	}
	s.logger.Error("Job store operation failed", args...)
}

func isExpected(err error) bool {
	return errors.Is(err, domain.ErrJobNotFound) || domain.IsValidationError(err)
}
