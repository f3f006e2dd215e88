package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
	"github.com/cuongbtq/job-board/internal/api/search"
	"github.com/cuongbtq/job-board/internal/api/stats"
)

// MemoryStore keeps jobs in process. It evaluates predicates, scoring and
// aggregation with the same rules the Postgres store expresses in SQL.
type MemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]domain.Job
	logger *slog.Logger
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		jobs:   make(map[string]domain.Job),
		logger: logger,
	}
}

func (s *MemoryStore) CreateJob(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return domain.NewValidationError("id", "job already exists")
	}
	s.jobs[job.ID] = cloneJob(*job)

	s.logger.Debug("Job stored in memory", slog.String("job_id", job.ID))
	return nil
}

func (s *MemoryStore) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	job = cloneJob(job)
	return &job, nil
}

func (s *MemoryStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.jobs[job.ID]
	if !ok {
		return domain.ErrJobNotFound
	}

	updated := cloneJob(*job)
	updated.Views = stored.Views
	updated.Applications = stored.Applications
	updated.CreatedAt = stored.CreatedAt
	s.jobs[job.ID] = updated

	job.Views = stored.Views
	job.Applications = stored.Applications
	job.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryStore) UpdateJobStatus(ctx context.Context, id, status string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job

	out := cloneJob(job)
	return &out, nil
}

func (s *MemoryStore) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(s.jobs, id)

	s.logger.Debug("Job removed from memory store", slog.String("job_id", id))
	return nil
}

func (s *MemoryStore) FindJobs(ctx context.Context, q query.Query) (*FindResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	hits := make([]query.Hit, 0)
	for _, job := range s.jobs {
		if q.Predicate.Matches(&job) {
			hits = append(hits, query.Hit{Job: cloneJob(job)})
		}
	}
	s.mu.RUnlock()

	if q.Predicate.HasText() {
		hits = scoreHits(hits, q.Predicate.Terms)
	}

	q.Sort.Apply(hits)

	start, end := q.Page.Window(len(hits))
	return &FindResult{
		Hits:  hits[start:end],
		Total: int64(len(hits)),
	}, nil
}

func (s *MemoryStore) IncrementViews(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		job, ok := s.jobs[id]
		if !ok {
			continue
		}
		job.Views++
		s.jobs[id] = job
	}
	return nil
}

func (s *MemoryStore) IncrementApplications(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	job.Applications++
	s.jobs[id] = job

	out := cloneJob(job)
	return &out, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*domain.JobStats, error) {
	return stats.Compute(s.snapshot()), nil
}

func (s *MemoryStore) Facets(ctx context.Context) (*domain.FilterFacets, error) {
	return stats.Facets(s.snapshot()), nil
}

func (s *MemoryStore) DistinctValues(ctx context.Context, family, partial string, limit int) ([]string, error) {
	return stats.Distinct(s.snapshot(), family, partial, limit), nil
}

func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// snapshot copies every stored job
func (s *MemoryStore) snapshot() []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, cloneJob(job))
	}
	return jobs
}

// scoreHits annotates hits with relevance scores and drops those matching no term
func scoreHits(hits []query.Hit, terms []string) []query.Hit {
	docs := make([]search.Document, len(hits))
	for i := range hits {
		docs[i] = documentOf(&hits[i].Job)
	}

	scorer := search.NewTermScorer(terms, docs, search.DefaultWeights)

	scored := hits[:0]
	for i := range hits {
		score := scorer.Score(docs[i])
		if score <= 0 {
			continue
		}
		hits[i].Score = score
		scored = append(scored, hits[i])
	}
	return scored
}

func documentOf(j *domain.Job) search.Document {
	return search.Document{
		Title:       j.Title,
		Company:     j.Company,
		Skills:      j.Skills,
		Description: j.Description,
	}
}

func cloneJob(j domain.Job) domain.Job {
	j.Requirements = cloneStrings(j.Requirements)
	j.Responsibilities = cloneStrings(j.Responsibilities)
	j.Skills = cloneStrings(j.Skills)
	j.Benefits = cloneStrings(j.Benefits)
	j.Tags = cloneStrings(j.Tags)
	if j.Salary != nil {
		salary := *j.Salary
		salary.Min = cloneFloat(salary.Min)
		salary.Max = cloneFloat(salary.Max)
		j.Salary = &salary
	}
	if j.ContactInfo != nil {
		contact := *j.ContactInfo
		j.ContactInfo = &contact
	}
	return j
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
