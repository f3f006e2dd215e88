package storage

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 {
	return &v
}

var baseDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, jobs ...domain.Job) *MemoryStore {
	t.Helper()

	store := NewMemoryStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := range jobs {
		job := jobs[i]
		job.ApplyDefaults(baseDate)
		require.NoError(t, store.CreateJob(context.Background(), &job))
	}
	return store
}

func listingJobs() []domain.Job {
	return []domain.Job{
		{ID: "D1", Title: "Backend Engineer", Company: "Acme", JobType: domain.JobTypeFullTime, Remote: domain.RemoteRemote, PostedDate: baseDate.AddDate(0, 0, 1)},
		{ID: "D2", Title: "Frontend Engineer", Company: "Beta", JobType: domain.JobTypeFullTime, Remote: domain.RemoteRemote, PostedDate: baseDate.AddDate(0, 0, 2)},
		{ID: "D3", Title: "Platform Engineer", Company: "Gamma", JobType: domain.JobTypeFullTime, Remote: domain.RemoteRemote, PostedDate: baseDate.AddDate(0, 0, 3)},
		{ID: "X1", Title: "Contract Engineer", Company: "Delta", JobType: domain.JobTypeContract, Remote: domain.RemoteRemote, PostedDate: baseDate.AddDate(0, 0, 4)},
		{ID: "X2", Title: "Office Engineer", Company: "Echo", JobType: domain.JobTypeFullTime, Remote: domain.RemoteOnSite, PostedDate: baseDate.AddDate(0, 0, 5)},
		{ID: "X3", Title: "Filled Engineer", Company: "Foxtrot", JobType: domain.JobTypeFullTime, Remote: domain.RemoteRemote, Status: domain.JobStatusFilled, PostedDate: baseDate.AddDate(0, 0, 6)},
	}
}

func TestMemoryStore_FindJobs_Listing(t *testing.T) {
	store := newTestStore(t, listingJobs()...)
	ctx := context.Background()

	q := query.Query{
		Predicate: query.Compile(query.Params{JobType: domain.JobTypeFullTime, Remote: domain.RemoteRemote}),
		Sort:      query.Sort{Key: query.SortPostedDate, Direction: query.Desc},
		Page:      query.Page{Number: 1, Limit: 2},
	}

	res, err := store.FindJobs(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"D3", "D2"}, res.IDs())
	assert.Equal(t, query.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2, HasNext: true, HasPrev: false},
		query.NewPagination(q.Page, res.Total))

	t.Run("second page", func(t *testing.T) {
		q.Page.Number = 2
		res, err := store.FindJobs(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"D1"}, res.IDs())
		assert.Equal(t, int64(3), res.Total)
	})

	t.Run("page past the end", func(t *testing.T) {
		q.Page.Number = 5
		res, err := store.FindJobs(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, res.Hits)
		assert.Equal(t, int64(3), res.Total)
	})
}

func TestMemoryStore_FindJobs_NoFalsePositives(t *testing.T) {
	store := newTestStore(t, listingJobs()...)

	pred := query.Compile(query.Params{Remote: domain.RemoteRemote})
	res, err := store.FindJobs(context.Background(), query.Query{
		Predicate: pred,
		Sort:      query.Sort{Key: query.SortCompany, Direction: query.Asc},
		Page:      query.Page{Number: 1, Limit: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"D1", "D2", "X1", "D3"}, res.IDs())
	for _, job := range res.Jobs() {
		assert.True(t, pred.Matches(&job))
	}
}

func TestMemoryStore_FindJobs_Search(t *testing.T) {
	store := newTestStore(t,
		domain.Job{ID: "P1", Title: "Python Developer", Company: "Snake", Skills: []string{"Django"}, Salary: &domain.Salary{Min: fptr(90000), Max: fptr(120000)}},
		domain.Job{ID: "P2", Title: "Data Analyst", Company: "Numbers", Description: "python scripting", Salary: &domain.Salary{Min: fptr(95000)}},
		domain.Job{ID: "P3", Title: "Python Intern", Company: "Snake", Salary: &domain.Salary{Min: fptr(20000)}},
		domain.Job{ID: "P4", Title: "Python Lead", Company: "Snake", Status: domain.JobStatusDraft, Salary: &domain.Salary{Min: fptr(150000)}},
		domain.Job{ID: "G1", Title: "Go Developer", Company: "Gopher", Salary: &domain.Salary{Min: fptr(100000)}},
	)

	q := query.Query{
		Predicate: query.CompileSearch(query.Params{MinSalary: fptr(80000)}, []string{"python"}),
		Sort:      query.Sort{Key: query.SortRelevance, Direction: query.Desc},
		Page:      query.Page{Number: 1, Limit: 20},
	}

	res, err := store.FindJobs(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, []string{"P1", "P2"}, res.IDs())
	assert.Equal(t, int64(2), res.Total)
	assert.Greater(t, res.Hits[0].Score, res.Hits[1].Score)
}

func TestMemoryStore_FindJobs_TitleOutranksRepeatedDescription(t *testing.T) {
	store := newTestStore(t,
		domain.Job{ID: "T1", Title: "Senior Engineer", Company: "Acme", Description: "Own the platform"},
		domain.Job{ID: "T2", Title: "Platform Lead", Company: "Beta", Description: "engineer engineer engineer engineer engineer engineer"},
		domain.Job{ID: "T3", Title: "Recruiter", Company: "Gamma", Skills: []string{"Engineering", "Engineer hiring"}, Description: "Hire every engineer"},
	)

	q := query.Query{
		Predicate: query.CompileSearch(query.Params{}, []string{"engineer"}),
		Sort:      query.Sort{Key: query.SortRelevance, Direction: query.Desc},
		Page:      query.Page{Number: 1, Limit: 20},
	}

	res, err := store.FindJobs(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, res.Hits, 3)
	assert.Equal(t, "T1", res.Hits[0].Job.ID)
	assert.Equal(t, []string{"T1", "T3", "T2"}, res.IDs())
}

func TestMemoryStore_FindJobs_PageFarPastEnd(t *testing.T) {
	store := newTestStore(t, listingJobs()...)

	for _, rawPage := range []string{"9223372036854775807", "922337203685477581", "1000000"} {
		t.Run(rawPage, func(t *testing.T) {
			q := query.Query{
				Predicate: query.Compile(query.Params{}),
				Sort:      query.Sort{Key: query.SortPostedDate, Direction: query.Desc},
				Page:      query.ParsePage(rawPage, "10", query.DefaultListLimit, query.MaxLimit),
			}

			var res *FindResult
			var err error
			require.NotPanics(t, func() {
				res, err = store.FindJobs(context.Background(), q)
			})
			require.NoError(t, err)
			assert.Empty(t, res.Hits)
			assert.Equal(t, int64(5), res.Total)
		})
	}
}

func TestMemoryStore_FindJobs_CanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindJobs(ctx, query.Query{Page: query.Page{Number: 1, Limit: 10}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_CreateJob_Duplicate(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A", Title: "One"})

	err := store.CreateJob(context.Background(), &domain.Job{ID: "A", Title: "Two"})
	assert.True(t, domain.IsValidationError(err))
}

func TestMemoryStore_GetJobByID_ReturnsCopy(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A", Title: "One", Skills: []string{"Go"}})
	ctx := context.Background()

	job, err := store.GetJobByID(ctx, "A")
	require.NoError(t, err)
	job.Skills[0] = "Rust"

	again, err := store.GetJobByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, again.Skills)

	_, err = store.GetJobByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemoryStore_UpdateJob_PreservesCounters(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A", Title: "One"})
	ctx := context.Background()

	require.NoError(t, store.IncrementViews(ctx, []string{"A"}))
	_, err := store.IncrementApplications(ctx, "A")
	require.NoError(t, err)

	job, err := store.GetJobByID(ctx, "A")
	require.NoError(t, err)
	job.Title = "Renamed"
	job.Views = 0
	job.Applications = 99

	require.NoError(t, store.UpdateJob(ctx, job))
	assert.Equal(t, int64(1), job.Views)
	assert.Equal(t, int64(1), job.Applications)

	stored, err := store.GetJobByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, int64(1), stored.Views)

	err = store.UpdateJob(ctx, &domain.Job{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemoryStore_UpdateJobStatus(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A", Title: "One"})
	ctx := context.Background()

	job, err := store.UpdateJobStatus(ctx, "A", domain.JobStatusFilled)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFilled, job.Status)

	_, err = store.UpdateJobStatus(ctx, "missing", domain.JobStatusFilled)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemoryStore_DeleteJob(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A", Title: "One"})
	ctx := context.Background()

	require.NoError(t, store.DeleteJob(ctx, "A"))

	_, err := store.GetJobByID(ctx, "A")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	assert.ErrorIs(t, store.DeleteJob(ctx, "A"), domain.ErrJobNotFound)
}

func TestMemoryStore_IncrementViews(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A"}, domain.Job{ID: "B"})
	ctx := context.Background()

	t.Run("duplicates and unknown ids", func(t *testing.T) {
		require.NoError(t, store.IncrementViews(ctx, []string{"A", "A", "missing"}))

		job, err := store.GetJobByID(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, int64(1), job.Views)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		const goroutines = 50

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.IncrementViews(ctx, []string{"B"}))
			}()
		}
		wg.Wait()

		job, err := store.GetJobByID(ctx, "B")
		require.NoError(t, err)
		assert.Equal(t, int64(goroutines), job.Views)
	})
}

func TestMemoryStore_IncrementApplications(t *testing.T) {
	store := newTestStore(t, domain.Job{ID: "A"})
	ctx := context.Background()

	job, err := store.IncrementApplications(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), job.Applications)

	_, err = store.IncrementApplications(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemoryStore_Aggregates(t *testing.T) {
	store := newTestStore(t, listingJobs()...)
	ctx := context.Background()

	st, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), st.TotalJobs)
	assert.Equal(t, int64(5), st.ActiveJobs)

	facets, err := store.Facets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.JobTypeContract, domain.JobTypeFullTime}, facets.JobTypes)
	assert.Nil(t, facets.SalaryRange)

	values, err := store.DistinctValues(ctx, domain.SuggestCompanies, "A", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Beta", "Delta", "Gamma"}, values)

	assert.NoError(t, store.HealthCheck(ctx))
}
