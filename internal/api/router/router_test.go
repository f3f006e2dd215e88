package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuongbtq/job-board/internal/api/dto"
	"github.com/cuongbtq/job-board/internal/api/handler"
	"github.com/cuongbtq/job-board/internal/api/service"
	"github.com/cuongbtq/job-board/internal/api/storage"
	"github.com/cuongbtq/job-board/internal/api/views"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
		HasNext    bool  `json:"hasNext"`
		HasPrev    bool  `json:"hasPrev"`
	} `json:"pagination"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

type jobPayload struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Views        int64  `json:"views"`
	Applications int64  `json:"applications"`
	SalaryRange  string `json:"salaryRange"`
	IsExpired    bool   `json:"isExpired"`
}

type testServer struct {
	engine   *gin.Engine
	recorder *views.DirectRecorder
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore(logger)
	recorder := views.NewDirectRecorder(store, 0, logger)

	svc := service.NewJobService(&service.Config{
		Store:  store,
		Views:  recorder,
		Logger: logger,
	})

	engine := SetupRouter(&handler.Dependencies{
		Logger:       logger,
		Service:      svc,
		ListLimits:   dto.PageLimits{Default: 10, Max: 100},
		SearchLimits: dto.PageLimits{Default: 20, Max: 100},
		ServiceName:  "job-board-api",
	}, opts)

	return &testServer{engine: engine, recorder: recorder}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) createJob(t *testing.T, overrides map[string]any) jobPayload {
	t.Helper()

	body := map[string]any{
		"title":       "Go Engineer",
		"company":     "Acme",
		"location":    "Berlin",
		"description": "Build services in Go",
		"jobType":     "full-time",
		"source":      "manual",
	}
	for k, v := range overrides {
		body[k] = v
	}

	w, env := s.do(t, http.MethodPost, "/api/v1/jobs", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var job jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &job))
	return job
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})

	w, env := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"healthy","service":"job-board-api","store":"up"}`, string(env.Data))
}

func TestCreateAndGetJob(t *testing.T) {
	s := newTestServer(t, Options{})

	created := s.createJob(t, map[string]any{
		"salary": map[string]any{"min": 80000, "max": 120000, "currency": "USD"},
		"views":  99,
	})
	assert.Len(t, created.ID, 36)
	assert.Equal(t, "active", created.Status)
	assert.Zero(t, created.Views)
	assert.Equal(t, "USD 80,000 - 120,000 / yearly", created.SalaryRange)
	assert.False(t, created.IsExpired)

	w, env := s.do(t, http.MethodGet, "/api/v1/jobs/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, s.recorder.Close())

	_, env = s.do(t, http.MethodGet, "/api/v1/jobs/"+created.ID, nil)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, int64(1), got.Views)
}

func TestCreateJob_Validation(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name      string
		body      any
		wantField string
	}{
		{name: "missing title", body: map[string]any{"company": "Acme", "location": "Berlin", "description": "x", "jobType": "full-time", "source": "manual"}, wantField: "title"},
		{name: "bad job type", body: map[string]any{"title": "t", "company": "Acme", "location": "Berlin", "description": "x", "jobType": "gig", "source": "manual"}, wantField: "jobType"},
		{name: "inverted salary", body: map[string]any{"title": "t", "company": "Acme", "location": "Berlin", "description": "x", "jobType": "full-time", "source": "manual", "salary": map[string]any{"min": 10, "max": 5}}, wantField: "salary.max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/v1/jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "Validation failed", env.Error)
			require.NotEmpty(t, env.Details)

			fields := make([]string, len(env.Details))
			for i, d := range env.Details {
				fields[i] = d.Field
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString(`{"title":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetJob_Errors(t *testing.T) {
	s := newTestServer(t, Options{})

	w, env := s.do(t, http.MethodGet, "/api/v1/jobs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Error)

	w, env = s.do(t, http.MethodGet, "/api/v1/jobs/6f1c2a9e-4d1b-4f7a-9a51-0c3e6c1d2b7f", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found", env.Error)
}

func TestListJobs(t *testing.T) {
	s := newTestServer(t, Options{})

	for _, overrides := range []map[string]any{
		{"title": "One", "postedDate": "2024-03-01T00:00:00Z"},
		{"title": "Two", "postedDate": "2024-03-02T00:00:00Z"},
		{"title": "Three", "postedDate": "2024-03-03T00:00:00Z"},
		{"title": "Contract", "jobType": "contract", "postedDate": "2024-03-04T00:00:00Z"},
	} {
		s.createJob(t, overrides)
	}

	w, env := s.do(t, http.MethodGet, "/api/v1/jobs?jobType=full-time&page=1&limit=2&sort=postedDate&order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var jobs []jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "Three", jobs[0].Title)
	assert.Equal(t, "Two", jobs[1].Title)

	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(3), env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	assert.True(t, env.Pagination.HasNext)
	assert.False(t, env.Pagination.HasPrev)

	t.Run("invalid enum", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/v1/jobs?jobType=gig", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("relevance is not a listing sort", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/v1/jobs?sort=relevance", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSearchJobs(t *testing.T) {
	s := newTestServer(t, Options{})

	python := s.createJob(t, map[string]any{"title": "Python Developer", "salary": map[string]any{"min": 90000}})
	s.createJob(t, map[string]any{"title": "Junior Python Developer", "salary": map[string]any{"min": 40000}})
	s.createJob(t, map[string]any{"title": "Go Developer"})

	w, env := s.do(t, http.MethodGet, `/api/v1/jobs/search?q=python&filters=%7B%22minSalary%22%3A80000%7D`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var jobs []jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, python.ID, jobs[0].ID)
	assert.Equal(t, 20, env.Pagination.Limit)

	t.Run("relevance without query", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/v1/jobs/search?sort=relevance", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed filters are ignored", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/v1/jobs/search?q=python&filters=%7Bnope", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), env.Pagination.Total)
	})
}

func TestUpdateStatusAndApply(t *testing.T) {
	s := newTestServer(t, Options{})
	job := s.createJob(t, nil)

	w, env := s.do(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var applied jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.Equal(t, int64(1), applied.Applications)

	w, _ = s.do(t, http.MethodPatch, "/api/v1/jobs/"+job.ID+"/status", map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPatch, "/api/v1/jobs/"+job.ID+"/status", map[string]any{"status": "filled"})
	require.Equal(t, http.StatusOK, w.Code)
	var filled jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &filled))
	assert.Equal(t, "filled", filled.Status)

	w, _ = s.do(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteJob(t *testing.T) {
	s := newTestServer(t, Options{})
	job := s.createJob(t, nil)

	w, env := s.do(t, http.MethodPatch, "/api/v1/jobs/"+job.ID, map[string]any{"title": "Staff Go Engineer"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated jobPayload
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Staff Go Engineer", updated.Title)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsFiltersAndSuggestions(t *testing.T) {
	s := newTestServer(t, Options{})
	s.createJob(t, map[string]any{"skills": []string{"Go", "Postgres"}, "industry": "Software"})
	s.createJob(t, map[string]any{"company": "Globex", "jobType": "contract"})

	w, env := s.do(t, http.MethodGet, "/api/v1/jobs/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalJobs  int64 `json:"totalJobs"`
		ActiveJobs int64 `json:"activeJobs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.TotalJobs)
	assert.Equal(t, int64(2), stats.ActiveJobs)

	w, env = s.do(t, http.MethodGet, "/api/v1/jobs/filters", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var facets struct {
		JobTypes []string `json:"jobTypes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &facets))
	assert.Equal(t, []string{"contract", "full-time"}, facets.JobTypes)

	w, env = s.do(t, http.MethodGet, "/api/v1/jobs/suggestions?q=glo&type=companies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"text":"Globex","type":"companies"}]`, string(env.Data))

	w, env = s.do(t, http.MethodGet, "/api/v1/jobs/suggestions?q=g", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t, Options{})

	w, env := s.do(t, http.MethodGet, "/api/v2/jobs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", env.Error)
}

func TestCORS(t *testing.T) {
	t.Run("allow list", func(t *testing.T) {
		s := newTestServer(t, Options{AllowedOrigins: []string{"https://board.example.com/"}})

		req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
		req.Header.Set("Origin", "https://board.example.com")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://board.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		req = httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w = httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		s := newTestServer(t, Options{})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, Options{RateLimiter: NewRateLimiter(60, 2)})

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodGet, "/api/v1/jobs", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, env := s.do(t, http.MethodGet, "/api/v1/jobs", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.False(t, env.Success)

	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
