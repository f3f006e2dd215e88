package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/model"
	"github.com/cuongbtq/job-board/internal/api/query"
	"github.com/cuongbtq/job-board/internal/api/stats"
	"github.com/cuongbtq/job-board/shared/postgresql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres error codes
const (
	pgUniqueViolation     = "23505"
	pgInvalidTextEncoding = "22P02"
)

// PostgresStore implements Store on PostgreSQL
type PostgresStore struct {
	client *postgresql.Client
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresStore creates a PostgresStore on an established client
func NewPostgresStore(pg *postgresql.Client, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		client: pg,
		db:     pg.GetDB(),
		logger: logger,
	}
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `
		) VALUES (
			:id, :title, :company, :location, :description, :job_type, :source,
			:experience_level, :remote, :industry,
			:requirements, :responsibilities, :skills, :benefits, :tags,
			:salary_min, :salary_max, :salary_currency, :salary_period,
			:application_url, :source_id, :contact_email, :contact_phone, :contact_website,
			:status, :posted_date, :expiry_date, :views, :applications, :created_at, :updated_at
		)
	`

	_, err := s.db.NamedExecContext(ctx, query, toRow(job))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return domain.NewValidationError("id", "job already exists")
		}
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	var row model.JobRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return toDomain(&row), nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET
			title = :title,
			company = :company,
			location = :location,
			description = :description,
			job_type = :job_type,
			source = :source,
			experience_level = :experience_level,
			remote = :remote,
			industry = :industry,
			requirements = :requirements,
			responsibilities = :responsibilities,
			skills = :skills,
			benefits = :benefits,
			tags = :tags,
			salary_min = :salary_min,
			salary_max = :salary_max,
			salary_currency = :salary_currency,
			salary_period = :salary_period,
			application_url = :application_url,
			source_id = :source_id,
			contact_email = :contact_email,
			contact_phone = :contact_phone,
			contact_website = :contact_website,
			status = :status,
			posted_date = :posted_date,
			expiry_date = :expiry_date,
			updated_at = :updated_at
		WHERE id = :id
		RETURNING views, applications, created_at
	`

	rows, err := s.db.NamedQueryContext(ctx, query, toRow(job))
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		return domain.ErrJobNotFound
	}

	if err := rows.Scan(&job.Views, &job.Applications, &job.CreatedAt); err != nil {
		return fmt.Errorf("failed to scan updated job: %w", err)
	}

	return nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id, status string) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING ` + jobColumns

	var row model.JobRow
	if err := s.db.GetContext(ctx, &row, query, status, id); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	return toDomain(&row), nil
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}

func (s *PostgresStore) FindJobs(ctx context.Context, q query.Query) (*FindResult, error) {
	selectSQL, selectArgs, countSQL, countArgs := buildFindQueries(q)

	var total int64
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	var rows []model.ScoredJobRow
	if err := s.db.SelectContext(ctx, &rows, selectSQL, selectArgs...); err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}

	hits := make([]query.Hit, len(rows))
	for i := range rows {
		hits[i] = query.Hit{
			Job:   *toDomain(&rows[i].JobRow),
			Score: rows[i].Score,
		}
	}

	return &FindResult{Hits: hits, Total: total}, nil
}

func (s *PostgresStore) IncrementViews(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET views = views + 1 WHERE id = ANY($1::uuid[])`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && int(rowsAffected) < len(ids) {
		s.logger.Debug("Some viewed jobs no longer exist",
			slog.Int("requested", len(ids)),
			slog.Int64("updated", rowsAffected),
		)
	}

	return nil
}

func (s *PostgresStore) IncrementApplications(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		UPDATE jobs
		SET applications = applications + 1
		WHERE id = $1
		RETURNING ` + jobColumns

	var row model.JobRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to increment applications: %w", err)
	}

	return toDomain(&row), nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*domain.JobStats, error) {
	var totals struct {
		TotalJobs         int64 `db:"total_jobs"`
		ActiveJobs        int64 `db:"active_jobs"`
		TotalViews        int64 `db:"total_views"`
		TotalApplications int64 `db:"total_applications"`
	}

	err := s.db.GetContext(ctx, &totals, `
		SELECT
			COUNT(*) AS total_jobs,
			COUNT(*) FILTER (WHERE status = $1) AS active_jobs,
			COALESCE(SUM(views), 0) AS total_views,
			COALESCE(SUM(applications), 0) AS total_applications
		FROM jobs
	`, domain.JobStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate job totals: %w", err)
	}

	result := &domain.JobStats{
		TotalJobs:         totals.TotalJobs,
		ActiveJobs:        totals.ActiveJobs,
		TotalViews:        totals.TotalViews,
		TotalApplications: totals.TotalApplications,
	}

	if result.JobsByType, err = s.groupCount(ctx, "job_type", "", 0); err != nil {
		return nil, err
	}
	if result.JobsByRemote, err = s.groupCount(ctx, "remote", "", 0); err != nil {
		return nil, err
	}
	if result.TopIndustries, err = s.groupCount(ctx, "industry", "industry <> ''", stats.TopIndustries); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PostgresStore) Facets(ctx context.Context) (*domain.FilterFacets, error) {
	facets := &domain.FilterFacets{}

	distinct := []struct {
		column string
		dest   *[]string
	}{
		{"job_type", &facets.JobTypes},
		{"remote", &facets.RemoteOptions},
		{"experience_level", &facets.ExperienceLevels},
		{"industry", &facets.Industries},
		{"location", &facets.Locations},
	}
	for _, d := range distinct {
		values := []string{}
		query := fmt.Sprintf(`
			SELECT DISTINCT %[1]s
			FROM jobs
			WHERE status = $1 AND %[1]s <> ''
			ORDER BY %[1]s`, d.column)
		if err := s.db.SelectContext(ctx, &values, query, domain.JobStatusActive); err != nil {
			return nil, fmt.Errorf("failed to list distinct %s: %w", d.column, err)
		}
		*d.dest = values
	}

	var salary struct {
		Min   sql.NullFloat64 `db:"min"`
		Max   sql.NullFloat64 `db:"max"`
		Avg   sql.NullFloat64 `db:"avg"`
		Count int64           `db:"count"`
	}
	err := s.db.GetContext(ctx, &salary, `
		SELECT
			MIN(salary_min) AS min,
			MAX(salary_max) AS max,
			AVG((salary_min + salary_max) / 2) AS avg,
			COUNT(*) AS count
		FROM jobs
		WHERE status = $1 AND salary_min IS NOT NULL AND salary_max IS NOT NULL
	`, domain.JobStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate salary range: %w", err)
	}
	if salary.Count > 0 {
		facets.SalaryRange = &domain.SalaryRange{
			Min: salary.Min.Float64,
			Max: salary.Max.Float64,
			Avg: salary.Avg.Float64,
		}
	}

	facets.TopSkills = []domain.ValueCount{}
	err = s.db.SelectContext(ctx, &facets.TopSkills, `
		SELECT skill AS value, COUNT(*) AS count
		FROM jobs, unnest(skills) AS skill
		WHERE status = $1
		GROUP BY skill
		ORDER BY count DESC, value ASC
		LIMIT $2
	`, domain.JobStatusActive, stats.TopSkills)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top skills: %w", err)
	}

	return facets, nil
}

func (s *PostgresStore) DistinctValues(ctx context.Context, family, partial string, limit int) ([]string, error) {
	from, column, ok := suggestionSource(family)
	if !ok {
		return []string{}, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %[2]s
		FROM %[1]s
		WHERE status = $1 AND %[2]s ILIKE $2
		ORDER BY %[2]s
		LIMIT $3`, from, column)

	values := []string{}
	if err := s.db.SelectContext(ctx, &values, query, domain.JobStatusActive, likePattern(partial), limit); err != nil {
		return nil, fmt.Errorf("failed to list %s suggestions: %w", family, err)
	}

	return values, nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

// groupCount counts jobs per value of column, busiest first
func (s *PostgresStore) groupCount(ctx context.Context, column, filter string, limit int) ([]domain.ValueCount, error) {
	where := ""
	if filter != "" {
		where = "WHERE " + filter
	}
	query := fmt.Sprintf(`
		SELECT %[1]s AS value, COUNT(*) AS count
		FROM jobs
		%[2]s
		GROUP BY %[1]s
		ORDER BY count DESC, value ASC`, column, where)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	counts := []domain.ValueCount{}
	if err := s.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to count jobs by %s: %w", column, err)
	}

	return counts, nil
}

// isNotFound treats missing rows and malformed uuids as an unknown job
func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgInvalidTextEncoding
}

func toRow(j *domain.Job) *model.JobRow {
	row := &model.JobRow{
		ID:               j.ID,
		Title:            j.Title,
		Company:          j.Company,
		Location:         j.Location,
		Description:      j.Description,
		JobType:          j.JobType,
		Source:           j.Source,
		ExperienceLevel:  j.ExperienceLevel,
		Remote:           j.Remote,
		Industry:         j.Industry,
		Requirements:     pq.StringArray(cloneStrings(j.Requirements)),
		Responsibilities: pq.StringArray(cloneStrings(j.Responsibilities)),
		Skills:           pq.StringArray(cloneStrings(j.Skills)),
		Benefits:         pq.StringArray(cloneStrings(j.Benefits)),
		Tags:             pq.StringArray(cloneStrings(j.Tags)),
		ApplicationURL:   j.ApplicationURL,
		SourceID:         j.SourceID,
		Status:           j.Status,
		PostedDate:       j.PostedDate,
		ExpiryDate:       j.ExpiryDate,
		Views:            j.Views,
		Applications:     j.Applications,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
	if j.Salary != nil {
		row.SalaryMin = j.Salary.Min
		row.SalaryMax = j.Salary.Max
		row.SalaryCurrency = j.Salary.Currency
		row.SalaryPeriod = j.Salary.Period
	}
	if j.ContactInfo != nil {
		row.ContactEmail = j.ContactInfo.Email
		row.ContactPhone = j.ContactInfo.Phone
		row.ContactWebsite = j.ContactInfo.Website
	}
	return row
}

func toDomain(r *model.JobRow) *domain.Job {
	j := &domain.Job{
		ID:               r.ID,
		Title:            r.Title,
		Company:          r.Company,
		Location:         r.Location,
		Description:      r.Description,
		JobType:          r.JobType,
		Source:           r.Source,
		ExperienceLevel:  r.ExperienceLevel,
		Remote:           r.Remote,
		Industry:         r.Industry,
		Requirements:     cloneStrings(r.Requirements),
		Responsibilities: cloneStrings(r.Responsibilities),
		Skills:           cloneStrings(r.Skills),
		Benefits:         cloneStrings(r.Benefits),
		Tags:             cloneStrings(r.Tags),
		ApplicationURL:   r.ApplicationURL,
		SourceID:         r.SourceID,
		Status:           r.Status,
		PostedDate:       r.PostedDate,
		ExpiryDate:       r.ExpiryDate,
		Views:            r.Views,
		Applications:     r.Applications,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.SalaryMin != nil || r.SalaryMax != nil || r.SalaryCurrency != "" {
		j.Salary = &domain.Salary{
			Min:      r.SalaryMin,
			Max:      r.SalaryMax,
			Currency: r.SalaryCurrency,
			Period:   r.SalaryPeriod,
		}
	}
	if r.ContactEmail != "" || r.ContactPhone != "" || r.ContactWebsite != "" {
		j.ContactInfo = &domain.ContactInfo{
			Email:   r.ContactEmail,
			Phone:   r.ContactPhone,
			Website: r.ContactWebsite,
		}
	}
	return j
}
