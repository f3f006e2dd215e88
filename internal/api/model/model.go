package model

import (
	"time"

	"github.com/lib/pq"
)

// JobRow mirrors a row of the jobs table
type JobRow struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Company          string         `db:"company"`
	Location         string         `db:"location"`
	Description      string         `db:"description"`
	JobType          string         `db:"job_type"`
	Source           string         `db:"source"`
	ExperienceLevel  string         `db:"experience_level"`
	Remote           string         `db:"remote"`
	Industry         string         `db:"industry"`
	Requirements     pq.StringArray `db:"requirements"`
	Responsibilities pq.StringArray `db:"responsibilities"`
	Skills           pq.StringArray `db:"skills"`
	Benefits         pq.StringArray `db:"benefits"`
	Tags             pq.StringArray `db:"tags"`
	SalaryMin        *float64       `db:"salary_min"`
	SalaryMax        *float64       `db:"salary_max"`
	SalaryCurrency   string         `db:"salary_currency"`
	SalaryPeriod     string         `db:"salary_period"`
	ApplicationURL   string         `db:"application_url"`
	SourceID         string         `db:"source_id"`
	ContactEmail     string         `db:"contact_email"`
	ContactPhone     string         `db:"contact_phone"`
	ContactWebsite   string         `db:"contact_website"`
	Status           string         `db:"status"`
	PostedDate       time.Time      `db:"posted_date"`
	ExpiryDate       time.Time      `db:"expiry_date"`
	Views            int64          `db:"views"`
	Applications     int64          `db:"applications"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// ScoredJobRow is a JobRow with the relevance score of a search query
type ScoredJobRow struct {
	JobRow
	Score float64 `db:"score"`
}
