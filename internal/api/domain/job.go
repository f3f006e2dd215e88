package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Job status values
const (
	JobStatusActive  = "active"
	JobStatusExpired = "expired"
	JobStatusFilled  = "filled"
	JobStatusDraft   = "draft"
)

// Job type values
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeFreelance  = "freelance"
)

// Remote option values
const (
	RemoteOnSite = "on-site"
	RemoteRemote = "remote"
	RemoteHybrid = "hybrid"
)

// Source values
const (
	SourceLinkedIn  = "linkedin"
	SourceIndeed    = "indeed"
	SourceGlassdoor = "glassdoor"
	SourceManual    = "manual"
	SourceAPI       = "api"
)

// Salary period values
const (
	SalaryPeriodHourly  = "hourly"
	SalaryPeriodDaily   = "daily"
	SalaryPeriodWeekly  = "weekly"
	SalaryPeriodMonthly = "monthly"
	SalaryPeriodYearly  = "yearly"
)

// DefaultExpiry is added to PostedDate when a job is created without an expiry date.
const DefaultExpiry = 30 * 24 * time.Hour

// List caps
const (
	MaxListItems  = 50
	MaxTagItems   = 20
	MaxItemLength = 200
)

var (
	JobStatuses      = []string{JobStatusActive, JobStatusExpired, JobStatusFilled, JobStatusDraft}
	JobTypes         = []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance}
	RemoteOptions    = []string{RemoteOnSite, RemoteRemote, RemoteHybrid}
	ExperienceLevels = []string{"entry", "junior", "mid", "senior", "lead", "executive"}
	Sources          = []string{SourceLinkedIn, SourceIndeed, SourceGlassdoor, SourceManual, SourceAPI}
	Currencies       = []string{"USD", "EUR", "GBP", "INR", "CAD", "AUD", "JPY"}
	SalaryPeriods    = []string{SalaryPeriodHourly, SalaryPeriodDaily, SalaryPeriodWeekly, SalaryPeriodMonthly, SalaryPeriodYearly}
)

// Salary is the structured compensation of a job posting. A nil bound is
// unknown; a zero bound is kept as zero and takes part in salary filters.
type Salary struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Period   string   `json:"period,omitempty"`
}

// ContactInfo holds optional recruiter contact details
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Job is a job posting as stored in the Job Store.
type Job struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Company          string       `json:"company"`
	Location         string       `json:"location"`
	Description      string       `json:"description"`
	JobType          string       `json:"jobType"`
	Source           string       `json:"source"`
	ExperienceLevel  string       `json:"experienceLevel,omitempty"`
	Remote           string       `json:"remote"`
	Industry         string       `json:"industry,omitempty"`
	Requirements     []string     `json:"requirements"`
	Responsibilities []string     `json:"responsibilities"`
	Skills           []string     `json:"skills"`
	Benefits         []string     `json:"benefits"`
	Tags             []string     `json:"tags"`
	Salary           *Salary      `json:"salary,omitempty"`
	ApplicationURL   string       `json:"applicationUrl,omitempty"`
	SourceID         string       `json:"sourceId,omitempty"`
	ContactInfo      *ContactInfo `json:"contactInfo,omitempty"`
	Status           string       `json:"status"`
	PostedDate       time.Time    `json:"postedDate"`
	ExpiryDate       time.Time    `json:"expiryDate"`
	Views            int64        `json:"views"`
	Applications     int64        `json:"applications"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// ApplyDefaults fills the system-maintained attributes of a new job.
// ExpiryDate is only derived when the caller did not supply one.
func (j *Job) ApplyDefaults(now time.Time) {
	if j.Remote == "" {
		j.Remote = RemoteOnSite
	}
	if j.Status == "" {
		j.Status = JobStatusActive
	}
	if j.Salary != nil && j.Salary.Period == "" {
		j.Salary.Period = SalaryPeriodYearly
	}
	if j.PostedDate.IsZero() {
		j.PostedDate = now
	}
	if j.ExpiryDate.IsZero() {
		j.ExpiryDate = j.PostedDate.Add(DefaultExpiry)
	}
	j.Requirements = NormalizeList(j.Requirements)
	j.Responsibilities = NormalizeList(j.Responsibilities)
	j.Skills = NormalizeList(j.Skills)
	j.Benefits = NormalizeList(j.Benefits)
	j.Tags = NormalizeList(j.Tags)
	j.Views = 0
	j.Applications = 0
	j.CreatedAt = now
	j.UpdatedAt = now
}

// IsActive reports whether the job is visible to search and suggestions
func (j *Job) IsActive() bool {
	return j.Status == JobStatusActive
}

// IsExpired reports whether now is past the job's expiry date
func (j *Job) IsExpired(now time.Time) bool {
	return now.After(j.ExpiryDate)
}

// DaysSincePosted returns whole days elapsed since PostedDate
func (j *Job) DaysSincePosted(now time.Time) int {
	if now.Before(j.PostedDate) {
		return 0
	}
	return int(now.Sub(j.PostedDate).Hours() / 24)
}

// SalaryRange renders the salary as a display string, e.g. "USD 80,000 - 120,000 / yearly".
// Returns an empty string when no bound is set.
func (j *Job) SalaryRange() string {
	s := j.Salary
	if s == nil || (s.Min == nil && s.Max == nil) {
		return ""
	}

	var amount string
	switch {
	case s.Min != nil && s.Max != nil:
		amount = formatAmount(*s.Min) + " - " + formatAmount(*s.Max)
	case s.Min != nil:
		amount = "from " + formatAmount(*s.Min)
	default:
		amount = "up to " + formatAmount(*s.Max)
	}

	parts := make([]string, 0, 3)
	if s.Currency != "" {
		parts = append(parts, s.Currency)
	}
	parts = append(parts, amount)

	period := s.Period
	if period == "" {
		period = SalaryPeriodYearly
	}
	return strings.Join(parts, " ") + " / " + period
}

// Midpoint returns the average of both salary bounds, false if either is missing
func (s *Salary) Midpoint() (float64, bool) {
	if s == nil || s.Min == nil || s.Max == nil {
		return 0, false
	}
	return (*s.Min + *s.Max) / 2, true
}

// NormalizeList trims every item and drops empty ones. The result is never nil.
func NormalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Contains reports whether value is one of the allowed values
func Contains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

func formatAmount(v float64) string {
	if v != math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	digits := strconv.FormatInt(int64(v), 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// String implements fmt.Stringer for log output
func (j *Job) String() string {
	return fmt.Sprintf("Job{id=%s title=%q company=%q status=%s}", j.ID, j.Title, j.Company, j.Status)
}
