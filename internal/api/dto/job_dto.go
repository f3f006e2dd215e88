package dto

import (
	"strings"
	"time"

	"github.com/cuongbtq/job-board/internal/api/domain"
)

// SalaryRequest is the salary block of a create or update request
type SalaryRequest struct {
	Min      *float64 `json:"min" binding:"omitempty,gte=0"`
	Max      *float64 `json:"max" binding:"omitempty,gte=0"`
	Currency string   `json:"currency" binding:"omitempty,oneof=USD EUR GBP INR CAD AUD JPY"`
	Period   string   `json:"period" binding:"omitempty,oneof=hourly daily weekly monthly yearly"`
}

// ContactInfoRequest is the contact block of a create or update request
type ContactInfoRequest struct {
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"omitempty,max=50"`
	Website string `json:"website" binding:"omitempty,url,max=500"`
}

// CreateJobRequest is the body of POST /api/v1/jobs
type CreateJobRequest struct {
	Title           string `json:"title" binding:"required,notblank,max=200"`
	Company         string `json:"company" binding:"required,notblank,max=100"`
	Location        string `json:"location" binding:"required,notblank,max=100"`
	Description     string `json:"description" binding:"required,notblank,max=10000"`
	JobType         string `json:"jobType" binding:"required,oneof=full-time part-time contract internship freelance"`
	Source          string `json:"source" binding:"required,oneof=linkedin indeed glassdoor manual api"`
	ExperienceLevel string `json:"experienceLevel" binding:"omitempty,oneof=entry junior mid senior lead executive"`
	Remote          string `json:"remote" binding:"omitempty,oneof=on-site remote hybrid"`
	Industry        string `json:"industry" binding:"omitempty,max=100"`

	Requirements     []string `json:"requirements" binding:"omitempty,max=50,dive,max=200"`
	Responsibilities []string `json:"responsibilities" binding:"omitempty,max=50,dive,max=200"`
	Skills           []string `json:"skills" binding:"omitempty,max=50,dive,max=200"`
	Benefits         []string `json:"benefits" binding:"omitempty,max=50,dive,max=200"`
	Tags             []string `json:"tags" binding:"omitempty,max=20,dive,max=200"`

	Salary         *SalaryRequest      `json:"salary"`
	ApplicationURL string              `json:"applicationUrl" binding:"omitempty,url,max=500"`
	SourceID       string              `json:"sourceId" binding:"omitempty,max=200"`
	ContactInfo    *ContactInfoRequest `json:"contactInfo"`
	Status         string              `json:"status" binding:"omitempty,oneof=active expired filled draft"`
	PostedDate     *time.Time          `json:"postedDate"`
	ExpiryDate     *time.Time          `json:"expiryDate"`
}

// Validate runs the cross-field checks binding tags cannot express
func (r *CreateJobRequest) Validate() error {
	return validateSalary(r.Salary)
}

// ToDomain converts the request into a new job without id or defaults
func (r *CreateJobRequest) ToDomain() *domain.Job {
	job := &domain.Job{
		Title:            strings.TrimSpace(r.Title),
		Company:          strings.TrimSpace(r.Company),
		Location:         strings.TrimSpace(r.Location),
		Description:      strings.TrimSpace(r.Description),
		JobType:          r.JobType,
		Source:           r.Source,
		ExperienceLevel:  r.ExperienceLevel,
		Remote:           r.Remote,
		Industry:         strings.TrimSpace(r.Industry),
		Requirements:     r.Requirements,
		Responsibilities: r.Responsibilities,
		Skills:           r.Skills,
		Benefits:         r.Benefits,
		Tags:             r.Tags,
		Salary:           r.Salary.toDomain(),
		ApplicationURL:   strings.TrimSpace(r.ApplicationURL),
		SourceID:         strings.TrimSpace(r.SourceID),
		ContactInfo:      r.ContactInfo.toDomain(),
		Status:           r.Status,
	}
	if r.PostedDate != nil {
		job.PostedDate = r.PostedDate.UTC()
	}
	if r.ExpiryDate != nil {
		job.ExpiryDate = r.ExpiryDate.UTC()
	}
	return job
}

// UpdateJobRequest is the body of PUT and PATCH /api/v1/jobs/:id. Every
// field is optional; omitted fields keep their stored value.
type UpdateJobRequest struct {
	Title           *string `json:"title" binding:"omitempty,notblank,max=200"`
	Company         *string `json:"company" binding:"omitempty,notblank,max=100"`
	Location        *string `json:"location" binding:"omitempty,notblank,max=100"`
	Description     *string `json:"description" binding:"omitempty,notblank,max=10000"`
	JobType         *string `json:"jobType" binding:"omitempty,oneof=full-time part-time contract internship freelance"`
	Source          *string `json:"source" binding:"omitempty,oneof=linkedin indeed glassdoor manual api"`
	ExperienceLevel *string `json:"experienceLevel" binding:"omitempty,oneof=entry junior mid senior lead executive"`
	Remote          *string `json:"remote" binding:"omitempty,oneof=on-site remote hybrid"`
	Industry        *string `json:"industry" binding:"omitempty,max=100"`

	Requirements     []string `json:"requirements" binding:"omitempty,max=50,dive,max=200"`
	Responsibilities []string `json:"responsibilities" binding:"omitempty,max=50,dive,max=200"`
	Skills           []string `json:"skills" binding:"omitempty,max=50,dive,max=200"`
	Benefits         []string `json:"benefits" binding:"omitempty,max=50,dive,max=200"`
	Tags             []string `json:"tags" binding:"omitempty,max=20,dive,max=200"`

	Salary         *SalaryRequest      `json:"salary"`
	ApplicationURL *string             `json:"applicationUrl" binding:"omitempty,url,max=500"`
	SourceID       *string             `json:"sourceId" binding:"omitempty,max=200"`
	ContactInfo    *ContactInfoRequest `json:"contactInfo"`
	Status         *string             `json:"status" binding:"omitempty,oneof=active expired filled draft"`
	PostedDate     *time.Time          `json:"postedDate"`
	ExpiryDate     *time.Time          `json:"expiryDate"`
}

// Validate runs the cross-field checks binding tags cannot express
func (r *UpdateJobRequest) Validate() error {
	return validateSalary(r.Salary)
}

// ToDomain converts the request into a partial update
func (r *UpdateJobRequest) ToDomain() *domain.JobUpdate {
	u := &domain.JobUpdate{
		Title:            trimmed(r.Title),
		Company:          trimmed(r.Company),
		Location:         trimmed(r.Location),
		Description:      trimmed(r.Description),
		JobType:          r.JobType,
		Source:           r.Source,
		ExperienceLevel:  r.ExperienceLevel,
		Remote:           r.Remote,
		Industry:         trimmed(r.Industry),
		Requirements:     r.Requirements,
		Responsibilities: r.Responsibilities,
		Skills:           r.Skills,
		Benefits:         r.Benefits,
		Tags:             r.Tags,
		Salary:           r.Salary.toDomain(),
		ApplicationURL:   trimmed(r.ApplicationURL),
		SourceID:         trimmed(r.SourceID),
		ContactInfo:      r.ContactInfo.toDomain(),
		Status:           r.Status,
	}
	if r.PostedDate != nil {
		t := r.PostedDate.UTC()
		u.PostedDate = &t
	}
	if r.ExpiryDate != nil {
		t := r.ExpiryDate.UTC()
		u.ExpiryDate = &t
	}
	return u
}

// UpdateStatusRequest is the body of PATCH /api/v1/jobs/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active expired filled draft"`
}

func (s *SalaryRequest) toDomain() *domain.Salary {
	if s == nil {
		return nil
	}
	return &domain.Salary{
		Min:      s.Min,
		Max:      s.Max,
		Currency: s.Currency,
		Period:   s.Period,
	}
}

func (c *ContactInfoRequest) toDomain() *domain.ContactInfo {
	if c == nil {
		return nil
	}
	return &domain.ContactInfo{
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Website: strings.TrimSpace(c.Website),
	}
}

func validateSalary(s *SalaryRequest) error {
	if s == nil || s.Min == nil || s.Max == nil {
		return nil
	}
	if *s.Min > *s.Max {
		return domain.NewValidationError("salary.max", "must be greater than or equal to salary.min")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
