package query

import (
	"strings"
	"time"

	"github.com/cuongbtq/job-board/internal/api/domain"
)

// Predicate is a normalized, store-agnostic description of which jobs match a
// request. Values are produced by Compile or CompileSearch and must be
// treated as immutable; use the With methods to derive a changed copy.
type Predicate struct {
	// Status is an equality test; empty means any status.
	Status          string
	JobType         string
	Remote          string
	ExperienceLevel string

	// Case-insensitive substring tests, stored lower-cased.
	IndustryContains string
	LocationContains string
	CompanyContains  string

	// MinSalary tests salary.min >= value, MaxSalary tests salary.max <= value.
	MinSalary *float64
	MaxSalary *float64

	// Skills matches jobs whose skill list shares at least one entry.
	Skills []string

	// Inclusive bounds over postedDate.
	PostedAfter  *time.Time
	PostedBefore *time.Time

	// Terms are free-text search terms; empty disables text matching.
	Terms []string
}

// Compile builds the listing predicate. Status defaults to active when the
// caller did not supply one.
func Compile(p Params) Predicate {
	pred := Predicate{
		Status:           p.Status,
		JobType:          p.JobType,
		Remote:           p.Remote,
		ExperienceLevel:  p.ExperienceLevel,
		IndustryContains: lowerTrim(p.Industry),
		LocationContains: lowerTrim(p.Location),
		CompanyContains:  lowerTrim(p.Company),
		MinSalary:        copyFloat(p.MinSalary),
		MaxSalary:        copyFloat(p.MaxSalary),
		Skills:           cleanList(p.Skills),
		PostedAfter:      copyTime(p.PostedAfter),
		PostedBefore:     copyTime(p.PostedBefore),
	}
	if pred.Status == "" {
		pred.Status = domain.JobStatusActive
	}
	return pred
}

// CompileSearch builds the search predicate. Search only ever returns active
// jobs: the active status is a hard floor that overrides whatever status the
// caller asked for, unlike listing where it is only a default.
func CompileSearch(p Params, terms []string) Predicate {
	pred := Compile(p)
	pred.Status = domain.JobStatusActive
	return pred.WithTerms(terms)
}

// WithTerms returns a copy of the predicate carrying the given search terms
func (p Predicate) WithTerms(terms []string) Predicate {
	p.Terms = cleanList(terms)
	p.Skills = cleanList(p.Skills)
	return p
}

// HasText reports whether the predicate carries free-text terms
func (p Predicate) HasText() bool {
	return len(p.Terms) > 0
}

// Matches evaluates every non-text condition of the predicate against a job.
// Free-text terms are scored separately by the search package.
func (p Predicate) Matches(j *domain.Job) bool {
	if p.Status != "" && j.Status != p.Status {
		return false
	}
	if p.JobType != "" && j.JobType != p.JobType {
		return false
	}
	if p.Remote != "" && j.Remote != p.Remote {
		return false
	}
	if p.ExperienceLevel != "" && j.ExperienceLevel != p.ExperienceLevel {
		return false
	}
	if !containsFold(j.Industry, p.IndustryContains) ||
		!containsFold(j.Location, p.LocationContains) ||
		!containsFold(j.Company, p.CompanyContains) {
		return false
	}
	if p.MinSalary != nil {
		if j.Salary == nil || j.Salary.Min == nil || *j.Salary.Min < *p.MinSalary {
			return false
		}
	}
	if p.MaxSalary != nil {
		if j.Salary == nil || j.Salary.Max == nil || *j.Salary.Max > *p.MaxSalary {
			return false
		}
	}
	if len(p.Skills) > 0 && !intersects(j.Skills, p.Skills) {
		return false
	}
	if p.PostedAfter != nil && j.PostedDate.Before(*p.PostedAfter) {
		return false
	}
	if p.PostedBefore != nil && j.PostedDate.After(*p.PostedBefore) {
		return false
	}
	return true
}

func containsFold(value, lowerNeedle string) bool {
	if lowerNeedle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), lowerNeedle)
}

func intersects(have, want []string) bool {
	set := make(map[string]struct{}, len(want))
	for _, w := range want {
		set[w] = struct{}{}
	}
	for _, h := range have {
		if _, ok := set[h]; ok {
			return true
		}
	}
	return false
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
