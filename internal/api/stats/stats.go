// Package stats derives collection statistics, filter facets and suggestion
// values from a set of jobs held in memory.
package stats

import (
	"sort"
	"strings"

	"github.com/cuongbtq/job-board/internal/api/domain"
)

// Result limits
const (
	TopIndustries = 10
	TopSkills     = 20
)

// Compute aggregates statistics over every job regardless of status
func Compute(jobs []domain.Job) *domain.JobStats {
	st := &domain.JobStats{}
	byType := map[string]int64{}
	byRemote := map[string]int64{}
	byIndustry := map[string]int64{}

	for i := range jobs {
		j := &jobs[i]
		st.TotalJobs++
		if j.IsActive() {
			st.ActiveJobs++
		}
		st.TotalViews += j.Views
		st.TotalApplications += j.Applications
		byType[j.JobType]++
		byRemote[j.Remote]++
		if j.Industry != "" {
			byIndustry[j.Industry]++
		}
	}

	st.JobsByType = Rank(byType, 0)
	st.JobsByRemote = Rank(byRemote, 0)
	st.TopIndustries = Rank(byIndustry, TopIndustries)
	return st
}

// Facets collects the filter values in use by active jobs
func Facets(jobs []domain.Job) *domain.FilterFacets {
	jobTypes := map[string]struct{}{}
	remotes := map[string]struct{}{}
	levels := map[string]struct{}{}
	industries := map[string]struct{}{}
	locations := map[string]struct{}{}
	skills := map[string]int64{}

	var (
		salaryCount    int
		minSal, maxSal float64
		sumOfMidpoints float64
	)

	for i := range jobs {
		j := &jobs[i]
		if !j.IsActive() {
			continue
		}
		addNonEmpty(jobTypes, j.JobType)
		addNonEmpty(remotes, j.Remote)
		addNonEmpty(levels, j.ExperienceLevel)
		addNonEmpty(industries, j.Industry)
		addNonEmpty(locations, j.Location)
		for _, s := range j.Skills {
			skills[s]++
		}

		mid, ok := j.Salary.Midpoint()
		if !ok {
			continue
		}
		if salaryCount == 0 || *j.Salary.Min < minSal {
			minSal = *j.Salary.Min
		}
		if salaryCount == 0 || *j.Salary.Max > maxSal {
			maxSal = *j.Salary.Max
		}
		sumOfMidpoints += mid
		salaryCount++
	}

	facets := &domain.FilterFacets{
		JobTypes:         sortedKeys(jobTypes),
		RemoteOptions:    sortedKeys(remotes),
		ExperienceLevels: sortedKeys(levels),
		Industries:       sortedKeys(industries),
		Locations:        sortedKeys(locations),
		TopSkills:        Rank(skills, TopSkills),
	}
	if salaryCount > 0 {
		facets.SalaryRange = &domain.SalaryRange{
			Min: minSal,
			Max: maxSal,
			Avg: sumOfMidpoints / float64(salaryCount),
		}
	}
	return facets
}

// Distinct returns up to limit distinct values of a suggestion family among
// active jobs that contain partial, case-insensitively, in ascending order.
func Distinct(jobs []domain.Job, family, partial string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(partial))
	seen := map[string]struct{}{}

	add := func(v string) {
		if v != "" && strings.Contains(strings.ToLower(v), needle) {
			seen[v] = struct{}{}
		}
	}

	for i := range jobs {
		j := &jobs[i]
		if !j.IsActive() {
			continue
		}
		switch family {
		case domain.SuggestJobs:
			add(j.Title)
		case domain.SuggestCompanies:
			add(j.Company)
		case domain.SuggestLocations:
			add(j.Location)
		case domain.SuggestSkills:
			for _, s := range j.Skills {
				add(s)
			}
		}
	}

	values := sortedKeys(seen)
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}

// Rank orders counts descending (ties by value) and keeps the first limit
// buckets; limit <= 0 keeps all.
func Rank(counts map[string]int64, limit int) []domain.ValueCount {
	out := make([]domain.ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, domain.ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
