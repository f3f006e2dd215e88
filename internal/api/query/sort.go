package query

import (
	"sort"
	"strings"

	"github.com/cuongbtq/job-board/internal/api/domain"
)

// SortKey names the attribute a result set is ordered by
type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPostedDate SortKey = "postedDate"
	SortSalary     SortKey = "salary"
	SortCompany    SortKey = "company"
	SortLocation   SortKey = "location"
)

// Direction is the sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is an ordering over a result set
type Sort struct {
	Key       SortKey
	Direction Direction
}

// ParseSortKey maps a request value to a SortKey. Relevance is only accepted
// when allowRelevance is set.
func ParseSortKey(raw string, allowRelevance bool) (SortKey, bool) {
	switch SortKey(strings.TrimSpace(raw)) {
	case SortPostedDate:
		return SortPostedDate, true
	case SortSalary:
		return SortSalary, true
	case SortCompany:
		return SortCompany, true
	case SortLocation:
		return SortLocation, true
	case SortRelevance:
		return SortRelevance, allowRelevance
	}
	return "", false
}

// ParseDirection maps a request value to a Direction, desc unless "asc"
func ParseDirection(raw string) Direction {
	if strings.EqualFold(strings.TrimSpace(raw), string(Asc)) {
		return Asc
	}
	return Desc
}

// Hit is one matched job with its relevance score (zero without a text query)
type Hit struct {
	Job   domain.Job
	Score float64
}

// Less reports whether a sorts before b.
//
// Relevance orders by score descending then postedDate descending. Salary
// always orders by salary.max descending with missing salaries last; the
// direction only applies to postedDate, company and location. Remaining ties
// fall back to id so pages are stable.
func (s Sort) Less(a, b Hit) bool {
	switch s.Key {
	case SortRelevance:
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Job.PostedDate.Equal(b.Job.PostedDate) {
			return a.Job.PostedDate.After(b.Job.PostedDate)
		}
	case SortSalary:
		am, aok := salaryMax(a.Job)
		bm, bok := salaryMax(b.Job)
		if aok != bok {
			return aok
		}
		if am != bm {
			return am > bm
		}
		if !a.Job.PostedDate.Equal(b.Job.PostedDate) {
			return a.Job.PostedDate.After(b.Job.PostedDate)
		}
	case SortCompany:
		if a.Job.Company != b.Job.Company {
			return s.ordered(a.Job.Company < b.Job.Company)
		}
	case SortLocation:
		if a.Job.Location != b.Job.Location {
			return s.ordered(a.Job.Location < b.Job.Location)
		}
	default:
		if !a.Job.PostedDate.Equal(b.Job.PostedDate) {
			return s.ordered(a.Job.PostedDate.Before(b.Job.PostedDate))
		}
	}
	return a.Job.ID < b.Job.ID
}

// Apply sorts hits in place
func (s Sort) Apply(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return s.Less(hits[i], hits[j])
	})
}

// ordered turns an ascending comparison into one that honours the direction
func (s Sort) ordered(ascLess bool) bool {
	if s.Direction == Asc {
		return ascLess
	}
	return !ascLess
}

func salaryMax(j domain.Job) (float64, bool) {
	if j.Salary == nil || j.Salary.Max == nil {
		return 0, false
	}
	return *j.Salary.Max, true
}
