package dto

import (
	"encoding/json"
	"strings"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
	"github.com/cuongbtq/job-board/internal/api/search"
)

// PageLimits are the configured page sizes for one endpoint
type PageLimits struct {
	Default int
	Max     int
}

// ListJobsQuery is the query string of GET /api/v1/jobs. Numbers and dates
// are kept raw; malformed values are ignored rather than rejected.
type ListJobsQuery struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Sort      string `form:"sort"`
	SortBy    string `form:"sortBy"`
	Order     string `form:"order"`
	SortOrder string `form:"sortOrder"`

	Status          string `form:"status" binding:"omitempty,oneof=active expired filled draft"`
	JobType         string `form:"jobType" binding:"omitempty,oneof=full-time part-time contract internship freelance"`
	Remote          string `form:"remote" binding:"omitempty,oneof=on-site remote hybrid"`
	ExperienceLevel string `form:"experienceLevel" binding:"omitempty,oneof=entry junior mid senior lead executive"`
	Industry        string `form:"industry" binding:"omitempty,max=100"`
	Location        string `form:"location" binding:"omitempty,max=100"`
	Company         string `form:"company" binding:"omitempty,max=100"`
	MinSalary       string `form:"minSalary"`
	MaxSalary       string `form:"maxSalary"`
	Skills          string `form:"skills"`
	PostedAfter     string `form:"postedAfter"`
	PostedBefore    string `form:"postedBefore"`
}

// ToQuery compiles the listing request. Relevance is not a listing sort key.
func (q *ListJobsQuery) ToQuery(limits PageLimits) (query.Query, error) {
	sortKey := query.SortPostedDate
	if raw := firstNonEmpty(q.Sort, q.SortBy); raw != "" {
		key, ok := query.ParseSortKey(raw, false)
		if !ok {
			return query.Query{}, domain.NewValidationError("sort", "must be one of: postedDate, salary, company, location")
		}
		sortKey = key
	}

	params := query.Params{
		Status:          q.Status,
		JobType:         q.JobType,
		Remote:          q.Remote,
		ExperienceLevel: q.ExperienceLevel,
		Industry:        q.Industry,
		Location:        q.Location,
		Company:         q.Company,
		MinSalary:       query.ParseNumber(q.MinSalary),
		MaxSalary:       query.ParseNumber(q.MaxSalary),
		Skills:          query.SplitList(q.Skills),
		PostedAfter:     query.ParseDate(q.PostedAfter),
		PostedBefore:    query.ParseDate(q.PostedBefore),
	}

	return query.Query{
		Predicate: query.Compile(params),
		Sort: query.Sort{
			Key:       sortKey,
			Direction: query.ParseDirection(firstNonEmpty(q.Order, q.SortOrder)),
		},
		Page: query.ParsePage(q.Page, q.Limit, limits.Default, limits.Max),
	}, nil
}

// SearchJobsQuery is the query string of GET /api/v1/jobs/search
type SearchJobsQuery struct {
	Q         string `form:"q" binding:"omitempty,max=200"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Sort      string `form:"sort"`
	SortBy    string `form:"sortBy"`
	Order     string `form:"order"`
	SortOrder string `form:"sortOrder"`
	Filters   string `form:"filters"`
}

// SearchFilters is the JSON document carried by the filters parameter
type SearchFilters struct {
	Status          string           `json:"status"`
	JobType         string           `json:"jobType"`
	Remote          string           `json:"remote"`
	ExperienceLevel string           `json:"experienceLevel"`
	Industry        string           `json:"industry"`
	Location        string           `json:"location"`
	Company         string           `json:"company"`
	MinSalary       query.Number     `json:"minSalary"`
	MaxSalary       query.Number     `json:"maxSalary"`
	Skills          query.StringList `json:"skills"`
	PostedAfter     query.Date       `json:"postedAfter"`
	PostedBefore    query.Date       `json:"postedBefore"`
}

// ParseSearchFilters decodes the filters parameter field by field. A document
// that is not a JSON object yields an empty filter set; a field of the wrong
// type is ignored without discarding the others, and enum values outside
// their domain are dropped. Keys match case-insensitively.
func ParseSearchFilters(raw string) SearchFilters {
	var f SearchFilters
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return f
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return f
	}
	fields := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		fields[strings.ToLower(k)] = v
	}

	decodeField(fields, "status", &f.Status)
	decodeField(fields, "jobtype", &f.JobType)
	decodeField(fields, "remote", &f.Remote)
	decodeField(fields, "experiencelevel", &f.ExperienceLevel)
	decodeField(fields, "industry", &f.Industry)
	decodeField(fields, "location", &f.Location)
	decodeField(fields, "company", &f.Company)
	decodeField(fields, "minsalary", &f.MinSalary)
	decodeField(fields, "maxsalary", &f.MaxSalary)
	decodeField(fields, "skills", &f.Skills)
	decodeField(fields, "postedafter", &f.PostedAfter)
	decodeField(fields, "postedbefore", &f.PostedBefore)

	f.JobType = keepAllowed(domain.JobTypes, f.JobType)
	f.Remote = keepAllowed(domain.RemoteOptions, f.Remote)
	f.ExperienceLevel = keepAllowed(domain.ExperienceLevels, f.ExperienceLevel)
	return f
}

// decodeField sets dst from fields[key] when present and of a compatible type
func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// Params converts the filters into compiler input
func (f SearchFilters) Params() query.Params {
	return query.Params{
		Status:          f.Status,
		JobType:         f.JobType,
		Remote:          f.Remote,
		ExperienceLevel: f.ExperienceLevel,
		Industry:        f.Industry,
		Location:        f.Location,
		Company:         f.Company,
		MinSalary:       f.MinSalary.Value,
		MaxSalary:       f.MaxSalary.Value,
		Skills:          f.Skills,
		PostedAfter:     f.PostedAfter.Value,
		PostedBefore:    f.PostedBefore.Value,
	}
}

// ToQuery compiles the search request. Without search terms the text stage is
// skipped; an explicit relevance sort then is a validation error.
func (q *SearchJobsQuery) ToQuery(limits PageLimits) (query.Query, error) {
	terms := search.Terms(q.Q)

	sortKey := query.SortPostedDate
	if len(terms) > 0 {
		sortKey = query.SortRelevance
	}
	if raw := firstNonEmpty(q.Sort, q.SortBy); raw != "" {
		key, ok := query.ParseSortKey(raw, true)
		if !ok {
			return query.Query{}, domain.NewValidationError("sort", "must be one of: relevance, postedDate, salary, company, location")
		}
		if key == query.SortRelevance && len(terms) == 0 {
			return query.Query{}, domain.NewValidationError("sort", "relevance sort requires a search query")
		}
		sortKey = key
	}

	filters := ParseSearchFilters(q.Filters)

	return query.Query{
		Predicate: query.CompileSearch(filters.Params(), terms),
		Sort: query.Sort{
			Key:       sortKey,
			Direction: query.ParseDirection(firstNonEmpty(q.Order, q.SortOrder)),
		},
		Page: query.ParsePage(q.Page, q.Limit, limits.Default, limits.Max),
	}, nil
}

// SuggestionsQuery is the query string of GET /api/v1/jobs/suggestions
type SuggestionsQuery struct {
	Q    string `form:"q"`
	Type string `form:"type"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func keepAllowed(allowed []string, v string) string {
	if domain.Contains(allowed, v) {
		return v
	}
	return ""
}
