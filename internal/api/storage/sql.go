package storage

import (
	"fmt"
	"strings"

	"github.com/cuongbtq/job-board/internal/api/domain"
	"github.com/cuongbtq/job-board/internal/api/query"
	"github.com/cuongbtq/job-board/internal/api/search"
	"github.com/lib/pq"
)

const jobColumns = `
	id, title, company, location, description, job_type, source,
	experience_level, remote, industry,
	requirements, responsibilities, skills, benefits, tags,
	salary_min, salary_max, salary_currency, salary_period,
	application_url, source_id, contact_email, contact_phone, contact_website,
	status, posted_date, expiry_date, views, applications, created_at, updated_at`

// tsConfig is the text search configuration used by the search_vector column
const tsConfig = "english"

// argList accumulates positional query arguments
type argList struct {
	values []any
}

// add appends v and returns its placeholder
func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// whereClause renders the predicate as a WHERE clause. The returned tsquery
// placeholder is empty when the predicate carries no text terms.
func whereClause(p query.Predicate, args *argList) (where string, tsQueryArg string) {
	conditions := []string{}

	if p.Status != "" {
		conditions = append(conditions, "status = "+args.add(p.Status))
	}
	if p.JobType != "" {
		conditions = append(conditions, "job_type = "+args.add(p.JobType))
	}
	if p.Remote != "" {
		conditions = append(conditions, "remote = "+args.add(p.Remote))
	}
	if p.ExperienceLevel != "" {
		conditions = append(conditions, "experience_level = "+args.add(p.ExperienceLevel))
	}
	if p.IndustryContains != "" {
		conditions = append(conditions, "industry ILIKE "+args.add(likePattern(p.IndustryContains)))
	}
	if p.LocationContains != "" {
		conditions = append(conditions, "location ILIKE "+args.add(likePattern(p.LocationContains)))
	}
	if p.CompanyContains != "" {
		conditions = append(conditions, "company ILIKE "+args.add(likePattern(p.CompanyContains)))
	}
	if p.MinSalary != nil {
		conditions = append(conditions, "salary_min >= "+args.add(*p.MinSalary))
	}
	if p.MaxSalary != nil {
		conditions = append(conditions, "salary_max <= "+args.add(*p.MaxSalary))
	}
	if len(p.Skills) > 0 {
		conditions = append(conditions, "skills && "+args.add(pq.Array(p.Skills))+"::text[]")
	}
	if p.PostedAfter != nil {
		conditions = append(conditions, "posted_date >= "+args.add(*p.PostedAfter))
	}
	if p.PostedBefore != nil {
		conditions = append(conditions, "posted_date <= "+args.add(*p.PostedBefore))
	}
	if p.HasText() {
		if tsq := search.TSQuery(p.Terms); tsq != "" {
			tsQueryArg = args.add(tsq)
			conditions = append(conditions, fmt.Sprintf("search_vector @@ to_tsquery('%s', %s)", tsConfig, tsQueryArg))
		} else {
			conditions = append(conditions, "FALSE")
		}
	}

	if len(conditions) == 0 {
		return "", tsQueryArg
	}
	return "WHERE " + strings.Join(conditions, " AND "), tsQueryArg
}

// scoreExpr renders the relevance expression selected as "score". Per term it
// adds the weight of every tsvector label the term occurs under, mirroring
// search.TermScorer without the document frequency factor. ts_rank is not
// used since it grows with repeated occurrences.
func scoreExpr(terms []string, tsQueryArg string, args *argList) string {
	if tsQueryArg == "" {
		return "0::float8"
	}

	labels := search.LabelWeights(search.DefaultWeights)
	parts := []string{}
	for _, tsq := range search.TermQueries(terms) {
		ph := args.add(tsq)
		for _, lw := range labels {
			parts = append(parts, fmt.Sprintf("%s * (ts_filter(search_vector, '{%s}') @@ to_tsquery('%s', %s))::int",
				search.FormatWeight(lw.Weight), lw.Label, tsConfig, ph))
		}
	}
	return "(" + strings.Join(parts, " + ") + ")::float8"
}

// orderByClause mirrors query.Sort.Less
func orderByClause(s query.Sort, hasText bool) string {
	dir := "DESC"
	if s.Direction == query.Asc {
		dir = "ASC"
	}

	switch s.Key {
	case query.SortRelevance:
		if hasText {
			return "ORDER BY score DESC, posted_date DESC, id ASC"
		}
		return "ORDER BY posted_date DESC, id ASC"
	case query.SortSalary:
		return "ORDER BY salary_max DESC NULLS LAST, posted_date DESC, id ASC"
	case query.SortCompany:
		return fmt.Sprintf("ORDER BY company %s, id ASC", dir)
	case query.SortLocation:
		return fmt.Sprintf("ORDER BY location %s, id ASC", dir)
	default:
		return fmt.Sprintf("ORDER BY posted_date %s, id ASC", dir)
	}
}

// buildFindQueries renders the page select and the total count for q
func buildFindQueries(q query.Query) (selectSQL string, selectArgs []any, countSQL string, countArgs []any) {
	args := &argList{}
	where, tsQueryArg := whereClause(q.Predicate, args)

	countSQL = "SELECT COUNT(*) FROM jobs " + where
	countArgs = append([]any(nil), args.values...)

	score := scoreExpr(q.Predicate.Terms, tsQueryArg, args)
	limit := args.add(q.Page.Limit)
	offset := args.add(q.Page.Offset())

	selectSQL = fmt.Sprintf(`
		SELECT %s, %s AS score
		FROM jobs
		%s
		%s
		LIMIT %s OFFSET %s`,
		jobColumns, score, where, orderByClause(q.Sort, tsQueryArg != ""), limit, offset)

	return selectSQL, args.values, countSQL, countArgs
}

// suggestionSource maps a suggestion family to its FROM clause and value expression
func suggestionSource(family string) (from string, column string, ok bool) {
	switch family {
	case domain.SuggestJobs:
		return "jobs", "title", true
	case domain.SuggestCompanies:
		return "jobs", "company", true
	case domain.SuggestLocations:
		return "jobs", "location", true
	case domain.SuggestSkills:
		return "jobs, unnest(skills) AS skill", "skill", true
	}
	return "", "", false
}

// likePattern escapes LIKE wildcards in s and wraps it for substring matching
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
