package domain

// ValueCount is one bucket of a grouped count
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// JobStats is the collection-wide statistics snapshot
type JobStats struct {
	TotalJobs         int64        `json:"totalJobs"`
	ActiveJobs        int64        `json:"activeJobs"`
	TotalViews        int64        `json:"totalViews"`
	TotalApplications int64        `json:"totalApplications"`
	JobsByType        []ValueCount `json:"jobsByType"`
	JobsByRemote      []ValueCount `json:"jobsByRemote"`
	TopIndustries     []ValueCount `json:"topIndustries"`
}

// SalaryRange summarizes salaries of jobs that have both bounds set
type SalaryRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// FilterFacets lists the filter values currently in use by active jobs
type FilterFacets struct {
	JobTypes         []string     `json:"jobTypes"`
	RemoteOptions    []string     `json:"remoteOptions"`
	ExperienceLevels []string     `json:"experienceLevels"`
	Industries       []string     `json:"industries"`
	Locations        []string     `json:"locations"`
	SalaryRange      *SalaryRange `json:"salaryRange"`
	TopSkills        []ValueCount `json:"topSkills"`
}

// Suggestion families
const (
	SuggestJobs      = "jobs"
	SuggestCompanies = "companies"
	SuggestLocations = "locations"
	SuggestSkills    = "skills"
	SuggestAll       = "all"
)

// SuggestionFamilies lists the concrete families in the order "all" concatenates them
var SuggestionFamilies = []string{SuggestJobs, SuggestCompanies, SuggestLocations, SuggestSkills}

// Suggestion is one completion value tagged with the family it came from
type Suggestion struct {
	Text string `json:"text"`
	Type string `json:"type"`
}
