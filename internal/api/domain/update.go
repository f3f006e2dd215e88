package domain

import "time"

// JobUpdate is a partial change to a job. Nil fields are left untouched.
// Counters and timestamps other than UpdatedAt are not part of an update.
type JobUpdate struct {
	Title           *string
	Company         *string
	Location        *string
	Description     *string
	JobType         *string
	Source          *string
	ExperienceLevel *string
	Remote          *string
	Industry        *string

	Requirements     []string
	Responsibilities []string
	Skills           []string
	Benefits         []string
	Tags             []string

	Salary         *Salary
	ApplicationURL *string
	SourceID       *string
	ContactInfo    *ContactInfo
	Status         *string
	PostedDate     *time.Time
	ExpiryDate     *time.Time
}

// Apply merges the update into j. ExpiryDate only changes when supplied.
func (u *JobUpdate) Apply(j *Job, now time.Time) {
	setString(&j.Title, u.Title)
	setString(&j.Company, u.Company)
	setString(&j.Location, u.Location)
	setString(&j.Description, u.Description)
	setString(&j.JobType, u.JobType)
	setString(&j.Source, u.Source)
	setString(&j.ExperienceLevel, u.ExperienceLevel)
	setString(&j.Remote, u.Remote)
	setString(&j.Industry, u.Industry)
	setString(&j.ApplicationURL, u.ApplicationURL)
	setString(&j.SourceID, u.SourceID)
	setString(&j.Status, u.Status)

	setList(&j.Requirements, u.Requirements)
	setList(&j.Responsibilities, u.Responsibilities)
	setList(&j.Skills, u.Skills)
	setList(&j.Benefits, u.Benefits)
	setList(&j.Tags, u.Tags)

	if u.Salary != nil {
		salary := *u.Salary
		if salary.Period == "" {
			salary.Period = SalaryPeriodYearly
		}
		j.Salary = &salary
	}
	if u.ContactInfo != nil {
		contact := *u.ContactInfo
		j.ContactInfo = &contact
	}
	if u.PostedDate != nil {
		j.PostedDate = *u.PostedDate
	}
	if u.ExpiryDate != nil {
		j.ExpiryDate = *u.ExpiryDate
	}

	j.UpdatedAt = now
}

// IsEmpty reports whether the update changes nothing
func (u *JobUpdate) IsEmpty() bool {
	return u.Title == nil && u.Company == nil && u.Location == nil && u.Description == nil &&
		u.JobType == nil && u.Source == nil && u.ExperienceLevel == nil && u.Remote == nil &&
		u.Industry == nil && u.Requirements == nil && u.Responsibilities == nil &&
		u.Skills == nil && u.Benefits == nil && u.Tags == nil && u.Salary == nil &&
		u.ApplicationURL == nil && u.SourceID == nil && u.ContactInfo == nil &&
		u.Status == nil && u.PostedDate == nil && u.ExpiryDate == nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v []string) {
	if v != nil {
		*dst = NormalizeList(v)
	}
}
