package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestJob_ApplyDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fills system attributes", func(t *testing.T) {
		j := &Job{
			Title:  "Backend Engineer",
			Skills: []string{" Go ", "", "SQL"},
			Salary: &Salary{Min: ptr(100.0)},
			Views:  42,
		}
		j.ApplyDefaults(now)

		assert.Equal(t, RemoteOnSite, j.Remote)
		assert.Equal(t, JobStatusActive, j.Status)
		assert.Equal(t, SalaryPeriodYearly, j.Salary.Period)
		assert.Equal(t, now, j.PostedDate)
		assert.Equal(t, now.Add(30*24*time.Hour), j.ExpiryDate)
		assert.Equal(t, []string{"Go", "SQL"}, j.Skills)
		assert.NotNil(t, j.Tags)
		assert.Zero(t, j.Views)
		assert.Zero(t, j.Applications)
		assert.Equal(t, now, j.CreatedAt)
		assert.Equal(t, now, j.UpdatedAt)
	})

	t.Run("expiry follows supplied posted date", func(t *testing.T) {
		posted := time.Date(2024, 1, 31, 8, 30, 0, 0, time.UTC)
		j := &Job{PostedDate: posted}
		j.ApplyDefaults(now)

		assert.Equal(t, posted, j.PostedDate)
		assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), j.ExpiryDate)
	})

	t.Run("supplied expiry is kept", func(t *testing.T) {
		expiry := now.Add(7 * 24 * time.Hour)
		j := &Job{ExpiryDate: expiry, Remote: RemoteHybrid, Status: JobStatusDraft}
		j.ApplyDefaults(now)

		assert.Equal(t, expiry, j.ExpiryDate)
		assert.Equal(t, RemoteHybrid, j.Remote)
		assert.Equal(t, JobStatusDraft, j.Status)
	})
}

func TestJob_SalaryRange(t *testing.T) {
	tests := []struct {
		name   string
		salary *Salary
		want   string
	}{
		{name: "no salary", salary: nil, want: ""},
		{name: "no bounds", salary: &Salary{Currency: "USD"}, want: ""},
		{
			name:   "both bounds",
			salary: &Salary{Min: ptr(80000.0), Max: ptr(120000.0), Currency: "USD", Period: SalaryPeriodYearly},
			want:   "USD 80,000 - 120,000 / yearly",
		},
		{
			name:   "min only",
			salary: &Salary{Min: ptr(50.0), Currency: "EUR", Period: SalaryPeriodHourly},
			want:   "EUR from 50 / hourly",
		},
		{
			name:   "max only without currency",
			salary: &Salary{Max: ptr(1500000.0)},
			want:   "up to 1,500,000 / yearly",
		},
		{
			name:   "fractional amounts",
			salary: &Salary{Min: ptr(22.5), Max: ptr(30.0), Currency: "GBP", Period: SalaryPeriodHourly},
			want:   "GBP 22.50 - 30 / hourly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &Job{Salary: tt.salary}
			assert.Equal(t, tt.want, j.SalaryRange())
		})
	}
}

func TestJob_DerivedDates(t *testing.T) {
	posted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	j := &Job{PostedDate: posted, ExpiryDate: posted.Add(DefaultExpiry)}

	assert.Equal(t, 0, j.DaysSincePosted(posted.Add(-time.Hour)))
	assert.Equal(t, 2, j.DaysSincePosted(posted.Add(60*time.Hour)))

	assert.False(t, j.IsExpired(j.ExpiryDate))
	assert.True(t, j.IsExpired(j.ExpiryDate.Add(time.Second)))
}

func TestSalary_Midpoint(t *testing.T) {
	mid, ok := (&Salary{Min: ptr(100.0), Max: ptr(200.0)}).Midpoint()
	assert.True(t, ok)
	assert.Equal(t, 150.0, mid)

	_, ok = (&Salary{Min: ptr(100.0)}).Midpoint()
	assert.False(t, ok)

	var nilSalary *Salary
	_, ok = nilSalary.Midpoint()
	assert.False(t, ok)
}

func TestJobUpdate_Apply(t *testing.T) {
	posted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := posted.Add(48 * time.Hour)

	base := func() *Job {
		return &Job{
			Title:        "Old title",
			Company:      "Acme",
			Skills:       []string{"Go"},
			Tags:         []string{"backend"},
			PostedDate:   posted,
			ExpiryDate:   posted.Add(DefaultExpiry),
			Views:        10,
			Applications: 3,
		}
	}

	t.Run("partial update leaves other fields", func(t *testing.T) {
		j := base()
		u := &JobUpdate{Title: ptr("New title"), Skills: []string{" Rust ", ""}}
		u.Apply(j, now)

		assert.Equal(t, "New title", j.Title)
		assert.Equal(t, "Acme", j.Company)
		assert.Equal(t, []string{"Rust"}, j.Skills)
		assert.Equal(t, []string{"backend"}, j.Tags)
		assert.Equal(t, int64(10), j.Views)
		assert.Equal(t, int64(3), j.Applications)
		assert.Equal(t, now, j.UpdatedAt)
	})

	t.Run("expiry is not recomputed when posted date changes", func(t *testing.T) {
		j := base()
		u := &JobUpdate{PostedDate: ptr(posted.Add(24 * time.Hour))}
		u.Apply(j, now)

		assert.Equal(t, posted.Add(DefaultExpiry), j.ExpiryDate)
	})

	t.Run("empty list clears", func(t *testing.T) {
		j := base()
		u := &JobUpdate{Tags: []string{}}
		u.Apply(j, now)

		assert.Empty(t, j.Tags)
	})

	t.Run("salary period defaults", func(t *testing.T) {
		j := base()
		u := &JobUpdate{Salary: &Salary{Max: ptr(90000.0)}}
		u.Apply(j, now)

		require.NotNil(t, j.Salary)
		assert.Equal(t, SalaryPeriodYearly, j.Salary.Period)
	})
}

func TestJobUpdate_IsEmpty(t *testing.T) {
	assert.True(t, (&JobUpdate{}).IsEmpty())
	assert.False(t, (&JobUpdate{Status: ptr(JobStatusFilled)}).IsEmpty())
	assert.False(t, (&JobUpdate{Skills: []string{}}).IsEmpty())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required")
	assert.Equal(t, "validation failed: title: is required", err.Error())

	wrapped := fmt.Errorf("failed to create job: %w", err)
	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsValidationError(ErrJobNotFound))
	assert.False(t, IsValidationError(errors.New("boom")))

	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
