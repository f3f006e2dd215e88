// Package query compiles validated request parameters into store-agnostic
// predicates, sort orders and pages.
package query

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Params is the validated set of filter parameters shared by listing and search.
// Zero values mean "not supplied".
type Params struct {
	Status          string
	JobType         string
	Remote          string
	ExperienceLevel string
	Industry        string
	Location        string
	Company         string
	MinSalary       *float64
	MaxSalary       *float64
	Skills          []string
	PostedAfter     *time.Time
	PostedBefore    *time.Time
}

// ParseNumber parses a decimal number. Malformed, NaN and infinite inputs
// yield nil.
func ParseNumber(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate parses an ISO-8601 date or timestamp. Malformed input yields nil.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// SplitList splits a comma-separated value into trimmed, non-empty items
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Number is a JSON number that also accepts numeric strings. Anything else
// decodes to an absent value instead of failing the whole document.
type Number struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	n.Value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	n.Value = ParseNumber(s)
	return nil
}

// Date is a JSON ISO-8601 date; malformed values decode as absent
type Date struct {
	Value *time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	d.Value = nil
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	d.Value = ParseDate(s)
	return nil
}

// StringList accepts either a JSON array of strings or a comma-separated string
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		var out []string
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*l = out
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*l = SplitList(s)
	}
	return nil
}
