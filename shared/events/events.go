// Package events defines the messages exchanged between the API and worker services.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RoutingKeyJobsViewed routes view events to the worker queue
const RoutingKeyJobsViewed = "job.viewed"

// ContentTypeJSON is the content type of every published event
const ContentTypeJSON = "application/json"

var ErrEmptyEvent = errors.New("event has no job ids")

// JobsViewed records that the listed jobs were returned to a client once
type JobsViewed struct {
	JobIDs     []string  `json:"job_ids"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Encode serializes the event for publishing
func (e JobsViewed) Encode() ([]byte, error) {
	if len(e.JobIDs) == 0 {
		return nil, ErrEmptyEvent
	}
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jobs viewed event: %w", err)
	}
	return body, nil
}

// DecodeJobsViewed parses a published JobsViewed event
func DecodeJobsViewed(body []byte) (*JobsViewed, error) {
	var e JobsViewed
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jobs viewed event: %w", err)
	}
	if len(e.JobIDs) == 0 {
		return nil, ErrEmptyEvent
	}
	return &e, nil
}
