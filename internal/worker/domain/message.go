package domain

import "time"

// ViewMessage is one decoded job.viewed delivery ready for processing
type ViewMessage struct {
	JobIDs      []string
	RecordedAt  time.Time
	DeliveryTag uint64
	Redelivered bool
}
