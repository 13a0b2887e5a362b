package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending     JobStatus = "pending"
	StatusProgressing JobStatus = "progressing"
	StatusComplete    JobStatus = "complete"
	StatusFailed      JobStatus = "failed"
)

// Active reports whether the status blocks a new job for the same media.
func (s JobStatus) Active() bool {
	return s == StatusPending || s == StatusProgressing
}

func (s JobStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

type TranscodingJob struct {
	ID                   uuid.UUID       `json:"id"`
	MediaID              uuid.UUID       `json:"media_id"`
	ExternalJobReference string          `json:"external_job_reference"`
	Status               JobStatus       `json:"status"`
	Backend              string          `json:"backend"`
	Metadata             json.RawMessage `json:"metadata,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
