package entity

import (
	"time"

	"github.com/google/uuid"
)

// Rendition is one transcoded output file. Width, Height and Bitrate are nil
// when the vendor reported no video details.
type Rendition struct {
	ID               uuid.UUID `json:"id"`
	MediaID          uuid.UUID `json:"media_id"`
	TranscodingJobID uuid.UUID `json:"transcoding_job_id"`
	File             string    `json:"file"`
	Width            *int      `json:"width"`
	Height           *int      `json:"height"`
	Duration         float64   `json:"duration"`
	Bitrate          *int64    `json:"bitrate"`
	CreatedAt        time.Time `json:"created_at"`
}
