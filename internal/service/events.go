package service

import (
	"encoding/json"
	"strings"

	"media-transcoding-service/internal/entity"
)

// Event is the part of a vendor status callback the service acts on.
type Event struct {
	JobID  string
	Status string
	// OutputGroupDetails is kept raw; it is only decoded for COMPLETE.
	OutputGroupDetails json.RawMessage
	ErrorCode          json.RawMessage
	ErrorMessage       string
}

type OutputGroupDetail struct {
	OutputDetails []OutputDetail `json:"outputDetails"`
	Type          string         `json:"type,omitempty"`
}

type OutputDetail struct {
	OutputFilePaths []string      `json:"outputFilePaths"`
	DurationInMs    *float64      `json:"durationInMs,omitempty"`
	VideoDetails    *VideoDetails `json:"videoDetails,omitempty"`
}

type VideoDetails struct {
	WidthInPx      *int   `json:"widthInPx,omitempty"`
	HeightInPx     *int   `json:"heightInPx,omitempty"`
	AverageBitrate *int64 `json:"averageBitrate,omitempty"`
}

// DurationSeconds converts durationInMs to seconds; absent means 0.
func (o OutputDetail) DurationSeconds() float64 {
	if o.DurationInMs == nil {
		return 0
	}
	return *o.DurationInMs / 1000
}

var externalStatuses = map[string]entity.JobStatus{
	"PROGRESSING": entity.StatusProgressing,
	"COMPLETE":    entity.StatusComplete,
	"ERROR":       entity.StatusFailed,
}

// MapExternalStatus maps the vendor status token, case-insensitively.
func MapExternalStatus(token string) (entity.JobStatus, bool) {
	s, ok := externalStatuses[strings.ToUpper(token)]
	return s, ok
}

// parseOutputDetails decodes outputGroupDetails[0].outputDetails. It returns
// ErrMissingOutputDetails when the block is absent, empty or malformed.
func parseOutputDetails(raw json.RawMessage) ([]OutputDetail, json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil, ErrMissingOutputDetails
	}

	var groups []struct {
		OutputDetails json.RawMessage `json:"outputDetails"`
	}
	if err := json.Unmarshal(raw, &groups); err != nil || len(groups) == 0 {
		return nil, nil, ErrMissingOutputDetails
	}
	detailsRaw := groups[0].OutputDetails
	if len(detailsRaw) == 0 || string(detailsRaw) == "null" {
		return nil, nil, ErrMissingOutputDetails
	}

	var details []OutputDetail
	if err := json.Unmarshal(detailsRaw, &details); err != nil || len(details) == 0 {
		return nil, nil, ErrMissingOutputDetails
	}
	return details, detailsRaw, nil
}

func failureMetadata(ev Event) json.RawMessage {
	if len(ev.ErrorCode) == 0 && ev.ErrorMessage == "" {
		return json.RawMessage(`{}`)
	}
	m := map[string]any{}
	if len(ev.ErrorCode) > 0 {
		m["errorCode"] = ev.ErrorCode
	}
	if ev.ErrorMessage != "" {
		m["errorMessage"] = ev.ErrorMessage
	}
	b, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
