package entity

import (
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
	KindOther MediaKind = "other"
)

func (k MediaKind) Valid() bool {
	switch k {
	case KindVideo, KindAudio, KindOther:
		return true
	}
	return false
}

// MediaAsset is the minimal view of an uploaded media object. File is either a
// web URL or a path relative to the CMS storage root.
type MediaAsset struct {
	ID        uuid.UUID `json:"id"`
	Kind      MediaKind `json:"kind"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
