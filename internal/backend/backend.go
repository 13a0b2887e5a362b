// Package backend defines the contract between the job lifecycle engine and
// the external transcoding vendors that do the actual work.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
)

// ErrStopNotSupported is returned by backends that cannot cancel a running job.
var ErrStopNotSupported = errors.New("stop transcode is not supported")

// StartResult is what a vendor hands back once it has accepted a job.
type StartResult struct {
	JobReference string
	Raw          json.RawMessage
}

// Backend starts and stops transcodes on an external system. StartTranscode
// returns *TranscodingError when the vendor rejects the request and
// *ConfigurationError when the backend is missing required setup.
type Backend interface {
	StartTranscode(ctx context.Context, file string) (*StartResult, error)
	StopTranscode(ctx context.Context, jobReference string) error
}

// Opener reads media files that are not reachable through a public URL.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
