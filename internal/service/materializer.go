package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"media-transcoding-service/internal/entity"
)

var ErrMalformedOutputPath = errors.New("malformed output file path")

type RenditionStore interface {
	Create(ctx context.Context, r *entity.Rendition) error
}

// Materializer turns the first output of a completed job into a Rendition.
type Materializer struct {
	store RenditionStore
	log   *slog.Logger
}

func NewMaterializer(store RenditionStore, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{store: store, log: logger}
}

// Materialize creates the rendition for job. An unusable output path is
// logged and yields (nil, nil): the job stays complete without a rendition.
func (m *Materializer) Materialize(ctx context.Context, job *entity.TranscodingJob, out OutputDetail) (*entity.Rendition, error) {
	log := m.log.With("job_id", job.ID.String(), "job_reference", job.ExternalJobReference)

	var first string
	if len(out.OutputFilePaths) > 0 {
		first = out.OutputFilePaths[0]
	}
	key, err := StorageKey(first)
	if err != nil {
		log.Error("failed to parse rendition data", "path", first, "error", err)
		return nil, nil
	}

	rd := &entity.Rendition{
		MediaID:          job.MediaID,
		TranscodingJobID: job.ID,
		File:             key,
		Duration:         out.DurationSeconds(),
	}
	if vd := out.VideoDetails; vd != nil {
		rd.Width = vd.WidthInPx
		rd.Height = vd.HeightInPx
		rd.Bitrate = vd.AverageBitrate
	}

	if err := m.store.Create(ctx, rd); err != nil {
		return nil, fmt.Errorf("create rendition: %w", err)
	}
	log.Info("rendition created", "rendition_id", rd.ID.String(), "file", rd.File)
	return rd, nil
}

// StorageKey strips scheme and bucket from a vendor path:
// "s3://bucket/media/out.mp4" -> "media/out.mp4".
func StorageKey(path string) (string, error) {
	parts := strings.SplitN(path, "/", 4)
	if len(parts) != 4 || !strings.HasSuffix(parts[0], ":") || len(parts[0]) < 2 || parts[1] != "" || parts[2] == "" || parts[3] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedOutputPath, path)
	}
	return parts[3], nil
}
