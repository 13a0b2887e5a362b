package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/repository/postgresql"
)

type MediaRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MediaAsset, error)
}

type Submitter interface {
	Submit(ctx context.Context, media *entity.MediaAsset) error
}

// Processor turns one queued media id into a submission attempt.
type Processor struct {
	media     MediaRepo
	submitter Submitter
	log       *slog.Logger
}

func NewProcessor(media MediaRepo, submitter Submitter, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{media: media, submitter: submitter, log: logger}
}

func (p *Processor) Process(ctx context.Context, mediaID string) error {
	start := time.Now()

	id, err := uuid.Parse(mediaID)
	if err != nil {
		p.log.Warn("dropping malformed media id", "media_id", mediaID, "error", err)
		return nil
	}

	media, err := p.media.GetByID(ctx, id)
	if errors.Is(err, postgresql.ErrNotFound) {
		// deleted between save and claim
		p.log.Info("media gone, nothing to submit", "media_id", mediaID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := p.submitter.Submit(ctx, media); err != nil {
		p.log.Error("submit failed", "media_id", mediaID, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return err
	}

	p.log.Debug("submit done", "media_id", mediaID, "kind", media.Kind, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
