package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"media-transcoding-service/internal/backend"
	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/repository/postgresql"
)

// SubmissionJobs is the slice of the job repository the coordinator writes to.
type SubmissionJobs interface {
	CreatePending(ctx context.Context, mediaID uuid.UUID) (*entity.TranscodingJob, error)
	MarkStarted(ctx context.Context, id uuid.UUID, ref, backendName string, metadata json.RawMessage) error
	MarkFailed(ctx context.Context, id uuid.UUID, metadata json.RawMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmissionService starts at most one transcode per media. It must only be
// called for media rows that are already committed.
type SubmissionService struct {
	jobs        SubmissionJobs
	backend     backend.Backend
	backendName string
	log         *slog.Logger
}

// NewSubmissionService returns a coordinator. A nil backend disables
// transcoding and turns Submit into a no-op.
func NewSubmissionService(jobs SubmissionJobs, b backend.Backend, backendName string, logger *slog.Logger) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{jobs: jobs, backend: b, backendName: backendName, log: logger}
}

func (s *SubmissionService) Enabled() bool { return s.backend != nil }

// Submit starts a transcode for media when it is a video, a backend is
// configured and no pending or progressing job exists.
//
// Vendor rejections mark the job failed and return nil. Configuration errors
// delete the job and are returned. Anything else marks the job failed with
// error_type "unknown" and is returned.
func (s *SubmissionService) Submit(ctx context.Context, media *entity.MediaAsset) error {
	if media == nil || media.Kind != entity.KindVideo || s.backend == nil {
		return nil
	}
	log := s.log.With("media_id", media.ID.String())

	job, err := s.jobs.CreatePending(ctx, media.ID)
	if errors.Is(err, postgresql.ErrActiveJobExists) {
		log.Info("active transcoding job exists, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create pending job: %w", err)
	}
	log = log.With("job_id", job.ID.String())

	res, err := s.startTranscode(ctx, media.File)
	if err == nil {
		if err := s.jobs.MarkStarted(ctx, job.ID, res.JobReference, s.backendName, res.Raw); err != nil {
			return fmt.Errorf("record job reference: %w", err)
		}
		log.Info("transcode started", "job_reference", res.JobReference, "backend", s.backendName)
		return nil
	}

	var (
		transcodeErr *backend.TranscodingError
		configErr    *backend.ConfigurationError
	)
	switch {
	case errors.As(err, &transcodeErr):
		log.Warn("transcode rejected by backend", "error_type", transcodeErr.Kind, "error", transcodeErr.Message())
		if markErr := s.jobs.MarkFailed(ctx, job.ID, errorMetadata(transcodeErr.Kind, transcodeErr.Message())); markErr != nil {
			return fmt.Errorf("mark job failed: %w", markErr)
		}
		return nil

	case errors.As(err, &configErr):
		log.Error("transcoding backend misconfigured, discarding job", "error", err)
		if delErr := s.jobs.Delete(ctx, job.ID); delErr != nil {
			return errors.Join(err, fmt.Errorf("delete job: %w", delErr))
		}
		return err

	default:
		log.Error("transcode failed unexpectedly", "error", err)
		if markErr := s.jobs.MarkFailed(ctx, job.ID, errorMetadata("unknown", err.Error())); markErr != nil {
			return errors.Join(err, fmt.Errorf("mark job failed: %w", markErr))
		}
		return err
	}
}

func (s *SubmissionService) startTranscode(ctx context.Context, file string) (*backend.StartResult, error) {
	res, err := s.backend.StartTranscode(ctx, file)
	if err != nil {
		return nil, err
	}
	if res == nil || res.JobReference == "" {
		return nil, errors.New("backend accepted the job without a job reference")
	}
	return res, nil
}

func errorMetadata(kind, msg string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error_type": kind, "error": msg})
	return b
}
