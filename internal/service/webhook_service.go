package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/repository/postgresql"
)

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrMissingOutputDetails = errors.New("COMPLETE status requires outputGroupDetails")
)

type JobLookup interface {
	GetByExternalReference(ctx context.Context, ref string) (*entity.TranscodingJob, error)
}

// Outcome is the result of processing one callback.
type Outcome struct {
	Job       *entity.TranscodingJob
	Status    entity.JobStatus
	Skipped   bool
	Rendition *entity.Rendition
}

// WebhookService applies validated vendor callbacks: job lookup, status
// mapping, the complete-job guard, then reconciler and materializer.
type WebhookService struct {
	jobs         JobLookup
	reconciler   *Reconciler
	materializer *Materializer
	log          *slog.Logger
}

func NewWebhookService(jobs JobLookup, reconciler *Reconciler, materializer *Materializer, logger *slog.Logger) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{jobs: jobs, reconciler: reconciler, materializer: materializer, log: logger}
}

func (s *WebhookService) Process(ctx context.Context, ev Event) (Outcome, error) {
	log := s.log.With("job_reference", ev.JobID, "status_token", ev.Status)

	job, err := s.jobs.GetByExternalReference(ctx, ev.JobID)
	if errors.Is(err, postgresql.ErrNotFound) {
		log.Warn("webhook for unknown job")
		return Outcome{}, fmt.Errorf("%w: %s", ErrJobNotFound, ev.JobID)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup job: %w", err)
	}

	status, ok := MapExternalStatus(ev.Status)
	if !ok {
		log.Error("webhook with invalid status")
		return Outcome{Job: job}, fmt.Errorf("%w: %s", ErrInvalidStatus, ev.Status)
	}
	out := Outcome{Job: job, Status: status}

	if job.Status == entity.StatusComplete {
		log.Info("job already complete, skipping update")
		out.Skipped = true
		return out, nil
	}

	var (
		outputs  []OutputDetail
		metadata json.RawMessage
	)
	switch status {
	case entity.StatusComplete:
		outputs, metadata, err = parseOutputDetails(ev.OutputGroupDetails)
		if err != nil {
			log.Error("COMPLETE status without usable outputGroupDetails")
			return out, err
		}
	case entity.StatusFailed:
		metadata = failureMetadata(ev)
	default:
		metadata = json.RawMessage(`{}`)
	}
	log.Debug("webhook accepted", "metadata", string(metadata))

	t, err := s.reconciler.Apply(ctx, ev.JobID, status, metadata)
	if errors.Is(err, postgresql.ErrNotFound) {
		return out, fmt.Errorf("%w: %s", ErrJobNotFound, ev.JobID)
	}
	if err != nil {
		return out, fmt.Errorf("apply status: %w", err)
	}
	if !t.Applied {
		out.Skipped = true
		return out, nil
	}

	if t.Completed() {
		rd, err := s.materializer.Materialize(ctx, job, outputs[0])
		if err != nil {
			// status is committed; the rendition can be rebuilt from job metadata
			log.Error("rendition not created", "error", err)
		}
		out.Rendition = rd
	}
	return out, nil
}
