package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"media-transcoding-service/internal/entity"
)

type StatusStore interface {
	ApplyStatus(ctx context.Context, ref string, status entity.JobStatus, metadata json.RawMessage) (entity.JobStatus, bool, error)
}

// Transition describes one Apply call. Applied is false when the job was
// already complete and nothing was written.
type Transition struct {
	From    entity.JobStatus
	To      entity.JobStatus
	Applied bool
}

// Completed reports a first transition into complete.
func (t Transition) Completed() bool {
	return t.Applied && t.To == entity.StatusComplete && t.From != entity.StatusComplete
}

// Reconciler writes external status updates onto job records. Status and
// metadata are overwritten as received; only a complete job is left alone.
type Reconciler struct {
	store StatusStore
	log   *slog.Logger
}

func NewReconciler(store StatusStore, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, log: logger}
}

func (r *Reconciler) Apply(ctx context.Context, ref string, status entity.JobStatus, metadata json.RawMessage) (Transition, error) {
	from, applied, err := r.store.ApplyStatus(ctx, ref, status, metadata)
	if err != nil {
		return Transition{}, err
	}

	t := Transition{From: from, To: status, Applied: applied}
	if applied {
		r.log.Info("job status updated", "job_reference", ref, "from", from, "to", status)
	} else {
		r.log.Info("job already complete, update ignored", "job_reference", ref, "status", status)
	}
	return t, nil
}
