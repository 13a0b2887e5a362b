package postgresql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-transcoding-service/internal/entity"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrActiveJobExists = errors.New("active transcoding job exists")
)

const jobColumns = `id, media_id, external_job_reference, status, backend, metadata, created_at, updated_at`

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// CreatePending inserts a pending job unless the media already has an active
// one, in which case it returns ErrActiveJobExists. The check and the insert
// are a single statement against the partial unique index.
func (r *JobRepository) CreatePending(ctx context.Context, mediaID uuid.UUID) (*entity.TranscodingJob, error) {
	const q = `
INSERT INTO transcoding_jobs (media_id, status)
VALUES ($1, 'pending')
ON CONFLICT (media_id) WHERE status IN ('pending', 'progressing') DO NOTHING
RETURNING ` + jobColumns + `;
`
	job, err := scanJob(r.pool.QueryRow(ctx, q, mediaID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrActiveJobExists
	}
	return job, err
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.TranscodingJob, error) {
	q := `SELECT ` + jobColumns + ` FROM transcoding_jobs WHERE id = $1;`
	return scanJob(r.pool.QueryRow(ctx, q, id))
}

func (r *JobRepository) GetByExternalReference(ctx context.Context, ref string) (*entity.TranscodingJob, error) {
	if ref == "" {
		return nil, ErrNotFound
	}
	q := `SELECT ` + jobColumns + ` FROM transcoding_jobs WHERE external_job_reference = $1 ORDER BY created_at DESC LIMIT 1;`
	return scanJob(r.pool.QueryRow(ctx, q, ref))
}

func (r *JobRepository) ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]entity.TranscodingJob, error) {
	q := `SELECT ` + jobColumns + ` FROM transcoding_jobs WHERE media_id = $1 ORDER BY created_at;`

	rows, err := r.pool.Query(ctx, q, mediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []entity.TranscodingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *JobRepository) MarkStarted(ctx context.Context, id uuid.UUID, ref, backendName string, metadata json.RawMessage) error {
	const q = `
UPDATE transcoding_jobs
SET external_job_reference = $2, backend = $3, metadata = $4, updated_at = now()
WHERE id = $1;
`
	return r.exec(ctx, q, id, ref, backendName, orEmptyObject(metadata))
}

func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, metadata json.RawMessage) error {
	const q = `UPDATE transcoding_jobs SET status = 'failed', metadata = $2, updated_at = now() WHERE id = $1;`
	return r.exec(ctx, q, id, orEmptyObject(metadata))
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM transcoding_jobs WHERE id = $1;`, id)
}

// ApplyStatus overwrites status and metadata of the job identified by the
// external reference, unless that job is already complete. The row is read
// under FOR UPDATE in the same statement, so two deliveries racing on one job
// serialize and at most one of them sees the transition into complete.
// It returns the status the row had before the write and whether it was written.
func (r *JobRepository) ApplyStatus(ctx context.Context, ref string, status entity.JobStatus, metadata json.RawMessage) (entity.JobStatus, bool, error) {
	const q = `
WITH prev AS (
    SELECT id, status FROM transcoding_jobs
    WHERE external_job_reference = $1
    ORDER BY created_at DESC
    LIMIT 1
    FOR UPDATE
)
UPDATE transcoding_jobs j
SET status = $2, metadata = $3, updated_at = now()
FROM prev
WHERE j.id = prev.id AND prev.status <> 'complete'
RETURNING prev.status;
`
	var prevText string
	err := r.pool.QueryRow(ctx, q, ref, string(status), orEmptyObject(metadata)).Scan(&prevText)
	if err == nil {
		return entity.JobStatus(prevText), true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}

	// nothing written: either unknown or already complete
	job, err := r.GetByExternalReference(ctx, ref)
	if err != nil {
		return "", false, err
	}
	return job.Status, false, nil
}

func (r *JobRepository) exec(ctx context.Context, q string, args ...any) error {
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*entity.TranscodingJob, error) {
	var (
		job        entity.TranscodingJob
		statusText string
		metaBytes  []byte
	)
	if err := row.Scan(
		&job.ID,
		&job.MediaID,
		&job.ExternalJobReference,
		&statusText,
		&job.Backend,
		&metaBytes,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	job.Status = entity.JobStatus(statusText)
	if len(metaBytes) > 0 {
		job.Metadata = json.RawMessage(metaBytes)
	}
	return &job, nil
}

func orEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}
