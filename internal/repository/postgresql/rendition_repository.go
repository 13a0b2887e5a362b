package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-transcoding-service/internal/entity"
)

type RenditionRepository struct {
	pool *pgxpool.Pool
}

func NewRenditionRepository(pool *pgxpool.Pool) *RenditionRepository {
	return &RenditionRepository{pool: pool}
}

func (r *RenditionRepository) Create(ctx context.Context, rd *entity.Rendition) error {
	const q = `
INSERT INTO renditions (media_id, transcoding_job_id, file, width, height, duration, bitrate)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at;
`
	return r.pool.QueryRow(ctx, q,
		rd.MediaID,
		rd.TranscodingJobID,
		rd.File,
		rd.Width,
		rd.Height,
		rd.Duration,
		rd.Bitrate,
	).Scan(&rd.ID, &rd.CreatedAt)
}

func (r *RenditionRepository) ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]entity.Rendition, error) {
	const q = `
SELECT id, media_id, transcoding_job_id, file, width, height, duration, bitrate, created_at
FROM renditions
WHERE media_id = $1
ORDER BY created_at;
`
	rows, err := r.pool.Query(ctx, q, mediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Rendition
	for rows.Next() {
		var rd entity.Rendition
		if err := rows.Scan(
			&rd.ID,
			&rd.MediaID,
			&rd.TranscodingJobID,
			&rd.File,
			&rd.Width,
			&rd.Height,
			&rd.Duration,
			&rd.Bitrate,
			&rd.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}
