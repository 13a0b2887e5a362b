package postgresql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"media-transcoding-service/internal/entity"
)

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

func (r *MediaRepository) Create(ctx context.Context, kind entity.MediaKind, file string) (*entity.MediaAsset, error) {
	const q = `
INSERT INTO media (kind, file)
VALUES ($1, $2)
RETURNING id, kind, file, created_at, updated_at;
`
	return scanMedia(r.pool.QueryRow(ctx, q, string(kind), file))
}

func (r *MediaRepository) Update(ctx context.Context, id uuid.UUID, kind entity.MediaKind, file string) (*entity.MediaAsset, error) {
	const q = `
UPDATE media SET kind = $2, file = $3, updated_at = now()
WHERE id = $1
RETURNING id, kind, file, created_at, updated_at;
`
	return scanMedia(r.pool.QueryRow(ctx, q, id, string(kind), file))
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.MediaAsset, error) {
	const q = `SELECT id, kind, file, created_at, updated_at FROM media WHERE id = $1;`
	return scanMedia(r.pool.QueryRow(ctx, q, id))
}

func scanMedia(row pgx.Row) (*entity.MediaAsset, error) {
	var (
		m        entity.MediaAsset
		kindText string
	)
	if err := row.Scan(&m.ID, &kindText, &m.File, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.Kind = entity.MediaKind(kindText)
	return &m, nil
}
