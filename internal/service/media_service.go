package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"media-transcoding-service/internal/entity"
)

var ErrInvalidMedia = errors.New("invalid media")

type MediaStore interface {
	Create(ctx context.Context, kind entity.MediaKind, file string) (*entity.MediaAsset, error)
	Update(ctx context.Context, id uuid.UUID, kind entity.MediaKind, file string) (*entity.MediaAsset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MediaAsset, error)
}

type JobReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.TranscodingJob, error)
	ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]entity.TranscodingJob, error)
}

type RenditionReader interface {
	ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]entity.Rendition, error)
}

// SubmissionQueue receives media ids once their rows are committed.
type SubmissionQueue interface {
	Enqueue(ctx context.Context, mediaID string) error
}

type MediaService struct {
	media      MediaStore
	jobs       JobReader
	renditions RenditionReader
	queue      SubmissionQueue
	log        *slog.Logger
}

// NewMediaService wires the media API. queue may be nil when transcoding is
// disabled.
func NewMediaService(media MediaStore, jobs JobReader, renditions RenditionReader, queue SubmissionQueue, logger *slog.Logger) *MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{media: media, jobs: jobs, renditions: renditions, queue: queue, log: logger}
}

type SaveMediaRequest struct {
	Kind entity.MediaKind
	File string
}

func (r SaveMediaRequest) validate() error {
	if !r.Kind.Valid() {
		return errors.Join(ErrInvalidMedia, errors.New("kind must be one of video, audio, other"))
	}
	if strings.TrimSpace(r.File) == "" {
		return errors.Join(ErrInvalidMedia, errors.New("file is required"))
	}
	return nil
}

func (s *MediaService) CreateMedia(ctx context.Context, req SaveMediaRequest) (*entity.MediaAsset, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	m, err := s.media.Create(ctx, req.Kind, req.File)
	if err != nil {
		return nil, err
	}
	s.afterSave(ctx, m)
	return m, nil
}

func (s *MediaService) UpdateMedia(ctx context.Context, id uuid.UUID, req SaveMediaRequest) (*entity.MediaAsset, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	m, err := s.media.Update(ctx, id, req.Kind, req.File)
	if err != nil {
		return nil, err
	}
	s.afterSave(ctx, m)
	return m, nil
}

// afterSave runs once the media row is committed. A failed enqueue is logged,
// never returned: saving media must not fail because of transcoding.
func (s *MediaService) afterSave(ctx context.Context, m *entity.MediaAsset) {
	if s.queue == nil || m.Kind != entity.KindVideo {
		return
	}
	if err := s.queue.Enqueue(ctx, m.ID.String()); err != nil {
		s.log.Error("enqueue transcode submission", "media_id", m.ID.String(), "error", err)
	}
}

func (s *MediaService) GetMedia(ctx context.Context, id uuid.UUID) (*entity.MediaAsset, error) {
	return s.media.GetByID(ctx, id)
}

func (s *MediaService) GetJob(ctx context.Context, id uuid.UUID) (*entity.TranscodingJob, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *MediaService) ListJobs(ctx context.Context, mediaID uuid.UUID) ([]entity.TranscodingJob, error) {
	if _, err := s.media.GetByID(ctx, mediaID); err != nil {
		return nil, err
	}
	return s.jobs.ListByMedia(ctx, mediaID)
}

func (s *MediaService) ListRenditions(ctx context.Context, mediaID uuid.UUID) ([]entity.Rendition, error) {
	if _, err := s.media.GetByID(ctx, mediaID); err != nil {
		return nil, err
	}
	return s.renditions.ListByMedia(ctx, mediaID)
}
