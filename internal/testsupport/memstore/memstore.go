// Package memstore holds in-memory stand-ins for the postgres repositories.
// They mirror the repository semantics (sentinel errors, the active-job
// constraint, the complete-job guard) closely enough for service and
// transport tests.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/repository/postgresql"
)

type Jobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.TranscodingJob
	seq  int
}

func NewJobs() *Jobs {
	return &Jobs{jobs: map[uuid.UUID]*entity.TranscodingJob{}}
}

// Put stores a copy of job as is. Tests use it to seed state.
func (s *Jobs) Put(job entity.TranscodingJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Unix(int64(s.seq), 0).UTC()
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}
	s.jobs[job.ID] = &job
}

func (s *Jobs) CreatePending(ctx context.Context, mediaID uuid.UUID) (*entity.TranscodingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.MediaID == mediaID && j.Status.Active() {
			return nil, postgresql.ErrActiveJobExists
		}
	}
	s.seq++
	now := time.Unix(int64(s.seq), 0).UTC()
	j := &entity.TranscodingJob{
		ID:        uuid.New(),
		MediaID:   mediaID,
		Status:    entity.StatusPending,
		Metadata:  json.RawMessage(`{}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[j.ID] = j
	cp := *j
	return &cp, nil
}

func (s *Jobs) MarkStarted(ctx context.Context, id uuid.UUID, ref, backendName string, metadata json.RawMessage) error {
	return s.update(id, func(j *entity.TranscodingJob) {
		j.ExternalJobReference = ref
		j.Backend = backendName
		j.Metadata = metadata
	})
}

func (s *Jobs) MarkFailed(ctx context.Context, id uuid.UUID, metadata json.RawMessage) error {
	return s.update(id, func(j *entity.TranscodingJob) {
		j.Status = entity.StatusFailed
		j.Metadata = metadata
	})
}

func (s *Jobs) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return postgresql.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *Jobs) GetByID(ctx context.Context, id uuid.UUID) (*entity.TranscodingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, postgresql.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *Jobs) GetByExternalReference(ctx context.Context, ref string) (*entity.TranscodingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.byRef(ref)
	if j == nil {
		return nil, postgresql.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *Jobs) ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]entity.TranscodingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.TranscodingJob
	for _, j := range s.jobs {
		if j.MediaID == mediaID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

func (s *Jobs) ApplyStatus(ctx context.Context, ref string, status entity.JobStatus, metadata json.RawMessage) (entity.JobStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.byRef(ref)
	if j == nil {
		return "", false, postgresql.ErrNotFound
	}
	prev := j.Status
	if prev == entity.StatusComplete {
		return prev, false, nil
	}
	j.Status = status
	j.Metadata = metadata
	j.UpdatedAt = j.UpdatedAt.Add(time.Second)
	return prev, true, nil
}

// All returns copies of every stored job.
func (s *Jobs) All() []entity.TranscodingJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.TranscodingJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

func (s *Jobs) byRef(ref string) *entity.TranscodingJob {
	if ref == "" {
		return nil
	}
	var found *entity.TranscodingJob
	for _, j := range s.jobs {
		if j.ExternalJobReference == ref && (found == nil || j.CreatedAt.After(found.CreatedAt)) {
			found = j
		}
	}
	return found
}

func (s *Jobs) update(id uuid.UUID, fn func(*entity.TranscodingJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return postgresql.ErrNotFound
	}
	fn(j)
	j.UpdatedAt = j.UpdatedAt.Add(time.Second)
	return nil
}

type Media struct {
	mu    sync.Mutex
	media map[uuid.UUID]*entity.MediaAsset
}

func NewMedia() *Media {
	return &Media{media: map[uuid.UUID]*entity.MediaAsset{}}
}

func (s *Media) Create(ctx context.Context, kind entity.MediaKind, file string) (*entity.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	m := &entity.MediaAsset{ID: uuid.New(), Kind: kind, File: file, CreatedAt: now, UpdatedAt: now}
	s.media[m.ID] = m
	cp := *m
	return &cp, nil
}

func (s *Media) Update(ctx context.Context, id uuid.UUID, kind entity.MediaKind, file string) (*entity.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	if !ok {
		return nil, postgresql.ErrNotFound
	}
	m.Kind, m.File, m.UpdatedAt = kind, file, time.Now().UTC()
	cp := *m
	return &cp, nil
}

func (s *Media) GetByID(ctx context.Context, id uuid.UUID) (*entity.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	if !ok {
		return nil, postgresql.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

type Renditions struct {
	mu   sync.Mutex
	list []entity.Rendition
	Err  error
}

func NewRenditions() *Renditions { return &Renditions{} }

func (s *Renditions) Create(ctx context.Context, r *entity.Rendition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	s.list = append(s.list, *r)
	return nil
}

func (s *Renditions) ListByMedia(ctx context.Context, mediaID uuid.UUID) ([]entity.Rendition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Rendition
	for _, r := range s.list {
		if r.MediaID == mediaID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Renditions) ByJob(jobID uuid.UUID) []entity.Rendition {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Rendition
	for _, r := range s.list {
		if r.TranscodingJobID == jobID {
			out = append(out, r)
		}
	}
	return out
}
