package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/repository/postgresql"
	"media-transcoding-service/internal/service"
)

type MediaAPI interface {
	CreateMedia(ctx context.Context, req service.SaveMediaRequest) (*entity.MediaAsset, error)
	UpdateMedia(ctx context.Context, id uuid.UUID, req service.SaveMediaRequest) (*entity.MediaAsset, error)
	GetMedia(ctx context.Context, id uuid.UUID) (*entity.MediaAsset, error)
	GetJob(ctx context.Context, id uuid.UUID) (*entity.TranscodingJob, error)
	ListJobs(ctx context.Context, mediaID uuid.UUID) ([]entity.TranscodingJob, error)
	ListRenditions(ctx context.Context, mediaID uuid.UUID) ([]entity.Rendition, error)
}

type Handler struct {
	svc MediaAPI
	log *slog.Logger
}

func NewHandler(svc MediaAPI, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, log: logger}
}

type saveMediaDTO struct {
	Kind string `json:"kind" example:"video"`
	File string `json:"file" example:"media/original/clip.mp4"`
}

type mediaResp struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	File      string `json:"file"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type jobResp struct {
	ID                   string           `json:"id"`
	MediaID              string           `json:"media_id"`
	ExternalJobReference string           `json:"external_job_reference,omitempty"`
	Backend              string           `json:"backend,omitempty"`
	Status               entity.JobStatus `json:"status"`
	Metadata             json.RawMessage  `json:"metadata" swaggertype:"object"`
	CreatedAt            string           `json:"created_at"`
	UpdatedAt            string           `json:"updated_at"`
}

type renditionResp struct {
	ID               string  `json:"id"`
	MediaID          string  `json:"media_id"`
	TranscodingJobID string  `json:"transcoding_job_id"`
	File             string  `json:"file"`
	Width            *int    `json:"width"`
	Height           *int    `json:"height"`
	Duration         float64 `json:"duration"`
	Bitrate          *int64  `json:"bitrate"`
	CreatedAt        string  `json:"created_at"`
}

func toMediaResp(m *entity.MediaAsset) mediaResp {
	return mediaResp{
		ID:        m.ID.String(),
		Kind:      string(m.Kind),
		File:      m.File,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}
}

func toJobResp(j entity.TranscodingJob) jobResp {
	meta := j.Metadata
	if len(meta) == 0 {
		meta = json.RawMessage(`{}`)
	}
	return jobResp{
		ID:                   j.ID.String(),
		MediaID:              j.MediaID.String(),
		ExternalJobReference: j.ExternalJobReference,
		Backend:              j.Backend,
		Status:               j.Status,
		Metadata:             meta,
		CreatedAt:            j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            j.UpdatedAt.Format(time.RFC3339),
	}
}

func toRenditionResp(r entity.Rendition) renditionResp {
	return renditionResp{
		ID:               r.ID.String(),
		MediaID:          r.MediaID.String(),
		TranscodingJobID: r.TranscodingJobID.String(),
		File:             r.File,
		Width:            r.Width,
		Height:           r.Height,
		Duration:         r.Duration,
		Bitrate:          r.Bitrate,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
}

// CreateMedia godoc
// @Summary Create a media asset
// @Description Stores the media row. Video assets are queued for transcoding once saved.
// @Tags media
// @Accept json
// @Produce json
// @Param request body saveMediaDTO true "media payload (kind: video, audio, other)"
// @Success 201 {object} mediaResp
// @Failure 400 {object} apiError
// @Failure 500 {object} apiError
// @Router /media [post]
func (h *Handler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	var dto saveMediaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	m, err := h.svc.CreateMedia(r.Context(), service.SaveMediaRequest{Kind: entity.MediaKind(dto.Kind), File: dto.File})
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMediaResp(m))
}

// UpdateMedia godoc
// @Summary Update a media asset
// @Description Replaces kind and file. Video assets are queued for transcoding once saved.
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "media id (uuid)"
// @Param request body saveMediaDTO true "media payload"
// @Success 200 {object} mediaResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /media/{id} [put]
func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var dto saveMediaDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	m, err := h.svc.UpdateMedia(r.Context(), id, service.SaveMediaRequest{Kind: entity.MediaKind(dto.Kind), File: dto.File})
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMediaResp(m))
}

// GetMedia godoc
// @Summary Get media asset by id
// @Tags media
// @Produce json
// @Param id path string true "media id (uuid)"
// @Success 200 {object} mediaResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /media/{id} [get]
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.svc.GetMedia(r.Context(), id)
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMediaResp(m))
}

// ListJobs godoc
// @Summary List transcoding jobs of a media asset
// @Tags media
// @Produce json
// @Param id path string true "media id (uuid)"
// @Success 200 {array} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /media/{id}/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	jobs, err := h.svc.ListJobs(r.Context(), id)
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	resp := make([]jobResp, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, toJobResp(j))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRenditions godoc
// @Summary List renditions of a media asset
// @Tags media
// @Produce json
// @Param id path string true "media id (uuid)"
// @Success 200 {array} renditionResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /media/{id}/renditions [get]
func (h *Handler) ListRenditions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListRenditions(r.Context(), id)
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	resp := make([]renditionResp, 0, len(list))
	for _, rd := range list {
		resp = append(resp, toRenditionResp(rd))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetJob godoc
// @Summary Get transcoding job by id
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	j, err := h.svc.GetJob(r.Context(), id)
	if err != nil {
		h.writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResp(*j))
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMedia):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, postgresql.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	default:
		h.log.Error("media api", "error", err)
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}
