package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"media-transcoding-service/internal/service"
)

const maxWebhookBody = 1 << 20

type WebhookProcessor interface {
	Process(ctx context.Context, ev service.Event) (service.Outcome, error)
}

// WebhookHandler receives vendor status callbacks. Authentication is done by
// APIKeyAuth in front of it.
type WebhookHandler struct {
	svc WebhookProcessor
	log *slog.Logger
}

func NewWebhookHandler(svc WebhookProcessor, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{svc: svc, log: logger}
}

type eventDetail struct {
	JobID              string          `json:"jobId"`
	Status             string          `json:"status"`
	OutputGroupDetails json.RawMessage `json:"outputGroupDetails"`
	ErrorCode          json.RawMessage `json:"errorCode"`
	ErrorMessage       string          `json:"errorMessage"`
}

type webhookResp struct {
	JobID     string `json:"job_id"`
	JobStatus string `json:"job_status"`
}

// Handle godoc
// @Summary Transcoding status callback
// @Description Applies a vendor job status event. Requires the X-API-Key header.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-API-Key header string true "shared webhook key"
// @Param request body object true "vendor event with a detail object"
// @Success 200 {object} webhookResp
// @Failure 400 {object} apiError
// @Failure 401 {object} apiError
// @Failure 404 {object} apiError
// @Failure 500 {object} apiError
// @Router /webhooks/transcoding [post]
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil || !json.Valid(body) {
		h.log.Warn("webhook with invalid json")
		writeErr(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.log.Warn("webhook payload is not an object")
		writeErr(w, http.StatusBadRequest, "Missing required field: detail")
		return
	}
	var detail eventDetail
	raw, ok := envelope["detail"]
	if !ok || !isObject(raw) || json.Unmarshal(raw, &detail) != nil {
		h.log.Warn("webhook without detail")
		writeErr(w, http.StatusBadRequest, "Missing required field: detail")
		return
	}

	log := h.log.With("job_reference", detail.JobID, "status_token", detail.Status)
	if detail.JobID == "" || detail.Status == "" {
		log.Warn("webhook without jobId or status")
		writeErr(w, http.StatusBadRequest, "Missing required fields: jobId and status")
		return
	}

	_, err = h.svc.Process(r.Context(), service.Event{
		JobID:              detail.JobID,
		Status:             detail.Status,
		OutputGroupDetails: detail.OutputGroupDetails,
		ErrorCode:          detail.ErrorCode,
		ErrorMessage:       detail.ErrorMessage,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, webhookResp{JobID: detail.JobID, JobStatus: detail.Status})
	case errors.Is(err, service.ErrJobNotFound):
		writeErr(w, http.StatusNotFound, "Job not found: "+detail.JobID)
	case errors.Is(err, service.ErrInvalidStatus):
		writeErr(w, http.StatusBadRequest, "Invalid status: "+detail.Status)
	case errors.Is(err, service.ErrMissingOutputDetails):
		writeErr(w, http.StatusBadRequest, service.ErrMissingOutputDetails.Error())
	default:
		log.Error("webhook processing failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
