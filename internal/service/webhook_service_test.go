package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/service"
	"media-transcoding-service/internal/testsupport/memstore"
)

const completeOutputs = `[{
	"outputDetails": [{
		"outputFilePaths": ["s3://bucket/media/transcoded/test-video.mp4"],
		"durationInMs": 10500,
		"videoDetails": {"widthInPx": 1280, "heightInPx": 720, "averageBitrate": 2500000}
	}],
	"type": "FILE_GROUP"
}]`

type webhookFixture struct {
	jobs       *memstore.Jobs
	renditions *memstore.Renditions
	svc        *service.WebhookService
	job        entity.TranscodingJob
}

func newWebhookFixture(t *testing.T, status entity.JobStatus) *webhookFixture {
	t.Helper()
	jobs := memstore.NewJobs()
	renditions := memstore.NewRenditions()

	job := entity.TranscodingJob{
		ID:                   uuid.New(),
		MediaID:              uuid.New(),
		ExternalJobReference: "1700000000000-abc",
		Status:               status,
		Backend:              "mediaconvert",
	}
	jobs.Put(job)

	svc := service.NewWebhookService(
		jobs,
		service.NewReconciler(jobs, nil),
		service.NewMaterializer(renditions, nil),
		nil,
	)
	return &webhookFixture{jobs: jobs, renditions: renditions, svc: svc, job: job}
}

func (f *webhookFixture) current(t *testing.T) *entity.TranscodingJob {
	t.Helper()
	j, err := f.jobs.GetByID(context.Background(), f.job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	return j
}

func TestMapExternalStatus_Totality(t *testing.T) {
	cases := map[string]entity.JobStatus{
		"PROGRESSING": entity.StatusProgressing,
		"progressing": entity.StatusProgressing,
		"COMPLETE":    entity.StatusComplete,
		"Complete":    entity.StatusComplete,
		"ERROR":       entity.StatusFailed,
		"error":       entity.StatusFailed,
	}
	for token, want := range cases {
		got, ok := service.MapExternalStatus(token)
		if !ok || got != want {
			t.Fatalf("%s: expected %s, got %s (ok=%v)", token, want, got, ok)
		}
	}
	for _, token := range []string{"", "SUBMITTED", "CANCELED", "pending", "COMPLETED"} {
		if _, ok := service.MapExternalStatus(token); ok {
			t.Fatalf("%q must not map", token)
		}
	}
}

func TestProcess_Complete_CreatesRendition(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusPending)

	out, err := f.svc.Process(context.Background(), service.Event{
		JobID:              f.job.ExternalJobReference,
		Status:             "COMPLETE",
		OutputGroupDetails: json.RawMessage(completeOutputs),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Skipped {
		t.Fatalf("fresh completion must not be skipped")
	}
	if got := f.current(t).Status; got != entity.StatusComplete {
		t.Fatalf("expected complete, got %s", got)
	}

	rs := f.renditions.ByJob(f.job.ID)
	if len(rs) != 1 {
		t.Fatalf("expected one rendition, got %d", len(rs))
	}
	r := rs[0]
	if r.File != "media/transcoded/test-video.mp4" || r.MediaID != f.job.MediaID {
		t.Fatalf("unexpected rendition %#v", r)
	}
	if r.Width == nil || *r.Width != 1280 || r.Height == nil || *r.Height != 720 {
		t.Fatalf("unexpected dimensions %v x %v", r.Width, r.Height)
	}
	if r.Bitrate == nil || *r.Bitrate != 2500000 {
		t.Fatalf("unexpected bitrate %v", r.Bitrate)
	}
	if r.Duration != 10.5 {
		t.Fatalf("expected duration 10.5, got %v", r.Duration)
	}

	var meta []map[string]any
	if err := json.Unmarshal(f.current(t).Metadata, &meta); err != nil || len(meta) != 1 {
		t.Fatalf("expected outputDetails stored as metadata, got %s", f.current(t).Metadata)
	}
}

func TestProcess_Complete_WithoutVideoDetails(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusProgressing)

	_, err := f.svc.Process(context.Background(), service.Event{
		JobID:  f.job.ExternalJobReference,
		Status: "COMPLETE",
		OutputGroupDetails: json.RawMessage(`[{"outputDetails": [{
			"outputFilePaths": ["s3://bucket/media/transcoded/test-video.mp4"],
			"durationInMs": 10500
		}]}]`),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	rs := f.renditions.ByJob(f.job.ID)
	if len(rs) != 1 {
		t.Fatalf("expected one rendition, got %d", len(rs))
	}
	if rs[0].Width != nil || rs[0].Height != nil || rs[0].Bitrate != nil {
		t.Fatalf("expected nil video attributes, got %#v", rs[0])
	}
	if rs[0].Duration != 10.5 {
		t.Fatalf("expected duration 10.5, got %v", rs[0].Duration)
	}
}

func TestProcess_Complete_AbsentDurationIsZero(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusProgressing)

	_, err := f.svc.Process(context.Background(), service.Event{
		JobID:              f.job.ExternalJobReference,
		Status:             "COMPLETE",
		OutputGroupDetails: json.RawMessage(`[{"outputDetails": [{"outputFilePaths": ["s3://bucket/a/b.webm"]}]}]`),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rs := f.renditions.ByJob(f.job.ID)
	if len(rs) != 1 || rs[0].Duration != 0 || rs[0].File != "a/b.webm" {
		t.Fatalf("unexpected renditions %#v", rs)
	}
}

func TestProcess_TerminalIdempotence(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusPending)
	ctx := context.Background()

	complete := service.Event{
		JobID:              f.job.ExternalJobReference,
		Status:             "COMPLETE",
		OutputGroupDetails: json.RawMessage(completeOutputs),
	}
	if _, err := f.svc.Process(ctx, complete); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	after := f.current(t)

	deliveries := []service.Event{
		complete,
		complete,
		{JobID: f.job.ExternalJobReference, Status: "PROGRESSING"},
		{JobID: f.job.ExternalJobReference, Status: "ERROR"},
		{JobID: f.job.ExternalJobReference, Status: "COMPLETE"},
	}
	for i, ev := range deliveries {
		out, err := f.svc.Process(ctx, ev)
		if err != nil {
			t.Fatalf("delivery %d: expected nil error, got %v", i, err)
		}
		if !out.Skipped {
			t.Fatalf("delivery %d: expected skip", i)
		}
	}

	now := f.current(t)
	if now.Status != entity.StatusComplete || !now.UpdatedAt.Equal(after.UpdatedAt) || string(now.Metadata) != string(after.Metadata) {
		t.Fatalf("complete job mutated: before=%#v after=%#v", after, now)
	}
	if n := len(f.renditions.ByJob(f.job.ID)); n != 1 {
		t.Fatalf("expected exactly one rendition, got %d", n)
	}
}

func TestProcess_NonTerminalOverwrites(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusPending)
	ctx := context.Background()

	if _, err := f.svc.Process(ctx, service.Event{JobID: f.job.ExternalJobReference, Status: "progressing"}); err != nil {
		t.Fatalf("progressing: %v", err)
	}
	if got := f.current(t).Status; got != entity.StatusProgressing {
		t.Fatalf("expected progressing, got %s", got)
	}

	_, err := f.svc.Process(ctx, service.Event{
		JobID:        f.job.ExternalJobReference,
		Status:       "ERROR",
		ErrorCode:    json.RawMessage(`1030`),
		ErrorMessage: "Video codec not supported",
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	j := f.current(t)
	if j.Status != entity.StatusFailed {
		t.Fatalf("expected failed, got %s", j.Status)
	}
	var meta map[string]any
	_ = json.Unmarshal(j.Metadata, &meta)
	if meta["errorMessage"] != "Video codec not supported" || meta["errorCode"] != float64(1030) {
		t.Fatalf("unexpected failure metadata %s", j.Metadata)
	}
	if len(f.renditions.ByJob(f.job.ID)) != 0 {
		t.Fatalf("no rendition expected for failed job")
	}
}

func TestProcess_Rejections(t *testing.T) {
	cases := []struct {
		name string
		ev   service.Event
		want error
	}{
		{"unknown job", service.Event{JobID: "nope", Status: "COMPLETE"}, service.ErrJobNotFound},
		{"invalid status", service.Event{JobID: "1700000000000-abc", Status: "SUBMITTED"}, service.ErrInvalidStatus},
		{"complete without outputs", service.Event{JobID: "1700000000000-abc", Status: "COMPLETE"}, service.ErrMissingOutputDetails},
		{"complete with empty groups", service.Event{JobID: "1700000000000-abc", Status: "COMPLETE", OutputGroupDetails: json.RawMessage(`[]`)}, service.ErrMissingOutputDetails},
		{"complete without outputDetails", service.Event{JobID: "1700000000000-abc", Status: "COMPLETE", OutputGroupDetails: json.RawMessage(`[{"type":"FILE_GROUP"}]`)}, service.ErrMissingOutputDetails},
		{"complete with malformed outputs", service.Event{JobID: "1700000000000-abc", Status: "COMPLETE", OutputGroupDetails: json.RawMessage(`[{"outputDetails":"x"}]`)}, service.ErrMissingOutputDetails},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newWebhookFixture(t, entity.StatusProgressing)
			_, err := f.svc.Process(context.Background(), tc.ev)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if got := f.current(t).Status; got != entity.StatusProgressing {
				t.Fatalf("rejected delivery mutated job to %s", got)
			}
		})
	}
}

func TestProcess_AlreadyCompleteSkipsBeforeOutputCheck(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusComplete)

	out, err := f.svc.Process(context.Background(), service.Event{JobID: f.job.ExternalJobReference, Status: "COMPLETE"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !out.Skipped {
		t.Fatalf("expected skip for complete job")
	}
}

func TestProcess_MalformedPathKeepsStatus(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusProgressing)

	out, err := f.svc.Process(context.Background(), service.Event{
		JobID:              f.job.ExternalJobReference,
		Status:             "COMPLETE",
		OutputGroupDetails: json.RawMessage(`[{"outputDetails": [{"outputFilePaths": ["not-a-path"], "durationInMs": 100}]}]`),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Rendition != nil || len(f.renditions.ByJob(f.job.ID)) != 0 {
		t.Fatalf("no rendition expected for malformed path")
	}
	if got := f.current(t).Status; got != entity.StatusComplete {
		t.Fatalf("status must still be complete, got %s", got)
	}
}

func TestProcess_RenditionStoreFailureKeepsStatus(t *testing.T) {
	f := newWebhookFixture(t, entity.StatusProgressing)
	f.renditions.Err = errors.New("db down")

	_, err := f.svc.Process(context.Background(), service.Event{
		JobID:              f.job.ExternalJobReference,
		Status:             "COMPLETE",
		OutputGroupDetails: json.RawMessage(completeOutputs),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := f.current(t).Status; got != entity.StatusComplete {
		t.Fatalf("status must still be complete, got %s", got)
	}
}

func TestStorageKey(t *testing.T) {
	good := map[string]string{
		"s3://bucket/media/transcoded/test-video.mp4": "media/transcoded/test-video.mp4",
		"s3://bucket/file.webm":                       "file.webm",
		"gs://other/a/b/c":                            "a/b/c",
	}
	for in, want := range good {
		got, err := service.StorageKey(in)
		if err != nil || got != want {
			t.Fatalf("%s: expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	for _, in := range []string{"", "s3://bucket", "s3://bucket/", "bucket/key/x", "s3:/bucket/key", "://bucket/key"} {
		if _, err := service.StorageKey(in); !errors.Is(err, service.ErrMalformedOutputPath) {
			t.Fatalf("%q: expected ErrMalformedOutputPath, got %v", in, err)
		}
	}
}
