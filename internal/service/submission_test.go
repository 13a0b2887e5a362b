package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"media-transcoding-service/internal/backend"
	"media-transcoding-service/internal/entity"
	"media-transcoding-service/internal/service"
	"media-transcoding-service/internal/testsupport/memstore"
)

// ---- fakes ----

type fakeBackend struct {
	starts  atomic.Int32
	ref     string
	err     error
	release chan struct{}
}

func (b *fakeBackend) StartTranscode(ctx context.Context, file string) (*backend.StartResult, error) {
	b.starts.Add(1)
	if b.release != nil {
		<-b.release
	}
	if b.err != nil {
		return nil, b.err
	}
	return &backend.StartResult{JobReference: b.ref, Raw: json.RawMessage(`{"Job":{"Id":"` + b.ref + `"}}`)}, nil
}

func (b *fakeBackend) StopTranscode(ctx context.Context, ref string) error {
	return backend.ErrStopNotSupported
}

func videoMedia() *entity.MediaAsset {
	return &entity.MediaAsset{ID: uuid.New(), Kind: entity.KindVideo, File: "media/original/test-video.mp4"}
}

func metadataOf(t *testing.T, j entity.TranscodingJob) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(j.Metadata, &m); err != nil {
		t.Fatalf("invalid job metadata %s: %v", j.Metadata, err)
	}
	return m
}

// ---- tests ----

func TestSubmit_SkipsNonVideo(t *testing.T) {
	jobs := memstore.NewJobs()
	be := &fakeBackend{ref: "job-1"}
	svc := service.NewSubmissionService(jobs, be, "fake", nil)

	audio := &entity.MediaAsset{ID: uuid.New(), Kind: entity.KindAudio, File: "song.mp3"}
	if err := svc.Submit(context.Background(), audio); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if be.starts.Load() != 0 || len(jobs.All()) != 0 {
		t.Fatalf("audio must not be transcoded")
	}
}

func TestSubmit_SkipsWithoutBackend(t *testing.T) {
	jobs := memstore.NewJobs()
	svc := service.NewSubmissionService(jobs, nil, "", nil)

	if svc.Enabled() {
		t.Fatalf("service without backend must report disabled")
	}
	if err := svc.Submit(context.Background(), videoMedia()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(jobs.All()) != 0 {
		t.Fatalf("no job expected without backend")
	}
}

func TestSubmit_SkipsWhenActiveJobExists(t *testing.T) {
	for _, status := range []entity.JobStatus{entity.StatusPending, entity.StatusProgressing} {
		t.Run(string(status), func(t *testing.T) {
			jobs := memstore.NewJobs()
			be := &fakeBackend{ref: "job-2"}
			svc := service.NewSubmissionService(jobs, be, "fake", nil)

			media := videoMedia()
			jobs.Put(entity.TranscodingJob{ID: uuid.New(), MediaID: media.ID, Status: status, ExternalJobReference: "job-1"})

			for i := 0; i < 3; i++ {
				if err := svc.Submit(context.Background(), media); err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
			}
			if be.starts.Load() != 0 {
				t.Fatalf("expected no start calls, got %d", be.starts.Load())
			}
			if len(jobs.All()) != 1 {
				t.Fatalf("expected the existing job only, got %d", len(jobs.All()))
			}
		})
	}
}

func TestSubmit_AllowsNewJobAfterTerminal(t *testing.T) {
	jobs := memstore.NewJobs()
	be := &fakeBackend{ref: "job-2"}
	svc := service.NewSubmissionService(jobs, be, "fake", nil)

	media := videoMedia()
	jobs.Put(entity.TranscodingJob{ID: uuid.New(), MediaID: media.ID, Status: entity.StatusFailed})

	if err := svc.Submit(context.Background(), media); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if be.starts.Load() != 1 {
		t.Fatalf("expected one start after failed job, got %d", be.starts.Load())
	}
}

func TestSubmit_ConcurrentTriggersStartOnce(t *testing.T) {
	jobs := memstore.NewJobs()
	be := &fakeBackend{ref: "job-1", release: make(chan struct{})}
	svc := service.NewSubmissionService(jobs, be, "fake", nil)
	media := videoMedia()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Submit(context.Background(), media)
		}()
	}
	close(be.release)
	wg.Wait()

	if be.starts.Load() != 1 {
		t.Fatalf("expected exactly one start call, got %d", be.starts.Load())
	}
	if len(jobs.All()) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs.All()))
	}
}

func TestSubmit_Success_RecordsReferenceAndBackend(t *testing.T) {
	jobs := memstore.NewJobs()
	be := &fakeBackend{ref: "1700000000000-abc"}
	svc := service.NewSubmissionService(jobs, be, "mediaconvert", nil)

	media := videoMedia()
	if err := svc.Submit(context.Background(), media); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	all := jobs.All()
	if len(all) != 1 {
		t.Fatalf("expected one job, got %d", len(all))
	}
	j := all[0]
	if j.Status != entity.StatusPending || j.MediaID != media.ID {
		t.Fatalf("unexpected job %#v", j)
	}
	if j.ExternalJobReference != "1700000000000-abc" || j.Backend != "mediaconvert" {
		t.Fatalf("reference/backend not recorded: %#v", j)
	}
}

func TestSubmit_TranscodingError_MarksFailedAndSwallows(t *testing.T) {
	jobs := memstore.NewJobs()
	be := &fakeBackend{err: backend.NewTranscodingError("S3UploadError", errors.New("Failed to upload file to S3"))}
	svc := service.NewSubmissionService(jobs, be, "fake", nil)

	if err := svc.Submit(context.Background(), videoMedia()); err != nil {
		t.Fatalf("transcoding errors must not propagate, got %v", err)
	}

	all := jobs.All()
	if len(all) != 1 || all[0].Status != entity.StatusFailed {
		t.Fatalf("expected one failed job, got %#v", all)
	}
	meta := metadataOf(t, all[0])
	if meta["error_type"] != "S3UploadError" || meta["error"] != "Failed to upload file to S3" {
		t.Fatalf("unexpected metadata %#v", meta)
	}
}

func TestSubmit_ConfigurationError_RollsBackAndPropagates(t *testing.T) {
	jobs := memstore.NewJobs()
	cfgErr := backend.NewConfigurationError("AWS_STORAGE_BUCKET_NAME", errors.New("required"))
	be := &fakeBackend{err: cfgErr}
	svc := service.NewSubmissionService(jobs, be, "fake", nil)

	media := videoMedia()
	err := svc.Submit(context.Background(), media)
	if !backend.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	list, _ := jobs.ListByMedia(context.Background(), media.ID)
	if len(list) != 0 {
		t.Fatalf("expected no job rows after rollback, got %#v", list)
	}
}

func TestSubmit_UnknownError_MarksFailedAndPropagates(t *testing.T) {
	jobs := memstore.NewJobs()
	boom := errors.New("boom")
	be := &fakeBackend{err: boom}
	svc := service.NewSubmissionService(jobs, be, "fake", nil)

	err := svc.Submit(context.Background(), videoMedia())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	all := jobs.All()
	if len(all) != 1 || all[0].Status != entity.StatusFailed {
		t.Fatalf("expected one failed job, got %#v", all)
	}
	meta := metadataOf(t, all[0])
	if meta["error_type"] != "unknown" || meta["error"] != "boom" {
		t.Fatalf("unexpected metadata %#v", meta)
	}
}
