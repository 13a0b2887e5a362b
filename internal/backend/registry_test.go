package backend_test

import (
	"context"
	"errors"
	"testing"

	"media-transcoding-service/internal/backend"
)

type nopBackend struct{}

func (nopBackend) StartTranscode(ctx context.Context, file string) (*backend.StartResult, error) {
	return &backend.StartResult{JobReference: "job-1"}, nil
}

func (nopBackend) StopTranscode(ctx context.Context, ref string) error {
	return backend.ErrStopNotSupported
}

func TestRegistry_New_ResolvesRegisteredFactory(t *testing.T) {
	reg := backend.NewRegistry()
	reg.Register("nop", func(ctx context.Context) (backend.Backend, error) { return nopBackend{}, nil })

	b, err := reg.New(context.Background(), "nop")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	res, err := b.StartTranscode(context.Background(), "video.mp4")
	if err != nil || res.JobReference != "job-1" {
		t.Fatalf("unexpected start result %#v, err=%v", res, err)
	}
}

func TestRegistry_New_UnknownKey(t *testing.T) {
	reg := backend.NewRegistry()
	reg.Register("nop", func(ctx context.Context) (backend.Backend, error) { return nopBackend{}, nil })

	_, err := reg.New(context.Background(), "elemental")
	if !errors.Is(err, backend.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestRegistry_New_FactoryErrorKeepsKind(t *testing.T) {
	reg := backend.NewRegistry()
	reg.Register("broken", func(ctx context.Context) (backend.Backend, error) {
		return nil, backend.NewConfigurationError("BUCKET", errors.New("required"))
	})

	_, err := reg.New(context.Background(), "broken")
	if !backend.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRegistry_Register_DuplicatePanics(t *testing.T) {
	reg := backend.NewRegistry()
	f := func(ctx context.Context) (backend.Backend, error) { return nopBackend{}, nil }
	reg.Register("nop", f)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	reg.Register("nop", f)
}

func TestTranscodingError_Message(t *testing.T) {
	err := backend.NewTranscodingError("S3UploadError", errors.New("access denied"))

	var te *backend.TranscodingError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TranscodingError")
	}
	if te.Kind != "S3UploadError" || te.Message() != "access denied" {
		t.Fatalf("unexpected error fields: kind=%s msg=%s", te.Kind, te.Message())
	}
}
