package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "media-transcoding-service/docs"
)

// WebhookConfig mounts the transcoding callback. Without an API key the
// route is left out.
type WebhookConfig struct {
	Handler *WebhookHandler
	APIKey  string
}

func Routes(h *Handler, wh *WebhookConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/media", func(r chi.Router) {
		r.Post("/", h.CreateMedia)
		r.Get("/{id}", h.GetMedia)
		r.Put("/{id}", h.UpdateMedia)
		r.Get("/{id}/jobs", h.ListJobs)
		r.Get("/{id}/renditions", h.ListRenditions)
	})
	r.Get("/jobs/{id}", h.GetJob)

	if wh != nil && wh.Handler != nil && wh.APIKey != "" {
		r.With(APIKeyAuth(wh.APIKey, logger)).Post("/webhooks/transcoding", wh.Handler.Handle)
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
