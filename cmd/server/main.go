// cmd/server/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"media-transcoding-service/internal/config"
	"media-transcoding-service/internal/logging"
	"media-transcoding-service/internal/repository/postgresql"
	"media-transcoding-service/internal/serverutil"
	"media-transcoding-service/internal/service"
	httptransport "media-transcoding-service/internal/transport/http"
)

// @title Media Transcoding Service API
// @version 1.0
// @description Media assets, transcoding jobs and the vendor status webhook.
// @BasePath /
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
	pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("pg", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgresql.Migrate(ctx, pool); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	jobs := postgresql.NewJobRepository(pool)
	media := postgresql.NewMediaRepository(pool)
	renditions := postgresql.NewRenditionRepository(pool)

	// Redis carries submissions to cmd/worker only when transcoding is on
	var queue service.SubmissionQueue
	if cfg.Transcoding.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		queue = service.NewRedisQueue(rdb, cfg.QueueKey, cfg.ProcessingKey)
	}

	mediaSvc := service.NewMediaService(media, jobs, renditions, queue, logging.WithComponent(logger, "media"))

	var webhook *httptransport.WebhookConfig
	if cfg.Transcoding.WebhookAPIKey != "" {
		webhookSvc := service.NewWebhookService(
			jobs,
			service.NewReconciler(jobs, logging.WithComponent(logger, "reconciler")),
			service.NewMaterializer(renditions, logging.WithComponent(logger, "materializer")),
			logging.WithComponent(logger, "webhook"),
		)
		webhook = &httptransport.WebhookConfig{
			Handler: httptransport.NewWebhookHandler(webhookSvc, logging.WithComponent(logger, "webhook")),
			APIKey:  cfg.Transcoding.WebhookAPIKey,
		}
	} else {
		logger.Warn("WEBHOOK_API_KEY not set, transcoding webhook disabled")
	}

	httpLogger := logging.WithComponent(logger, "http")
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httptransport.Routes(httptransport.NewHandler(mediaSvc, httpLogger), webhook, httpLogger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("server started",
		"addr", cfg.HTTPAddr,
		"transcoding_enabled", cfg.Transcoding.Enabled,
		"webhook_enabled", webhook != nil,
		"postgres_dsn", config.RedactDSN(cfg.PostgresDSN),
	)
	if err := serverutil.Run(ctx, serverutil.Config{Server: srv, Logger: httpLogger}); err != nil {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
