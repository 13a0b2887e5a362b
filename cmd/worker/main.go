// cmd/worker/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"media-transcoding-service/internal/backend"
	"media-transcoding-service/internal/backend/mediaconvert"
	"media-transcoding-service/internal/config"
	"media-transcoding-service/internal/logging"
	"media-transcoding-service/internal/repository/postgresql"
	"media-transcoding-service/internal/service"
	"media-transcoding-service/internal/storage"
	"media-transcoding-service/internal/worker"
)

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

	// Backend
	var active backend.Backend
	if cfg.Transcoding.Enabled {
		reg := backend.NewRegistry()
		mediaconvert.Register(reg, mediaconvert.Config{
			Region:   cfg.AWS.Region,
			Bucket:   cfg.AWS.Bucket,
			RoleName: cfg.AWS.MediaConvertRole,
			Endpoint: cfg.AWS.MediaConvertEndpoint,
		}, storage.NewLocalStorage(cfg.MediaRoot), logging.WithComponent(logger, "backend"))

		active, err = reg.New(ctx, cfg.Transcoding.Backend)
		if err != nil {
			logger.Error("transcoding backend", "backend", cfg.Transcoding.Backend, "error", err)
			os.Exit(1)
		}
		logger.Info("transcoding backend active", "backend", cfg.Transcoding.Backend)
	} else {
		logger.Info("no transcoding backend, submissions will be skipped")
	}

	// Postgres
	pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("pg", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// DI
	jobs := postgresql.NewJobRepository(pool)
	media := postgresql.NewMediaRepository(pool)
	queue := service.NewRedisQueue(rdb, cfg.QueueKey, cfg.ProcessingKey)

	submission := service.NewSubmissionService(jobs, active, cfg.Transcoding.Backend, logging.WithComponent(logger, "submission"))
	processor := worker.NewProcessor(media, submission, logging.WithComponent(logger, "processor"))
	workers := worker.NewPool(queue, processor, cfg.Workers, logging.WithComponent(logger, "worker"))

	logger.Info("worker started",
		"workers", cfg.Workers,
		"redis_addr", cfg.RedisAddr,
		"queue_key", cfg.QueueKey,
		"processing_key", cfg.ProcessingKey,
		"postgres_dsn", config.RedactDSN(cfg.PostgresDSN),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return workers.Run(gctx) })
	// claims older than two intervals belong to a worker that died mid-submit
	g.Go(func() error { return workers.Reap(gctx, cfg.RequeueInterval, 2*cfg.RequeueInterval) })
	if err := g.Wait(); err != nil {
		logger.Error("worker", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
