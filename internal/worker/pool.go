package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"media-transcoding-service/internal/service"
)

type Pool struct {
	queue      service.Queue
	processor  *Processor
	workers    int
	claimDelay time.Duration
	log        *slog.Logger
}

func NewPool(queue service.Queue, processor *Processor, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		queue:      queue,
		processor:  processor,
		workers:    workers,
		claimDelay: 5 * time.Second,
		log:        logger,
	}
}

// Run claims media ids and fans them out to the workers until ctx is done.
// It returns after every in-flight submission has finished.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info("worker pool started", "workers", p.workers)

	idCh := make(chan string)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for mediaID := range idCh {
				// the vendor call must not be cut short by shutdown
				if err := p.processor.Process(context.WithoutCancel(ctx), mediaID); err != nil {
					p.log.Error("process media", "worker", n, "media_id", mediaID, "error", err)
				}

				// ack regardless: the job row carries the outcome
				if err := p.queue.Ack(context.WithoutCancel(ctx), mediaID); err != nil {
					p.log.Error("ack media", "worker", n, "media_id", mediaID, "error", err)
				}
			}
		}(i + 1)
	}

	defer func() {
		close(idCh)
		wg.Wait()
		p.log.Info("worker pool stopped")
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		mediaID, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			continue
		}
		if err != nil {
			p.log.Error("claim media", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		select {
		case idCh <- mediaID:
		case <-ctx.Done():
			// claimed but not handed out; the reaper will put it back
			return nil
		}
	}
}

// Reap periodically returns ids whose claim is older than staleAfter to the
// queue, covering workers that died mid-submission.
func (p *Pool) Reap(ctx context.Context, every, staleAfter time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.queue.RequeueStale(ctx, staleAfter, 100)
			if err != nil {
				p.log.Error("requeue stale", "error", err)
				continue
			}
			if n > 0 {
				p.log.Info("requeued stale claims", "count", n)
			}
		}
	}
}
