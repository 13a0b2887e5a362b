package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue carries ids of committed media rows from the API to the submission
// workers.
type Queue interface {
	Enqueue(ctx context.Context, mediaID string) error
	ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error)
	Ack(ctx context.Context, mediaID string) error
	RequeueStale(ctx context.Context, olderThan time.Duration, max int64) (int64, error)
}

// redisQueue is a reliable list queue.
// Claim: BRPOPLPUSH queue -> processing, claim time stored in claimsKey hash
// Ack:   LREM from processing + HDEL claim
// Stale: claims older than a cut-off are pushed back onto the queue
type redisQueue struct {
	rdb           *redis.Client
	queueKey      string
	processingKey string
	claimsKey     string
	now           func() time.Time
}

func NewRedisQueue(rdb *redis.Client, queueKey, processingKey string) Queue {
	return &redisQueue{
		rdb:           rdb,
		queueKey:      queueKey,
		processingKey: processingKey,
		claimsKey:     processingKey + ":claims",
		now:           time.Now,
	}
}

func (q *redisQueue) Enqueue(ctx context.Context, mediaID string) error {
	return q.rdb.LPush(ctx, q.queueKey, mediaID).Err()
}

// ClaimBlocking waits up to timeout for an id. redis.Nil means nothing arrived.
func (q *redisQueue) ClaimBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	id, err := q.rdb.BRPopLPush(ctx, q.queueKey, q.processingKey, timeout).Result()
	if err != nil {
		return "", err
	}
	claimedAt := strconv.FormatInt(q.now().UnixMilli(), 10)
	// a missing claim time only makes the reaper requeue the id early
	_ = q.rdb.HSet(ctx, q.claimsKey, id, claimedAt).Err()
	return id, nil
}

func (q *redisQueue) Ack(ctx context.Context, mediaID string) error {
	if err := q.rdb.LRem(ctx, q.processingKey, 1, mediaID).Err(); err != nil {
		return err
	}
	_ = q.rdb.HDel(ctx, q.claimsKey, mediaID).Err()
	return nil
}

// RequeueStale moves claims older than olderThan back onto the queue, at most
// max per call. At-least-once: a slow worker may see its id twice, which the
// active-job guard absorbs.
func (q *redisQueue) RequeueStale(ctx context.Context, olderThan time.Duration, max int64) (int64, error) {
	ids, err := q.rdb.LRange(ctx, q.processingKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	cutoff := q.now().Add(-olderThan).UnixMilli()
	var moved int64
	for _, id := range ids {
		if moved >= max {
			break
		}

		claimed, err := q.rdb.HGet(ctx, q.claimsKey, id).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return moved, err
		}
		if err == nil && claimed > cutoff {
			continue
		}

		_, err = q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.LRem(ctx, q.processingKey, 1, id)
			p.LPush(ctx, q.queueKey, id)
			p.HDel(ctx, q.claimsKey, id)
			return nil
		})
		if err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
