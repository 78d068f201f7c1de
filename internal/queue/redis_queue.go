package queue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/blackbeanteam/lease-analysis-back/internal/common"
)

const pendingKey = "lease:jobs:queue"

// RedisQueue is a FIFO list of pending job IDs shared by all handler
// invocations. LPOP with a count keeps concurrent pops disjoint without any
// application-level locking.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: pendingKey}
}

func (q *RedisQueue) Push(ctx context.Context, jobID string) error {
	if err := q.client.RPush(ctx, q.key, jobID).Err(); err != nil {
		return common.WrapStoreUnavailable("push pending job", err)
	}
	slog.Info("job queued", "job_id", jobID)
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context, max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}
	ids, err := q.client.LPopCount(ctx, q.key, max).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapStoreUnavailable("pop pending jobs", err)
	}
	slog.Info("jobs popped", "count", len(ids))
	return ids, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, common.WrapStoreUnavailable("pending queue length", err)
	}
	return n, nil
}
