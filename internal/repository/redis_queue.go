package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisJobQueue implements domain.JobQueue on a Redis list. Producers RPUSH
// and consumers BLPOP, giving FIFO delivery with each job handed to exactly
// one consumer. A consumer crash after BLPOP loses the in-flight job; the
// pipeline tolerates that because thumbnail generation is idempotent and
// regeneration overwrites the same derived locations.
type RedisJobQueue struct {
	client *redis.Client
	key    string
}

// NewRedisJobQueue creates a queue backed by the Redis list "queue:<name>"
func NewRedisJobQueue(client *redis.Client, name string) *RedisJobQueue {
	return &RedisJobQueue{
		client: client,
		key:    "queue:" + name,
	}
}

// Enqueue appends a job to the tail of the queue
func (q *RedisJobQueue) Enqueue(ctx context.Context, job *domain.ThumbnailJob) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "queue.Enqueue",
		trace.WithAttributes(
			attribute.String("queue.key", q.key),
			attribute.String("job.id", job.ID),
		),
	)
	defer span.End()

	data, err := json.Marshal(job)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job, returning (nil, nil) when
// the queue stayed empty
func (q *RedisJobQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.ThumbnailJob, error) {
	res, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	// BLPOP returns [key, value]
	var job domain.ThumbnailJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
