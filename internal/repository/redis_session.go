package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// sessionKeyPrefix namespaces session tokens in Redis. The full key for a
// token T is "auth_T".
const sessionKeyPrefix = "auth_"

// RedisSessionRepository implements domain.SessionRepository using Redis
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis session repository
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
	}
}

// Create stores a token -> userID binding with the given TTL
func (r *RedisSessionRepository) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "session.Create",
		trace.WithAttributes(attribute.Int64("session.ttl_seconds", int64(ttl.Seconds()))),
	)
	defer span.End()

	if err := r.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetUserID resolves a token to its user id
func (r *RedisSessionRepository) GetUserID(ctx context.Context, token string) (string, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "session.Get")
	defer span.End()

	userID, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("session.result", "miss"))
			return "", domain.ErrUnauthorized
		}
		span.RecordError(err)
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	span.SetAttributes(attribute.String("session.result", "hit"))
	return userID, nil
}

// Delete removes a token binding
func (r *RedisSessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
