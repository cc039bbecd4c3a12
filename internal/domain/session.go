package domain

import (
	"context"
	"time"
)

// SessionRepository binds opaque tokens to user ids in an expiring store.
type SessionRepository interface {
	// Create stores a token -> userID binding with the given TTL.
	Create(ctx context.Context, token, userID string, ttl time.Duration) error

	// GetUserID resolves a token to its user id. Returns ErrUnauthorized when
	// the token is unknown or expired.
	GetUserID(ctx context.Context, token string) (string, error)

	// Delete removes a token binding. Deleting an unknown token is not an
	// error.
	Delete(ctx context.Context, token string) error
}
