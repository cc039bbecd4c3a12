package domain

import (
	"context"
	"time"
)

// User is a registered account. Users are created once and never mutated.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create saves a new user. The email must be unique across the collection.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByCredentials retrieves the user matching both email and password
	// hash. Returns ErrNotFound when no user matches.
	GetByCredentials(ctx context.Context, email, passwordHash string) (*User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)
}
