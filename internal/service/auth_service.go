package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/filedepot/filedepot/internal/domain"
	"github.com/google/uuid"
)

// AuthService implements registration and token-based session management.
// Tokens are opaque UUIDs bound to a user id in the session store for the
// configured TTL.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	sessionTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new user from an email and a plaintext password
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrMissingEmail
	}
	if password == "" {
		return nil, domain.ErrMissingPassword
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: HashPassword(password),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Connect validates credentials and issues a session token
func (s *AuthService) Connect(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.ErrUnauthorized
	}

	user, err := s.users.GetByCredentials(ctx, email, HashPassword(password))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("failed to check credentials: %w", err)
	}

	token := uuid.NewString()
	if err := s.sessions.Create(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// Disconnect invalidates a session token
func (s *AuthService) Disconnect(ctx context.Context, token string) error {
	// The token must resolve before it can be revoked; otherwise the caller
	// is not authenticated at all.
	if _, err := s.Authenticate(ctx, token); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to a user id. Returns
// domain.ErrUnauthorized for empty, unknown, or expired tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	return s.sessions.GetUserID(ctx, token)
}

// CurrentUser resolves a session token to the full user record
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Session outlived the user record
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// HashPassword returns the SHA-1 hex digest of a plaintext password. The
// digest is deterministic so credentials can be matched with a single
// {email, password} store query.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
