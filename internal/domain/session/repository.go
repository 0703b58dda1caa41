package session

import (
	"context"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
)

// UserRecord is a user row with its password hash.
type UserRecord struct {
	api.User
	PasswordHash string
}

type Repository interface {
	// CreateUser returns ErrEmailTaken when the email is already registered.
	CreateUser(ctx context.Context, u *UserRecord) error

	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)

	GetUser(ctx context.Context, userID string) (*api.User, error)
}

type Registry interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type PassReader interface {
	Current(ctx context.Context, userID string) (*api.Pass, error)
}
