package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a registered or anonymous account. Username and Email are unique
// across all users. Anonymous users have no password hash.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Admin        bool
	Active       bool
	Anonymous    bool
	CreatedAt    time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	// GetByLogin looks a user up by username or email.
	GetByLogin(ctx context.Context, login string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
