package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("email already in use")
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser durably stores a new user.
	// Implementations must make the email uniqueness check and the write atomic
	// and return ErrDuplicateEmail when the email is taken.
	CreateUser(ctx context.Context, user *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by exact (case-sensitive) email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore

	// Close releases the underlying storage.
	Close() error
}
