/*
Package store defines the persistence collaborators of the chat system and
their PostgreSQL implementations.

The chat core and the HTTP handlers depend only on the UserStore and
MessageStore interfaces; tests substitute in-memory fakes.
*/
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when the requested username has no record.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUsername is returned when creating a user whose username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRecord is a registered chat identity as persisted.
type UserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	AvatarKey    string
	CreatedAt    time.Time

	// LastSeen is nil for users that have never connected.
	LastSeen *time.Time
}

// MessageRecord is a persisted chat message. Immutable once created.
type MessageRecord struct {
	ID        int64
	Content   string
	Username  string
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// Create inserts a new user with a hashed password.
	// Returns ErrDuplicateUsername on a username collision.
	Create(ctx context.Context, username, passwordHash string) (*UserRecord, error)

	// FindByUsername retrieves a user by username.
	// Returns ErrUserNotFound when no record exists.
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)

	// Exists reports whether a user record exists for the username.
	Exists(ctx context.Context, username string) (bool, error)

	// UpdateLastSeen records the given timestamp as the user's last-seen time.
	UpdateLastSeen(ctx context.Context, username string, ts time.Time) error

	// UpdateAvatar stores the storage key of the user's avatar object.
	UpdateAvatar(ctx context.Context, username, avatarKey string) error

	// ListAllUsernames returns every known username in insertion order.
	ListAllUsernames(ctx context.Context) ([]string, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// Save persists a message authored by the given user and returns the
	// stored record with its id and creation time filled in.
	Save(ctx context.Context, content, username string) (*MessageRecord, error)

	// FindRecent returns up to limit messages ordered newest-first.
	FindRecent(ctx context.Context, limit int) ([]*MessageRecord, error)
}
