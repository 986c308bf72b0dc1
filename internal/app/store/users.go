package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"webchat/internal/app/db"
)

// PostgresUserStore implements UserStore on top of a pgx connection pool.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore constructs a UserStore backed by the given pool.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Create inserts a new user record, mapping unique violations to ErrDuplicateUsername.
func (s *PostgresUserStore) Create(ctx context.Context, username, passwordHash string) (*UserRecord, error) {
	const q = `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, avatar_key, created_at, last_seen`

	rec := &UserRecord{}
	err := s.pool.QueryRow(ctx, q, username, passwordHash).Scan(
		&rec.ID, &rec.Username, &rec.PasswordHash, &rec.AvatarKey, &rec.CreatedAt, &rec.LastSeen,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return rec, nil
}

// FindByUsername retrieves a user record by username.
func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	const q = `
		SELECT id, username, password_hash, avatar_key, created_at, last_seen
		FROM users
		WHERE username = $1`

	rec := &UserRecord{}
	err := s.pool.QueryRow(ctx, q, username).Scan(
		&rec.ID, &rec.Username, &rec.PasswordHash, &rec.AvatarKey, &rec.CreatedAt, &rec.LastSeen,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return rec, nil
}

// Exists reports whether a user record exists for the username.
func (s *PostgresUserStore) Exists(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateLastSeen records the given timestamp as the user's last-seen time.
// Updating an unknown username is a silent no-op.
func (s *PostgresUserStore) UpdateLastSeen(ctx context.Context, username string, ts time.Time) error {
	const q = `UPDATE users SET last_seen = $2 WHERE username = $1`

	_, err := s.pool.Exec(ctx, q, username, ts)
	return err
}

// UpdateAvatar stores the storage key of the user's avatar object.
func (s *PostgresUserStore) UpdateAvatar(ctx context.Context, username, avatarKey string) error {
	const q = `UPDATE users SET avatar_key = $2 WHERE username = $1`

	_, err := s.pool.Exec(ctx, q, username, avatarKey)
	return err
}

// ListAllUsernames returns every known username ordered by registration.
func (s *PostgresUserStore) ListAllUsernames(ctx context.Context) ([]string, error) {
	const q = `SELECT username FROM users ORDER BY id`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		usernames = append(usernames, name)
	}

	return usernames, rows.Err()
}
