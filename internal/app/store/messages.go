package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMessageStore implements MessageStore on top of a pgx connection pool.
type PostgresMessageStore struct {
	pool *pgxpool.Pool
}

// NewPostgresMessageStore constructs a MessageStore backed by the given pool.
func NewPostgresMessageStore(pool *pgxpool.Pool) *PostgresMessageStore {
	return &PostgresMessageStore{pool: pool}
}

// Save persists a message authored by the given user. The author must be a
// registered user; ErrUserNotFound is returned otherwise.
func (s *PostgresMessageStore) Save(ctx context.Context, content, username string) (*MessageRecord, error) {
	const q = `
		INSERT INTO messages (user_id, content)
		SELECT u.id, $2 FROM users u WHERE u.username = $1
		RETURNING id, content, created_at`

	rec := &MessageRecord{Username: username}
	err := s.pool.QueryRow(ctx, q, username, content).Scan(&rec.ID, &rec.Content, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return rec, nil
}

// FindRecent returns up to limit messages ordered newest-first.
func (s *PostgresMessageStore) FindRecent(ctx context.Context, limit int) ([]*MessageRecord, error) {
	const q = `
		SELECT m.id, m.content, u.username, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*MessageRecord
	for rows.Next() {
		rec := &MessageRecord{}
		if err := rows.Scan(&rec.ID, &rec.Content, &rec.Username, &rec.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, rec)
	}

	return messages, rows.Err()
}
