package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists contacts and their messages in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id              uuid PRIMARY KEY,
	label           text NOT NULL UNIQUE,
	handle          text,
	style_embedding double precision[],
	updated_at      timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	contact_id uuid NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	position   integer NOT NULL,
	id         uuid NOT NULL,
	sent_at    timestamptz NOT NULL,
	sender     text NOT NULL,
	body       text NOT NULL,
	PRIMARY KEY (contact_id, position)
);
`

// EnsureSchema creates the contacts and messages tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
