/*
Package postgres provides a PostgreSQL-backed implementation of generic.Store.

PURPOSE:
  Same contract as store/sqlite: one JSONB document per logical key in a
  single table. Used when several server instances share one database.

KEY TABLE:
  holiday_documents: key TEXT PRIMARY KEY, value JSONB, updated_at TIMESTAMPTZ

CONCURRENCY:
  The pgxpool.Pool is safe for concurrent use; no extra locking.

USAGE:
  pool, err := pgxpool.New(ctx, cfg.Store.PostgresURL)
  store := postgres.NewStore(pool)
  if err := store.Migrate(ctx); err != nil { ... }

SEE ALSO:
  - generic/store.go: Interface definition
  - store/sqlite/sqlite.go: SQLite implementation
*/
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warp/holiday-planner/generic"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ generic.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to url, checks the connection and migrates the schema.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	store := NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the schema if needed.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS holiday_documents (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *Store) Load(ctx context.Context, key generic.Key) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value::text
		FROM holiday_documents
		WHERE key = $1
	`, string(key)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Save(ctx context.Context, key generic.Key, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO holiday_documents (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, string(key), string(data))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key generic.Key) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM holiday_documents WHERE key = $1`, string(key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Reset clears all documents (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM holiday_documents`)
	return err
}
