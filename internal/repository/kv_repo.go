package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// KVStore defines the key-value store backing all persisted state:
// string keys, string values, no TTL.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// PgxIface is the subset of pgxpool.Pool the store needs; it allows the
// pool to be replaced by pgxmock in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgKVStore struct {
	db PgxIface
}

// NewPgKVStore creates a KVStore backed by the kv_entries table.
func NewPgKVStore(db PgxIface) KVStore {
	return &pgKVStore{db: db}
}

// Get retrieves the value stored under key. The second return value is
// false when the key is absent.
func (s *pgKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	sql := `SELECT value FROM kv_entries WHERE key = $1`
	err := s.db.QueryRow(ctx, sql, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil // Absent key is not an error for this contract
		}
		return "", false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, overwriting any prior value.
func (s *pgKVStore) Set(ctx context.Context, key, value string) error {
	sql := `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.db.Exec(ctx, sql, key, value); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key from the store. Removing an absent key is a no-op.
func (s *pgKVStore) Remove(ctx context.Context, key string) error {
	sql := `DELETE FROM kv_entries WHERE key = $1`
	if _, err := s.db.Exec(ctx, sql, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}
