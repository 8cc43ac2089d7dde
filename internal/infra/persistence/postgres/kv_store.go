package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore keeps storefront entries in a Postgres table.
type KVStore struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, dsn string) (*KVStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := &KVStore{pool: pool}
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (r *KVStore) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS kv_entries (
            entry_key   TEXT PRIMARY KEY,
            entry_value BYTEA NOT NULL,
            updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		return fmt.Errorf("migrate kv_entries: %w", err)
	}
	return nil
}

func (r *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT entry_value FROM kv_entries WHERE entry_key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.pool.Exec(ctx, `
        INSERT INTO kv_entries (entry_key, entry_value)
        VALUES ($1, $2)
        ON CONFLICT (entry_key) DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = now()
    `, key, value)
	return err
}

func (r *KVStore) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kv_entries WHERE entry_key = $1`, key)
	return err
}

func (r *KVStore) Close() error {
	r.pool.Close()
	return nil
}
