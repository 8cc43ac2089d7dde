package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// KVStore keeps storefront entries in a MySQL table.
type KVStore struct {
	db *sql.DB
}

// Open connects with dsn (go-sql-driver format) and makes sure the table exists.
func Open(ctx context.Context, dsn string) (*KVStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	store := NewKVStore(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (r *KVStore) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS kv_entries (
            entry_key   VARCHAR(191) NOT NULL PRIMARY KEY,
            entry_value LONGBLOB NOT NULL,
            updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return fmt.Errorf("migrate kv_entries: %w", err)
	}
	return nil
}

func (r *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `
        SELECT entry_value
        FROM kv_entries
        WHERE entry_key = ?
    `, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO kv_entries (entry_key, entry_value)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE entry_value = VALUES(entry_value)
    `, key, value)
	return err
}

func (r *KVStore) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE entry_key = ?`, key)
	return err
}

func (r *KVStore) Close() error {
	return r.db.Close()
}
