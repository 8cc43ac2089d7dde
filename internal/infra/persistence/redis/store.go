package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Store keeps storefront entries in Redis under a key namespace.
type Store struct {
	store     cmdable
	raw       *redis.Client
	namespace string
}

// Open parses url (redis://...), verifies connectivity and namespaces every
// key with namespace.
func Open(ctx context.Context, url, namespace string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{store: raw, raw: raw, namespace: namespace}, nil
}

func (s *Store) key(k string) string {
	ns := strings.TrimSpace(s.namespace)
	if ns == "" {
		return k
	}
	return ns + ":" + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.store.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.store.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.store.Del(ctx, s.key(key)).Err()
}

func (s *Store) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
