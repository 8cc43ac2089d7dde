package persistence

import (
	"context"
	"io"
)

// Keys under which the storefront state is persisted. The session is split
// across KeyUser and KeyToken and the two are written independently.
const (
	KeyUser  = "user"
	KeyToken = "token"
	KeyCart  = "cart"
)

// Store is durable key-value storage. Get reports a missing key with
// found == false rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Backend is a Store that owns a connection.
type Backend interface {
	Store
	io.Closer
}
