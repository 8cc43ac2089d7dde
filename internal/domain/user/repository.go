package user

import "context"

// SessionRepository mirrors the session to durable storage. Load returns a
// nil session and no error when none is stored or only half of it is.
type SessionRepository interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context) error
}
