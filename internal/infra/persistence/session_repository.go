package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domuser "example.com/storefront/internal/domain/user"
)

// SessionRepository stores the identity as JSON under KeyUser and the bearer
// token verbatim under KeyToken.
type SessionRepository struct {
	store Store
}

func NewSessionRepository(store Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) Load(ctx context.Context) (*domuser.Session, error) {
	rawUser, userFound, err := r.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	rawToken, tokenFound, err := r.store.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(rawToken))
	if !userFound || !tokenFound || len(rawUser) == 0 || token == "" {
		return nil, nil
	}

	var rec userRecord
	if err := json.Unmarshal(rawUser, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domuser.ErrCorruptSession, err)
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: user record has no id", domuser.ErrCorruptSession)
	}
	return &domuser.Session{User: rec.toDomain(), Token: token}, nil
}

// Save drops the previous token before writing the new identity, so a write
// that fails halfway leaves a half session that Load reports as absent.
func (r *SessionRepository) Save(ctx context.Context, s domuser.Session) error {
	rawUser, err := json.Marshal(toUserRecord(s.User))
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.store.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := r.store.Set(ctx, KeyUser, rawUser); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	if err := r.store.Set(ctx, KeyToken, []byte(s.Token)); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := r.store.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
