package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	domuser "example.com/storefront/internal/domain/user"
	"example.com/storefront/pkg/logger"
)

// Account is the identity the storefront API returns on login or register.
type Account struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Role      domuser.Role
	CreatedAt time.Time
}

type Credentials struct {
	Token   string
	Account Account
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Phone           string `json:"phone" validate:"required,numeric,len=10"`
	Address         string `json:"address" validate:"required"`
	Answer          string `json:"answer" validate:"required"`
}

// Gateway is the remote authentication API.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, in RegisterInput) (*Credentials, error)
	ForgotPassword(ctx context.Context, phone, newPassword string) (string, error)
}

type TokenInspector interface {
	ExpiresAt(token string) (time.Time, bool)
}

// Service owns the process-wide session. The user and token are always
// present together or absent together, in memory and in storage.
type Service struct {
	mu       sync.Mutex
	session  *domuser.Session
	repo     domuser.SessionRepository
	gateway  Gateway
	tokens   TokenInspector
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
}

// NewService restores any stored session. An undecodable stored session is
// discarded with a warning; a failing store is an error.
func NewService(
	ctx context.Context,
	repo domuser.SessionRepository,
	gateway Gateway,
	tokens TokenInspector,
	log *logger.Logger,
) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		repo:     repo,
		gateway:  gateway,
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}

	stored, err := repo.Load(ctx)
	switch {
	case errors.Is(err, domuser.ErrCorruptSession):
		log.Warn(log.WithField(ctx, "error", err.Error()), "discarding stored session")
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	case stored.Valid():
		restored := *stored
		s.session = &restored
	}
	return s, nil
}

// Login sends the email exactly as entered; the API decides how to match it.
func (s *Service) Login(ctx context.Context, email, password string) (*domuser.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domuser.ErrValidation)
	}

	creds, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, creds)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domuser.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", domuser.ErrValidation, describe(err))
	}

	creds, err := s.gateway.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, creds)
}

// ForgotPassword asks the API to reset the password of the account
// registered with phone. The current session is left alone.
func (s *Service) ForgotPassword(ctx context.Context, phone, newPassword string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || newPassword == "" {
		return "", fmt.Errorf("%w: phone and new password are required", domuser.ErrValidation)
	}
	return s.gateway.ForgotPassword(ctx, phone, newPassword)
}

// Logout clears the session. Memory is cleared even when storage fails.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("%w: %w", domuser.ErrPersistSession, err)
	}
	return nil
}

// UpdateProfile merges the update into the signed-in user and persists it.
// Without a session it does nothing.
func (s *Service) UpdateProfile(ctx context.Context, update domuser.ProfileUpdate) (*domuser.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	next := domuser.Session{User: update.Apply(s.session.User), Token: s.session.Token}
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("%w: %w", domuser.ErrPersistSession, err)
	}
	s.session = &next
	u := next.User
	return &u, nil
}

// Session returns a copy of the current session, or nil.
func (s *Service) Session() *domuser.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *Service) User() *domuser.User {
	if sess := s.Session(); sess != nil {
		return &sess.User
	}
	return nil
}

func (s *Service) Token() string {
	if sess := s.Session(); sess != nil {
		return sess.Token
	}
	return ""
}

func (s *Service) IsAuthenticated() bool {
	return s.Session() != nil
}

func (s *Service) IsAdmin() bool {
	sess := s.Session()
	return sess != nil && sess.User.IsAdmin
}

func (s *Service) RequireSession() (domuser.Session, error) {
	sess := s.Session()
	if sess == nil {
		return domuser.Session{}, domuser.ErrAuthRequired
	}
	return *sess, nil
}

// RequireAdmin is the one check every admin-only operation goes through.
func (s *Service) RequireAdmin() (domuser.Session, error) {
	sess, err := s.RequireSession()
	if err != nil {
		return domuser.Session{}, err
	}
	if !sess.User.IsAdmin {
		return domuser.Session{}, domuser.ErrAdminRequired
	}
	return sess, nil
}

// AsAdmin runs fn with the admin's bearer token, or returns the guard error
// without calling fn.
func (s *Service) AsAdmin(fn func(token string) error) error {
	sess, err := s.RequireAdmin()
	if err != nil {
		return err
	}
	return fn(sess.Token)
}

// TokenExpiry reads the expiry claim of the current token. It is only
// informational; an expired token still counts as signed in.
func (s *Service) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" || s.tokens == nil {
		return time.Time{}, false
	}
	return s.tokens.ExpiresAt(token)
}

func (s *Service) establish(ctx context.Context, creds *Credentials) (*domuser.Session, error) {
	if creds == nil || strings.TrimSpace(creds.Token) == "" || creds.Account.ID == "" {
		return nil, domuser.ErrInvalidResponse
	}

	acct := creds.Account
	created := acct.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	next := domuser.Session{
		User: domuser.User{
			ID:        acct.ID,
			Email:     acct.Email,
			FullName:  acct.Name,
			Phone:     acct.Phone,
			Address:   acct.Address,
			IsAdmin:   acct.Role.IsAdmin(),
			CreatedAt: created,
		},
		Token: creds.Token,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("%w: %w", domuser.ErrPersistSession, err)
	}
	s.session = &next

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"user_id": next.User.ID,
		"role":    acct.Role.String(),
	}), "session established")

	out := next
	return &out, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
