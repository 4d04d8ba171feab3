package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/platform/auth"
	clockport "github.com/ghumakkad/trip-share-api/internal/ports/out/clock"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/userrepo"
)

const minPasswordLen = 6

type Deps struct {
	Users  userrepo.Repository
	Tokens *auth.TokenManager
	Clock  clockport.Clock
	Log    *zap.Logger
}

type Service struct {
	users  userrepo.Repository
	tokens *auth.TokenManager
	clk    clockport.Clock
	log    *zap.Logger

	newUserID func() domain.UserID
	hash      func(string) (string, error)
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:  d.Users,
		tokens: d.Tokens,
		clk:    d.Clock,
		log:    log,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
		hash: auth.HashPassword,
	}
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		return Session{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid email", Details: map[string]any{"email": "must be a valid address"}}
	}
	if len(in.Password) < minPasswordLen {
		return Session{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid password", Details: map[string]any{"password": "must be at least 6 characters"}}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return Session{}, err
	}

	u := userrepo.User{
		ID:           s.newUserID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clk.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return Session{}, &Error{Status: 409, Code: "USER_ALREADY_EXISTS", Message: "an account with this email already exists"}
		}
		return Session{}, err
	}

	return s.session(u)
}

// SignIn verifies credentials and issues a fresh token. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return Session{}, invalidCredentials()
		}
		return Session{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return Session{}, invalidCredentials()
	}
	return s.session(u)
}

// Profile returns the stored account for the given user.
func (s *Service) Profile(ctx context.Context, id domain.UserID) (UserRow, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return UserRow{}, &Error{Status: 404, Code: "USER_NOT_FOUND", Message: "user not found"}
		}
		return UserRow{}, err
	}
	return UserRow{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}, nil
}

// ListUsers returns all registered users. Admin use only; authorization is
// enforced at the transport layer.
func (s *Service) ListUsers(ctx context.Context) ([]UserRow, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserRow, 0, len(us))
	for _, u := range us {
		out = append(out, UserRow{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt})
	}
	return out, nil
}

func (s *Service) session(u userrepo.User) (Session, error) {
	tok, err := s.tokens.Issue(auth.Actor{UserID: u.ID, Email: u.Email})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, UserID: u.ID, Email: u.Email}, nil
}

func invalidCredentials() *Error {
	return &Error{Status: 401, Code: "INVALID_CREDENTIALS", Message: "email or password is incorrect"}
}
