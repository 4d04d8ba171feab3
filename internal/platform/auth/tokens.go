package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated identity attached to every request.
type Actor struct {
	UserID domain.UserID
	Email  string
}

// TokenManager issues and verifies HS256 access tokens carrying the user id
// and email, the only identity facts the core operations consume.
type TokenManager struct {
	secret []byte
	expiry time.Duration

	now func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetNowForTest overrides the time source for deterministic expiry tests.
func (m *TokenManager) SetNowForTest(fn func() time.Time) {
	if fn != nil {
		m.now = fn
	}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (m *TokenManager) Issue(a Actor) (string, error) {
	now := m.now()
	c := claims{
		Email: a.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(a.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *TokenManager) Verify(raw string) (Actor, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || c.Subject == "" {
		return Actor{}, ErrInvalidToken
	}
	return Actor{UserID: domain.UserID(c.Subject), Email: c.Email}, nil
}
