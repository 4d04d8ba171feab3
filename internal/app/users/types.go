package users

import (
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

type SignUpInput struct {
	Email    string
	Password string
}

type SignInInput struct {
	Email    string
	Password string
}

// Session is the result of a successful signup or signin.
type Session struct {
	Token  string
	UserID domain.UserID
	Email  string
}

// UserRow is the admin-facing user listing entry.
type UserRow struct {
	ID        domain.UserID
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}
