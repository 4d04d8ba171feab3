package userrepo

import (
	"context"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

// User is the persistence shape used by the user repository.
type User struct {
	ID           domain.UserID
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

type Repository interface {
	// Create persists a new user. ErrAlreadyExists is returned when the email
	// is already taken.
	Create(ctx context.Context, u User) error

	GetByID(ctx context.Context, id domain.UserID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// List returns all users ordered by creation time. Admin use only.
	List(ctx context.Context) ([]User, error)
}
