package triprepo

import (
	"context"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

// Trip is the persistence shape used by the trip repository.
// It is not an HTTP DTO.
type Trip struct {
	ID domain.TripID

	Title       string
	Origin      string
	Destination string

	// StartDate/EndDate carry date-only semantics at the edges.
	StartDate time.Time
	EndDate   time.Time

	TotalSeats     int
	PricePerPerson float64

	TransportMode domain.TransportMode
	ImageURL      string
	ContactPhone  string

	CreatorID domain.UserID
	Status    domain.TripStatus

	// Bookings are kept in request order (insertion order).
	Bookings []domain.Booking

	// Forecast is captured once at creation time and never recomputed.
	Forecast []domain.ForecastEntry

	// Version supports optimistic concurrency: Save fails with
	// ErrVersionConflict when the stored version differs.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted trips.
type Repository interface {
	Create(ctx context.Context, t Trip) error

	// Save replaces the stored trip if t.Version matches the stored version,
	// then increments it. It returns ErrVersionConflict on mismatch.
	Save(ctx context.Context, t Trip) error

	GetByID(ctx context.Context, id domain.TripID) (Trip, error)

	// ListAll returns every trip. Used by the lifecycle sweep and admin views.
	ListAll(ctx context.Context) ([]Trip, error)

	// ListOpenExcludingCreator returns trips with status in (upcoming, ongoing)
	// not created by the given user, ordered by start date.
	ListOpenExcludingCreator(ctx context.Context, u domain.UserID) ([]Trip, error)

	// ListByCreator returns the trips created by the given user.
	ListByCreator(ctx context.Context, u domain.UserID) ([]Trip, error)

	// ListWithBookingBy returns trips holding a booking owned by the given user.
	ListWithBookingBy(ctx context.Context, u domain.UserID) ([]Trip, error)
}
