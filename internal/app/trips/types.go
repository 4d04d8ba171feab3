package trips

import (
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

type CreateTripInput struct {
	Title       string
	Origin      string
	Destination string

	StartDate time.Time
	EndDate   time.Time

	TotalSeats     int
	PricePerPerson float64

	TransportMode domain.TransportMode
	ImageURL      string
	ContactPhone  string
}

// BookingView is a booking with its owner resolved to a user summary.
type BookingView struct {
	ID          domain.BookingID
	User        domain.UserSummary
	SeatsBooked int
	Status      domain.BookingStatus
}

// TripView is the read model returned by trip operations. AvailableSeats is
// always recomputed from the booking collection, never stored.
type TripView struct {
	ID domain.TripID

	Title       string
	Origin      string
	Destination string

	StartDate time.Time
	EndDate   time.Time

	TotalSeats     int
	AvailableSeats int
	PricePerPerson float64

	TransportMode domain.TransportMode
	ImageURL      string
	ContactPhone  string

	Status  domain.TripStatus
	Creator domain.UserSummary

	Bookings []BookingView
	Forecast []domain.ForecastEntry
}

// MyBookingRow is one entry of a user's flattened booking list.
type MyBookingRow struct {
	BookingID domain.BookingID
	TripID    domain.TripID

	Title       string
	Origin      string
	Destination string

	StartDate time.Time
	EndDate   time.Time

	TransportMode  domain.TransportMode
	ImageURL       string
	PricePerPerson float64
	CreatorEmail   string

	AvailableSeats int
	SeatsBooked    int

	// DaysLeft counts whole days until the trip starts; never negative.
	DaysLeft int

	Status      domain.BookingStatus
	IsUpcoming  bool
	IsPast      bool
	IsCancelled bool
}

// AdminBookingRow is the admin-facing flattened view across all trips.
type AdminBookingRow struct {
	TripTitle   string
	Origin      string
	Destination string

	StartDate time.Time
	EndDate   time.Time

	TripStatus     domain.TripStatus
	BookedBy       string
	SeatsBooked    int
	BookingStatus  domain.BookingStatus
	CreatorEmail   string
	PricePerPerson float64
}
