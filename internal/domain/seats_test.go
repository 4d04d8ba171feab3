package domain_test

import (
	"testing"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

func TestBookedSeats_CountsPendingAndAccepted(t *testing.T) {
	t.Parallel()

	bookings := []domain.Booking{
		{ID: "b1", UserID: "u1", SeatsBooked: 2, Status: domain.BookingStatusAccepted},
		{ID: "b2", UserID: "u2", SeatsBooked: 1, Status: domain.BookingStatusPending},
		{ID: "b3", UserID: "u3", SeatsBooked: 4, Status: domain.BookingStatusRejected},
	}
	if got := domain.BookedSeats(bookings); got != 3 {
		t.Fatalf("BookedSeats = %d, want 3", got)
	}
	if got := domain.AvailableSeats(5, bookings); got != 2 {
		t.Fatalf("AvailableSeats = %d, want 2", got)
	}
}

func TestCanAccommodate_CapacityBoundary(t *testing.T) {
	t.Parallel()

	// 3 total seats, one accepted booking of 2 leaves a single seat.
	bookings := []domain.Booking{
		{ID: "b1", UserID: "u1", SeatsBooked: 2, Status: domain.BookingStatusAccepted},
	}
	if domain.CanAccommodate(3, bookings, 2) {
		t.Fatalf("2 seats should not fit with only 1 available")
	}
	if !domain.CanAccommodate(3, bookings, 1) {
		t.Fatalf("1 seat should fit")
	}
	if domain.CanAccommodate(3, bookings, 0) {
		t.Fatalf("zero-seat requests are never accommodated")
	}
}
