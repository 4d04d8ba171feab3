package domain

import "time"

type TripStatus string

const (
	TripStatusUpcoming  TripStatus = "upcoming"
	TripStatusOngoing   TripStatus = "ongoing"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

type TransportMode string

const (
	TransportModeBus      TransportMode = "bus"
	TransportModeRailway  TransportMode = "railway"
	TransportModeAirplane TransportMode = "airplane"
	TransportModeCar      TransportMode = "car"
	TransportModeUnset    TransportMode = ""
)

// ValidTransportMode reports whether m is one of the known modes or unset.
func ValidTransportMode(m TransportMode) bool {
	switch m {
	case TransportModeBus, TransportModeRailway, TransportModeAirplane, TransportModeCar, TransportModeUnset:
		return true
	default:
		return false
	}
}

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
)

// Booking is a seat reservation owned by a trip. It has no lifecycle of its
// own: it is created on join, transitioned by the trip creator, and removed
// entirely when the booking owner cancels.
type Booking struct {
	ID          BookingID
	UserID      UserID
	SeatsBooked int
	Status      BookingStatus
}

// ForecastEntry is one weather snapshot captured at trip creation time.
// Forecasts are never recomputed after creation.
type ForecastEntry struct {
	Date        time.Time
	TempC       float64
	Description string
	Icon        string
}

// FindBooking returns the index of the booking with the given id, or -1.
func FindBooking(bookings []Booking, id BookingID) int {
	for i := range bookings {
		if bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// FindBookingByUser returns the index of the booking held by the given user,
// or -1. A trip holds at most one booking per user.
func FindBookingByUser(bookings []Booking, u UserID) int {
	for i := range bookings {
		if bookings[i].UserID == u {
			return i
		}
	}
	return -1
}

// RemoveBooking returns bookings with the entry at index i removed,
// preserving insertion order of the remainder.
func RemoveBooking(bookings []Booking, i int) []Booking {
	out := make([]Booking, 0, len(bookings)-1)
	out = append(out, bookings[:i]...)
	out = append(out, bookings[i+1:]...)
	return out
}

// UserSummary is the read model for a user referenced from trip views.
type UserSummary struct {
	ID    UserID
	Email string
}
