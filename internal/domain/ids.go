package domain

// UserID is an internal identifier for a user record.
type UserID string

// TripID is an internal identifier for a trip record.
type TripID string

// BookingID identifies a booking within its owning trip.
type BookingID string
