package domain

// BookedSeats sums seatsBooked over bookings that currently hold capacity.
// Pending and accepted bookings both count; rejected bookings do not.
func BookedSeats(bookings []Booking) int {
	n := 0
	for _, b := range bookings {
		if b.Status == BookingStatusPending || b.Status == BookingStatusAccepted {
			n += b.SeatsBooked
		}
	}
	return n
}

// AvailableSeats recomputes remaining capacity from the authoritative booking
// collection. It must not be cached across requests.
func AvailableSeats(totalSeats int, bookings []Booking) int {
	return totalSeats - BookedSeats(bookings)
}

// CanAccommodate reports whether a request for n seats fits the remaining
// capacity.
func CanAccommodate(totalSeats int, bookings []Booking, n int) bool {
	return n >= 1 && n <= AvailableSeats(totalSeats, bookings)
}
