package trips_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	memnotifier "github.com/ghumakkad/trip-share-api/internal/adapters/memory/notifier"
	memtriprepo "github.com/ghumakkad/trip-share-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/ghumakkad/trip-share-api/internal/adapters/memory/userrepo"
	"github.com/ghumakkad/trip-share-api/internal/app/trips"
	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/platform/keylock"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/userrepo"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *trips.Service
	repo  *memtriprepo.Repo
	users *memuserrepo.Repo
	clock *fakeClock
	mail  *memnotifier.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repo := memtriprepo.NewRepo()
	users := memuserrepo.NewRepo()
	mail := memnotifier.NewRecorder()

	svc := trips.NewService(trips.Deps{
		Trips:    repo,
		Users:    users,
		Clock:    clk,
		Locks:    keylock.New(),
		Notifier: mail,
	})
	svc.SetSyncNotificationsForTest()

	var tripSeq, bookingSeq int
	svc.SetNewTripIDForTest(func() domain.TripID {
		tripSeq++
		return domain.TripID(fmt.Sprintf("trip-%d", tripSeq))
	})
	svc.SetNewBookingIDForTest(func() domain.BookingID {
		bookingSeq++
		return domain.BookingID(fmt.Sprintf("booking-%d", bookingSeq))
	})

	return &fixture{svc: svc, repo: repo, users: users, clock: clk, mail: mail}
}

func (f *fixture) addUser(t *testing.T, id domain.UserID, email string) {
	t.Helper()
	err := f.users.Create(context.Background(), userrepo.User{
		ID: id, Email: email, PasswordHash: "x", CreatedAt: f.clock.Now(),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func (f *fixture) createTrip(t *testing.T, creator domain.UserID, seats int) trips.TripView {
	t.Helper()
	now := f.clock.Now()
	v, err := f.svc.CreateTrip(context.Background(), creator, trips.CreateTripInput{
		Title:          "Spiti Circuit",
		Origin:         "Chandigarh",
		Destination:    "Kaza",
		StartDate:      now.AddDate(0, 0, 10),
		EndDate:        now.AddDate(0, 0, 15),
		TotalSeats:     seats,
		PricePerPerson: 4999,
		TransportMode:  domain.TransportModeBus,
		ContactPhone:   "+919876543210",
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	return v
}

func appErr(t *testing.T, err error) *trips.Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	ae, ok := err.(*trips.Error)
	if !ok {
		t.Fatalf("expected *trips.Error, got %T: %v", err, err)
	}
	return ae
}

func TestCreateTrip_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	now := f.clock.Now()

	valid := trips.CreateTripInput{
		Title: "Weekend Goa", Origin: "Pune", Destination: "Goa",
		StartDate: now.AddDate(0, 0, 5), EndDate: now.AddDate(0, 0, 7),
		TotalSeats: 3, PricePerPerson: 2000,
		TransportMode: domain.TransportModeCar, ContactPhone: "9876543210",
	}

	cases := []struct {
		name   string
		mutate func(*trips.CreateTripInput)
	}{
		{"empty title", func(in *trips.CreateTripInput) { in.Title = "   " }},
		{"empty origin", func(in *trips.CreateTripInput) { in.Origin = "" }},
		{"empty destination", func(in *trips.CreateTripInput) { in.Destination = "" }},
		{"zero seats", func(in *trips.CreateTripInput) { in.TotalSeats = 0 }},
		{"negative price", func(in *trips.CreateTripInput) { in.PricePerPerson = -1 }},
		{"bad transport", func(in *trips.CreateTripInput) { in.TransportMode = "boat" }},
		{"short phone", func(in *trips.CreateTripInput) { in.ContactPhone = "12345" }},
		{"end before start", func(in *trips.CreateTripInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := f.svc.CreateTrip(context.Background(), "creator", in)
			ae := appErr(t, err)
			if ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
				t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
			}
		})
	}

	if _, err := f.svc.CreateTrip(context.Background(), "creator", valid); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestCreateTrip_DuplicateByCreator(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.createTrip(t, "creator", 4)

	now := f.clock.Now()
	_, err := f.svc.CreateTrip(context.Background(), "creator", trips.CreateTripInput{
		Title: "Same route again", Origin: "Chandigarh", Destination: "Kaza",
		StartDate: now.AddDate(0, 0, 10), EndDate: now.AddDate(0, 0, 15),
		TotalSeats: 2, PricePerPerson: 100,
		TransportMode: domain.TransportModeCar, ContactPhone: "9876543210",
	})
	ae := appErr(t, err)
	if ae.Status != 409 || ae.Code != "DUPLICATE_TRIP" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
}

// Three riders share three seats: 1 + 2 fills the trip, a fourth seat is
// refused with the remaining availability in the error details.
func TestJoinTrip_SeatLedger(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider-a", "a@example.com")
	f.addUser(t, "rider-b", "b@example.com")
	f.addUser(t, "rider-c", "c@example.com")
	trip := f.createTrip(t, "creator", 3)

	v, err := f.svc.JoinTrip(context.Background(), "rider-a", trip.ID, 1)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	if v.AvailableSeats != 2 {
		t.Fatalf("after 1 seat: available=%d", v.AvailableSeats)
	}

	v, err = f.svc.JoinTrip(context.Background(), "rider-b", trip.ID, 2)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if v.AvailableSeats != 0 {
		t.Fatalf("after 3 seats: available=%d", v.AvailableSeats)
	}

	_, err = f.svc.JoinTrip(context.Background(), "rider-c", trip.ID, 1)
	ae := appErr(t, err)
	if ae.Status != 409 || ae.Code != "CAPACITY_EXCEEDED" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
	if got := ae.Details["availableSeats"]; got != 0 {
		t.Fatalf("availableSeats detail = %v", got)
	}
}

func TestJoinTrip_SelfJoinForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	trip := f.createTrip(t, "creator", 3)

	_, err := f.svc.JoinTrip(context.Background(), "creator", trip.ID, 1)
	ae := appErr(t, err)
	if ae.Status != 403 || ae.Code != "SELF_JOIN_FORBIDDEN" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
}

func TestJoinTrip_DoubleBookingRefused(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 4)

	if _, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1)
	ae := appErr(t, err)
	if ae.Status != 409 || ae.Code != "ALREADY_BOOKED" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
}

func TestJoinTrip_NotJoinableAfterStart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	// Cross the start date; the join-time derivation sees the trip as ongoing.
	f.clock.Advance(11 * 24 * time.Hour)

	_, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1)
	ae := appErr(t, err)
	if ae.Status != 409 || ae.Code != "TRIP_NOT_JOINABLE" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
}

func TestJoinTrip_CancelledTripNotJoinable(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	if _, err := f.svc.CancelTrip(context.Background(), "creator", trip.ID); err != nil {
		t.Fatalf("CancelTrip: %v", err)
	}
	_, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1)
	ae := appErr(t, err)
	if ae.Code != "TRIP_NOT_JOINABLE" {
		t.Fatalf("got code=%s", ae.Code)
	}
}

func TestAcceptBooking_NotifiesOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	v, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	bookingID := v.Bookings[0].ID

	v, err = f.svc.AcceptBooking(context.Background(), "creator", trip.ID, bookingID)
	if err != nil {
		t.Fatalf("AcceptBooking: %v", err)
	}
	if got := v.Bookings[0].Status; got != domain.BookingStatusAccepted {
		t.Fatalf("booking status = %s", got)
	}
	if v.AvailableSeats != 1 {
		t.Fatalf("accepted booking must keep holding seats, available=%d", v.AvailableSeats)
	}

	sent := f.mail.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}
	if sent[0].Email != "rider@example.com" || sent[0].Subject != "Your Trip Booking Has Been Accepted!" {
		t.Fatalf("sent=%+v", sent[0])
	}
}

// A second decision on an already-decided booking is refused and does not
// re-notify.
func TestDecideBooking_SecondDecisionRefused(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	v, _ := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1)
	bookingID := v.Bookings[0].ID

	if _, err := f.svc.RejectBooking(context.Background(), "creator", trip.ID, bookingID); err != nil {
		t.Fatalf("first reject: %v", err)
	}

	_, err := f.svc.RejectBooking(context.Background(), "creator", trip.ID, bookingID)
	ae := appErr(t, err)
	if ae.Status != 409 || ae.Code != "INVALID_TRANSITION" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
	_, err = f.svc.AcceptBooking(context.Background(), "creator", trip.ID, bookingID)
	if ae := appErr(t, err); ae.Code != "INVALID_TRANSITION" {
		t.Fatalf("accept after reject: code=%s", ae.Code)
	}

	if n := len(f.mail.SentMessages()); n != 1 {
		t.Fatalf("sent %d notifications, want exactly 1", n)
	}
}

func TestRejectBooking_ReleasesSeats(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider-a", "a@example.com")
	f.addUser(t, "rider-b", "b@example.com")
	trip := f.createTrip(t, "creator", 2)

	v, _ := f.svc.JoinTrip(context.Background(), "rider-a", trip.ID, 2)
	bookingID := v.Bookings[0].ID

	// Trip is full; rejection frees both seats for the next rider.
	if _, err := f.svc.JoinTrip(context.Background(), "rider-b", trip.ID, 1); err == nil {
		t.Fatal("join on full trip must fail")
	}
	v, err := f.svc.RejectBooking(context.Background(), "creator", trip.ID, bookingID)
	if err != nil {
		t.Fatalf("RejectBooking: %v", err)
	}
	if v.AvailableSeats != 2 {
		t.Fatalf("after reject: available=%d", v.AvailableSeats)
	}
	if _, err := f.svc.JoinTrip(context.Background(), "rider-b", trip.ID, 2); err != nil {
		t.Fatalf("join after reject: %v", err)
	}
}

func TestDecideBooking_CreatorOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	v, _ := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1)
	_, err := f.svc.AcceptBooking(context.Background(), "rider", trip.ID, v.Bookings[0].ID)
	ae := appErr(t, err)
	if ae.Status != 403 || ae.Code != "NOT_AUTHORIZED" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
}

func TestCancelBooking_RemovesAndRestoresCapacity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 2)

	if _, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}
	v, err := f.svc.CancelBooking(context.Background(), "rider", trip.ID)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if len(v.Bookings) != 0 || v.AvailableSeats != 2 {
		t.Fatalf("bookings=%d available=%d", len(v.Bookings), v.AvailableSeats)
	}

	// A fresh join is a brand new pending booking.
	v, err = f.svc.JoinTrip(context.Background(), "rider", trip.ID, 1)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if v.Bookings[0].Status != domain.BookingStatusPending {
		t.Fatalf("rejoined booking status = %s", v.Bookings[0].Status)
	}

	_, err = f.svc.CancelBooking(context.Background(), "creator", trip.ID)
	if ae := appErr(t, err); ae.Status != 404 || ae.Code != "BOOKING_NOT_FOUND" {
		t.Fatalf("got status=%d code=%s", ae.Status, ae.Code)
	}
}

func TestCancelTrip_CreatorOnlyAndTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	_, err := f.svc.CancelTrip(context.Background(), "rider", trip.ID)
	if ae := appErr(t, err); ae.Status != 403 {
		t.Fatalf("got status=%d", ae.Status)
	}

	v, err := f.svc.CancelTrip(context.Background(), "creator", trip.ID)
	if err != nil {
		t.Fatalf("CancelTrip: %v", err)
	}
	if v.Status != domain.TripStatusCancelled {
		t.Fatalf("status = %s", v.Status)
	}

	// Cancellation survives the end date passing.
	f.clock.Advance(30 * 24 * time.Hour)
	got, err := f.repo.GetByID(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s := domain.DeriveStatus(got.Status, got.StartDate, got.EndDate, f.clock.Now()); s != domain.TripStatusCancelled {
		t.Fatalf("derived status = %s", s)
	}
}

func TestListMyBookings_Flattened(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	if _, err := f.svc.JoinTrip(context.Background(), "rider", trip.ID, 2); err != nil {
		t.Fatalf("join: %v", err)
	}

	rows, err := f.svc.ListMyBookings(context.Background(), "rider")
	if err != nil {
		t.Fatalf("ListMyBookings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows=%d", len(rows))
	}
	r := rows[0]
	if r.TripID != trip.ID || r.SeatsBooked != 2 || r.CreatorEmail != "creator@example.com" {
		t.Fatalf("row=%+v", r)
	}
	if r.DaysLeft != 10 || !r.IsUpcoming || r.IsPast || r.IsCancelled {
		t.Fatalf("row flags=%+v", r)
	}
}

func TestListOpenTrips_ExcludesOwnAndClosed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addUser(t, "creator", "creator@example.com")
	f.addUser(t, "rider", "rider@example.com")
	trip := f.createTrip(t, "creator", 3)

	mine, err := f.svc.ListOpenTrips(context.Background(), "creator")
	if err != nil {
		t.Fatalf("ListOpenTrips: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("creator sees own trip in open list")
	}

	open, err := f.svc.ListOpenTrips(context.Background(), "rider")
	if err != nil {
		t.Fatalf("ListOpenTrips: %v", err)
	}
	if len(open) != 1 || open[0].ID != trip.ID {
		t.Fatalf("open=%+v", open)
	}
}
