package trips

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/platform/keylock"
	clockport "github.com/ghumakkad/trip-share-api/internal/ports/out/clock"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/forecast"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/notifier"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/places"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/triprepo"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/userrepo"
)

// saveRetries bounds optimistic-save retries on version conflicts before the
// operation surfaces a transient CONFLICT to the caller.
const saveRetries = 3

// Deps wires the service. Forecast, Places, PlacesCache, and Notifier are
// optional: a nil provider degrades the corresponding feature instead of
// failing construction.
type Deps struct {
	Trips triprepo.Repository
	Users userrepo.Repository
	Clock clockport.Clock
	Locks *keylock.KeyLock
	Log   *zap.Logger

	Forecast    forecast.Provider
	Places      places.Provider
	PlacesCache places.Cache
	Notifier    notifier.Notifier

	// ExternalTimeout bounds outbound calls (forecast, places, notification).
	ExternalTimeout time.Duration
}

type Service struct {
	trips triprepo.Repository
	users userrepo.Repository
	clk   clockport.Clock
	locks *keylock.KeyLock
	log   *zap.Logger

	forecasts   forecast.Provider
	placesProv  places.Provider
	placesCache places.Cache
	notif       notifier.Notifier

	extTimeout time.Duration

	newTripID    func() domain.TripID
	newBookingID func() domain.BookingID

	syncNotify bool
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := d.ExternalTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		trips:       d.Trips,
		users:       d.Users,
		clk:         d.Clock,
		locks:       d.Locks,
		log:         log,
		forecasts:   d.Forecast,
		placesProv:  d.Places,
		placesCache: d.PlacesCache,
		notif:       d.Notifier,
		extTimeout:  timeout,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.NewString())
		},
		newBookingID: func() domain.BookingID {
			return domain.BookingID(uuid.NewString())
		},
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

// SetNewBookingIDForTest overrides booking ID generation for deterministic tests.
func (s *Service) SetNewBookingIDForTest(fn func() domain.BookingID) {
	if fn != nil {
		s.newBookingID = fn
	}
}

// SetSyncNotificationsForTest makes notification dispatch synchronous so tests
// can assert on the recorded sends.
func (s *Service) SetSyncNotificationsForTest() {
	s.syncNotify = true
}

func (s *Service) CreateTrip(ctx context.Context, creator domain.UserID, in CreateTripInput) (TripView, error) {
	if _, err := s.users.GetByID(ctx, creator); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return TripView{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid caller", Details: map[string]any{"userId": "caller does not exist"}}
		}
		return TripView{}, err
	}

	title := domain.NormalizeTitle(in.Title)
	if title == "" {
		return TripView{}, validationError("title", "must be non-empty")
	}
	origin := strings.TrimSpace(in.Origin)
	if origin == "" {
		return TripView{}, validationError("from", "must be non-empty")
	}
	destination := strings.TrimSpace(in.Destination)
	if destination == "" {
		return TripView{}, validationError("to", "must be non-empty")
	}
	if in.TotalSeats < 1 {
		return TripView{}, validationError("seats", "must be >= 1")
	}
	if in.PricePerPerson <= 0 {
		return TripView{}, validationError("pricePerPerson", "must be > 0")
	}
	if !domain.ValidTransportMode(in.TransportMode) {
		return TripView{}, validationError("modeOfTransport", "must be one of bus, railway, airplane, car")
	}
	phone := domain.NormalizePhone(in.ContactPhone)
	if len(strings.TrimPrefix(phone, "+")) < 10 {
		return TripView{}, validationError("phoneNo", "must contain at least 10 digits")
	}

	start, end := domain.DateOnly(in.StartDate), domain.DateOnly(in.EndDate)
	if end.Before(start) {
		return TripView{}, validationError("endDate", "must be on or after startDate")
	}

	// Duplicate check: same route and dates by the same creator.
	existing, err := s.trips.ListByCreator(ctx, creator)
	if err != nil {
		return TripView{}, err
	}
	for _, t := range existing {
		if t.Origin == origin && t.Destination == destination &&
			domain.DateOnly(t.StartDate).Equal(start) && domain.DateOnly(t.EndDate).Equal(end) {
			return TripView{}, &Error{Status: 409, Code: "DUPLICATE_TRIP", Message: "a trip with these exact details already exists"}
		}
	}

	// Forecast is best effort and fetched before the trip exists, so no trip
	// lock is ever held across this call.
	var fc []domain.ForecastEntry
	if s.forecasts != nil {
		fctx, cancel := context.WithTimeout(ctx, s.extTimeout)
		got, err := s.forecasts.Fetch(fctx, destination, start, end)
		cancel()
		if err != nil {
			s.log.Warn("forecast fetch failed, continuing without forecast",
				zap.String("city", destination), zap.Error(err))
		} else {
			fc = got
		}
	}

	now := s.clk.Now()
	t := triprepo.Trip{
		ID:             s.newTripID(),
		Title:          title,
		Origin:         origin,
		Destination:    destination,
		StartDate:      start,
		EndDate:        end,
		TotalSeats:     in.TotalSeats,
		PricePerPerson: in.PricePerPerson,
		TransportMode:  in.TransportMode,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		ContactPhone:   phone,
		CreatorID:      creator,
		Status:         domain.DeriveStatus(domain.TripStatusUpcoming, start, end, now),
		Bookings:       []domain.Booking{},
		Forecast:       fc,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.trips.Create(ctx, t); err != nil {
		if errors.Is(err, triprepo.ErrAlreadyExists) {
			return TripView{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		}
		return TripView{}, err
	}
	return s.viewForTrip(ctx, t)
}

// ListOpenTrips returns joinable trips created by other users.
func (s *Service) ListOpenTrips(ctx context.Context, caller domain.UserID) ([]TripView, error) {
	ts, err := s.trips.ListOpenExcludingCreator(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.viewsForTrips(ctx, ts)
}

// ListMyTrips returns the caller's own trips with their booking details.
func (s *Service) ListMyTrips(ctx context.Context, caller domain.UserID) ([]TripView, error) {
	ts, err := s.trips.ListByCreator(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.viewsForTrips(ctx, ts)
}

// ListMyBookings flattens the caller's bookings across all trips.
func (s *Service) ListMyBookings(ctx context.Context, caller domain.UserID) ([]MyBookingRow, error) {
	ts, err := s.trips.ListWithBookingBy(ctx, caller)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	out := make([]MyBookingRow, 0, len(ts))
	for _, t := range ts {
		i := domain.FindBookingByUser(t.Bookings, caller)
		if i < 0 {
			continue
		}
		b := t.Bookings[i]

		creatorEmail := ""
		if u, err := s.users.GetByID(ctx, t.CreatorID); err == nil {
			creatorEmail = u.Email
		}

		daysLeft := int(domain.DateOnly(t.StartDate).Sub(domain.DateOnly(now)).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}

		out = append(out, MyBookingRow{
			BookingID:      b.ID,
			TripID:         t.ID,
			Title:          t.Title,
			Origin:         t.Origin,
			Destination:    t.Destination,
			StartDate:      t.StartDate,
			EndDate:        t.EndDate,
			TransportMode:  t.TransportMode,
			ImageURL:       t.ImageURL,
			PricePerPerson: t.PricePerPerson,
			CreatorEmail:   creatorEmail,
			AvailableSeats: domain.AvailableSeats(t.TotalSeats, t.Bookings),
			SeatsBooked:    b.SeatsBooked,
			DaysLeft:       daysLeft,
			Status:         b.Status,
			IsUpcoming:     daysLeft > 0 && t.Status == domain.TripStatusUpcoming,
			IsPast:         t.Status == domain.TripStatusCompleted || domain.DateOnly(t.EndDate).Before(domain.DateOnly(now)),
			IsCancelled:    t.Status == domain.TripStatusCancelled || b.Status == domain.BookingStatusRejected,
		})
	}
	return out, nil
}

// JoinTrip creates a pending booking for the caller.
func (s *Service) JoinTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID, seats int) (TripView, error) {
	if seats < 1 {
		return TripView{}, validationError("seatsBooked", "must be >= 1")
	}
	t, err := s.mutateTrip(ctx, tripID, func(t *triprepo.Trip) error {
		switch t.Status {
		case domain.TripStatusCompleted, domain.TripStatusCancelled, domain.TripStatusOngoing:
			return &Error{Status: 409, Code: "TRIP_NOT_JOINABLE", Message: "this trip is no longer available to join"}
		}
		if t.CreatorID == caller {
			return &Error{Status: 403, Code: "SELF_JOIN_FORBIDDEN", Message: "you cannot join your own trip"}
		}
		if domain.FindBookingByUser(t.Bookings, caller) >= 0 {
			return &Error{Status: 409, Code: "ALREADY_BOOKED", Message: "you have already joined this trip"}
		}
		if !domain.CanAccommodate(t.TotalSeats, t.Bookings, seats) {
			return &Error{
				Status:  409,
				Code:    "CAPACITY_EXCEEDED",
				Message: "not enough seats available",
				Details: map[string]any{"availableSeats": domain.AvailableSeats(t.TotalSeats, t.Bookings)},
			}
		}
		t.Bookings = append(t.Bookings, domain.Booking{
			ID:          s.newBookingID(),
			UserID:      caller,
			SeatsBooked: seats,
			Status:      domain.BookingStatusPending,
		})
		return nil
	})
	if err != nil {
		return TripView{}, err
	}
	return s.viewForTrip(ctx, t)
}

// AcceptBooking transitions a pending booking to accepted (creator only) and
// notifies the booking owner.
func (s *Service) AcceptBooking(ctx context.Context, caller domain.UserID, tripID domain.TripID, bookingID domain.BookingID) (TripView, error) {
	return s.decideBooking(ctx, caller, tripID, bookingID, domain.BookingStatusAccepted)
}

// RejectBooking transitions a pending booking to rejected (creator only) and
// notifies the booking owner. The booking's seats are released.
func (s *Service) RejectBooking(ctx context.Context, caller domain.UserID, tripID domain.TripID, bookingID domain.BookingID) (TripView, error) {
	return s.decideBooking(ctx, caller, tripID, bookingID, domain.BookingStatusRejected)
}

func (s *Service) decideBooking(ctx context.Context, caller domain.UserID, tripID domain.TripID, bookingID domain.BookingID, to domain.BookingStatus) (TripView, error) {
	var decided domain.Booking
	t, err := s.mutateTrip(ctx, tripID, func(t *triprepo.Trip) error {
		if t.CreatorID != caller {
			return &Error{Status: 403, Code: "NOT_AUTHORIZED", Message: "only the trip creator can manage bookings"}
		}
		i := domain.FindBooking(t.Bookings, bookingID)
		if i < 0 {
			return &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
		if t.Bookings[i].Status != domain.BookingStatusPending {
			return &Error{
				Status:  409,
				Code:    "INVALID_TRANSITION",
				Message: fmt.Sprintf("booking is already %s", t.Bookings[i].Status),
			}
		}
		t.Bookings[i].Status = to
		decided = t.Bookings[i]
		return nil
	})
	if err != nil {
		return TripView{}, err
	}

	// The notification goes out after the lock is released; a failure is
	// logged and never propagated.
	if u, err := s.users.GetByID(ctx, decided.UserID); err == nil {
		subject, html := bookingDecisionMail(t, decided, to)
		s.dispatchMail(u.Email, subject, html)
	} else {
		s.log.Warn("booking user lookup failed, notification skipped",
			zap.String("tripId", string(t.ID)), zap.String("userId", string(decided.UserID)), zap.Error(err))
	}

	return s.viewForTrip(ctx, t)
}

// CancelBooking removes the caller's booking entirely, restoring capacity.
func (s *Service) CancelBooking(ctx context.Context, caller domain.UserID, tripID domain.TripID) (TripView, error) {
	t, err := s.mutateTrip(ctx, tripID, func(t *triprepo.Trip) error {
		i := domain.FindBookingByUser(t.Bookings, caller)
		if i < 0 {
			return &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "you have not booked this trip"}
		}
		t.Bookings = domain.RemoveBooking(t.Bookings, i)
		return nil
	})
	if err != nil {
		return TripView{}, err
	}
	return s.viewForTrip(ctx, t)
}

// CancelTrip sets the trip status to cancelled (creator only). Cancellation
// overrides the derived status and freezes future derivation.
func (s *Service) CancelTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID) (TripView, error) {
	t, err := s.mutateTrip(ctx, tripID, func(t *triprepo.Trip) error {
		if t.CreatorID != caller {
			return &Error{Status: 403, Code: "NOT_AUTHORIZED", Message: "only the trip creator can cancel the trip"}
		}
		t.Status = domain.TripStatusCancelled
		return nil
	})
	if err != nil {
		return TripView{}, err
	}
	return s.viewForTrip(ctx, t)
}

// SearchPlaces looks up popular places in a city, consulting the injected
// cache first.
func (s *Service) SearchPlaces(ctx context.Context, city string) ([]places.Place, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, validationError("city", "is required")
	}
	if s.placesProv == nil {
		return nil, &Error{Status: 502, Code: "EXTERNAL_SERVICE_FAILURE", Message: "places lookup is not configured"}
	}

	if s.placesCache != nil {
		if cached, ok, err := s.placesCache.Get(ctx, city); err != nil {
			s.log.Warn("places cache read failed", zap.String("city", city), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	pctx, cancel := context.WithTimeout(ctx, s.extTimeout)
	defer cancel()
	results, err := s.placesProv.Search(pctx, city)
	if err != nil {
		return nil, &Error{Status: 502, Code: "EXTERNAL_SERVICE_FAILURE", Message: "places lookup failed"}
	}
	if len(results) == 0 {
		return nil, &Error{Status: 404, Code: "NO_PLACES_FOUND", Message: "no places found"}
	}

	if s.placesCache != nil {
		if err := s.placesCache.Set(ctx, city, results); err != nil {
			s.log.Warn("places cache write failed", zap.String("city", city), zap.Error(err))
		}
	}
	return results, nil
}

// ListAllTrips returns every trip. Admin use only; authorization is enforced
// at the transport layer.
func (s *Service) ListAllTrips(ctx context.Context) ([]TripView, error) {
	ts, err := s.trips.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.viewsForTrips(ctx, ts)
}

// ListAllBookings flattens bookings across all trips, optionally filtered by
// booking status. Admin use only.
func (s *Service) ListAllBookings(ctx context.Context, statusFilter domain.BookingStatus) ([]AdminBookingRow, error) {
	ts, err := s.trips.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AdminBookingRow, 0)
	for _, t := range ts {
		creatorEmail := ""
		if u, err := s.users.GetByID(ctx, t.CreatorID); err == nil {
			creatorEmail = u.Email
		}
		for _, b := range t.Bookings {
			if statusFilter != "" && b.Status != statusFilter {
				continue
			}
			bookedBy := ""
			if u, err := s.users.GetByID(ctx, b.UserID); err == nil {
				bookedBy = u.Email
			}
			out = append(out, AdminBookingRow{
				TripTitle:      t.Title,
				Origin:         t.Origin,
				Destination:    t.Destination,
				StartDate:      t.StartDate,
				EndDate:        t.EndDate,
				TripStatus:     t.Status,
				BookedBy:       bookedBy,
				SeatsBooked:    b.SeatsBooked,
				BookingStatus:  b.Status,
				CreatorEmail:   creatorEmail,
				PricePerPerson: t.PricePerPerson,
			})
		}
	}
	return out, nil
}

// mutateTrip serializes a read-validate-write sequence on one trip.
//
// Two layers guard against lost updates: the per-trip lock covers all writers
// in this process (requests and the sweep share the same KeyLock), and the
// repository's version check catches any writer that slipped past it. Version
// conflicts are retried a bounded number of times, then surfaced as a
// transient CONFLICT.
func (s *Service) mutateTrip(ctx context.Context, id domain.TripID, fn func(t *triprepo.Trip) error) (triprepo.Trip, error) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	var out triprepo.Trip
	backoff := retry.WithMaxRetries(saveRetries, retry.NewConstant(25*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		t, err := s.trips.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, triprepo.ErrNotFound) {
				return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
			}
			return err
		}

		// Status is re-derived on every mutating load, before guards run.
		t.Status = domain.DeriveStatus(t.Status, t.StartDate, t.EndDate, s.clk.Now())

		if err := fn(&t); err != nil {
			return err
		}

		t.UpdatedAt = s.clk.Now()
		if err := s.trips.Save(ctx, t); err != nil {
			if errors.Is(err, triprepo.ErrVersionConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		if errors.Is(err, triprepo.ErrVersionConflict) {
			return triprepo.Trip{}, &Error{Status: 409, Code: "CONFLICT", Message: "trip was modified concurrently, please retry"}
		}
		return triprepo.Trip{}, err
	}
	return out, nil
}

func (s *Service) dispatchMail(email, subject, html string) {
	if s.notif == nil {
		return
	}
	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.extTimeout)
		defer cancel()
		if err := s.notif.Notify(ctx, email, subject, html); err != nil {
			s.log.Warn("booking notification failed", zap.String("email", email), zap.Error(err))
		}
	}
	if s.syncNotify {
		send()
		return
	}
	go send()
}

func bookingDecisionMail(t triprepo.Trip, b domain.Booking, to domain.BookingStatus) (subject, html string) {
	details := fmt.Sprintf(
		"<ul><li>From: %s</li><li>To: %s</li><li>Start Date: %s</li><li>End Date: %s</li><li>Seats Booked: %d</li></ul>",
		t.Origin, t.Destination,
		t.StartDate.Format("Mon Jan 02 2006"), t.EndDate.Format("Mon Jan 02 2006"),
		b.SeatsBooked,
	)
	if to == domain.BookingStatusAccepted {
		subject = "Your Trip Booking Has Been Accepted!"
		html = fmt.Sprintf(
			"<h2>Great News!</h2><p>Your booking for the trip <strong>%s</strong> has been accepted.</p><p><b>Trip Details:</b></p>%s<p>Have a safe journey!</p>",
			t.Title, details,
		)
		return subject, html
	}
	subject = "Your Trip Booking Has Been Rejected"
	html = fmt.Sprintf(
		"<h2>Sorry, Your Booking Was Rejected</h2><p>Your booking for the trip <strong>%s</strong> has been rejected by the trip owner.</p><p><b>Trip Details:</b></p>%s<p>We apologize for the inconvenience.</p>",
		t.Title, details,
	)
	return subject, html
}

func (s *Service) viewsForTrips(ctx context.Context, ts []triprepo.Trip) ([]TripView, error) {
	out := make([]TripView, 0, len(ts))
	for _, t := range ts {
		v, err := s.viewForTrip(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) viewForTrip(ctx context.Context, t triprepo.Trip) (TripView, error) {
	creator := domain.UserSummary{ID: t.CreatorID}
	if u, err := s.users.GetByID(ctx, t.CreatorID); err == nil {
		creator.Email = u.Email
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		return TripView{}, err
	}

	bookings := make([]BookingView, 0, len(t.Bookings))
	for _, b := range t.Bookings {
		bu := domain.UserSummary{ID: b.UserID}
		if u, err := s.users.GetByID(ctx, b.UserID); err == nil {
			bu.Email = u.Email
		} else if !errors.Is(err, userrepo.ErrNotFound) {
			return TripView{}, err
		}
		bookings = append(bookings, BookingView{
			ID:          b.ID,
			User:        bu,
			SeatsBooked: b.SeatsBooked,
			Status:      b.Status,
		})
	}

	return TripView{
		ID:             t.ID,
		Title:          t.Title,
		Origin:         t.Origin,
		Destination:    t.Destination,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		TotalSeats:     t.TotalSeats,
		AvailableSeats: domain.AvailableSeats(t.TotalSeats, t.Bookings),
		PricePerPerson: t.PricePerPerson,
		TransportMode:  t.TransportMode,
		ImageURL:       t.ImageURL,
		ContactPhone:   t.ContactPhone,
		Status:         t.Status,
		Creator:        creator,
		Bookings:       bookings,
		Forecast:       append([]domain.ForecastEntry(nil), t.Forecast...),
	}, nil
}

func validationError(field, msg string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: msg},
	}
}
