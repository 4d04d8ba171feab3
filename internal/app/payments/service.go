// Package payments creates payment orders for trip bookings.
//
// Order creation runs before the booking exists: the caller pays first, then
// joins. The checks here mirror the join guards so a rider never pays for a
// trip they could not join, but they are advisory only. The booking operation
// re-validates under the trip lock.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/domain"
	clockport "github.com/ghumakkad/trip-share-api/internal/ports/out/clock"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/payment"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/triprepo"
)

const orderCurrency = "INR"

type Deps struct {
	Trips    triprepo.Repository
	Provider payment.Provider
	Clock    clockport.Clock
	Log      *zap.Logger

	// ExternalTimeout bounds the gateway call.
	ExternalTimeout time.Duration
}

type Service struct {
	trips    triprepo.Repository
	provider payment.Provider
	clk      clockport.Clock
	log      *zap.Logger

	extTimeout time.Duration
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
		trips:      d.Trips,
		provider:   d.Provider,
		clk:        d.Clock,
		log:        log,
		extTimeout: timeout,
	}
}

// Order is a created payment order awaiting capture by the client.
type Order struct {
	OrderID          string
	AmountMinorUnits int64
	Currency         string
	TripID           domain.TripID
	Seats            int
}

// CreateOrder prices seats seats on the trip and opens an order with the
// gateway. The amount is price-per-person times seats, in minor units.
func (s *Service) CreateOrder(ctx context.Context, caller domain.UserID, tripID domain.TripID, seats int) (Order, error) {
	if s.provider == nil {
		return Order{}, &Error{Status: 502, Code: "EXTERNAL_SERVICE_FAILURE", Message: "payments are not configured"}
	}
	if seats < 1 {
		return Order{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid seats", Details: map[string]any{"seats": "must be >= 1"}}
	}

	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return Order{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return Order{}, err
	}

	status := domain.DeriveStatus(t.Status, t.StartDate, t.EndDate, s.clk.Now())
	switch status {
	case domain.TripStatusCompleted, domain.TripStatusCancelled, domain.TripStatusOngoing:
		return Order{}, &Error{Status: 409, Code: "TRIP_NOT_JOINABLE", Message: "this trip is no longer available to join"}
	}
	if t.CreatorID == caller {
		return Order{}, &Error{Status: 403, Code: "SELF_JOIN_FORBIDDEN", Message: "you cannot pay for your own trip"}
	}
	if domain.FindBookingByUser(t.Bookings, caller) >= 0 {
		return Order{}, &Error{Status: 409, Code: "ALREADY_BOOKED", Message: "you have already joined this trip"}
	}
	if !domain.CanAccommodate(t.TotalSeats, t.Bookings, seats) {
		return Order{}, &Error{
			Status:  409,
			Code:    "CAPACITY_EXCEEDED",
			Message: "not enough seats available",
			Details: map[string]any{"availableSeats": domain.AvailableSeats(t.TotalSeats, t.Bookings)},
		}
	}

	amount := int64(math.Round(t.PricePerPerson*100)) * int64(seats)
	receipt := fmt.Sprintf("trip_%s_%s", t.ID, caller)
	if len(receipt) > 40 {
		receipt = receipt[:40] // gateway receipt length limit
	}

	octx, cancel := context.WithTimeout(ctx, s.extTimeout)
	defer cancel()
	orderID, err := s.provider.CreateOrder(octx, amount, orderCurrency, receipt)
	if err != nil {
		s.log.Error("payment order creation failed",
			zap.String("tripId", string(t.ID)), zap.Int64("amount", amount), zap.Error(err))
		return Order{}, &Error{Status: 502, Code: "EXTERNAL_SERVICE_FAILURE", Message: "payment order could not be created"}
	}

	return Order{
		OrderID:          orderID,
		AmountMinorUnits: amount,
		Currency:         orderCurrency,
		TripID:           t.ID,
		Seats:            seats,
	}, nil
}
