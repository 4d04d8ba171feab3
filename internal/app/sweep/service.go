// Package sweep reconciles stored trip statuses with the calendar.
//
// Status is derived on every mutating load, but trips nobody touches would
// otherwise keep a stale stored status forever. The sweep walks all trips and
// persists the derived status for any that lag, so list endpoints read
// current values without deriving per row.
package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/platform/keylock"
	clockport "github.com/ghumakkad/trip-share-api/internal/ports/out/clock"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/triprepo"
)

const saveRetries = 3

type Deps struct {
	Trips triprepo.Repository
	Clock clockport.Clock

	// Locks must be the same instance the booking operations use, so the sweep
	// and request handlers serialize on the same per-trip locks.
	Locks *keylock.KeyLock
	Log   *zap.Logger
}

type Service struct {
	trips triprepo.Repository
	clk   clockport.Clock
	locks *keylock.KeyLock
	log   *zap.Logger
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{trips: d.Trips, clk: d.Clock, locks: d.Locks, log: log}
}

// Result summarizes one sweep pass.
type Result struct {
	Scanned int
	Updated int
	Failed  int
}

// Run reconciles every trip once. A failure on one trip is logged and does
// not stop the pass.
func (s *Service) Run(ctx context.Context) (Result, error) {
	ts, err := s.trips.ListAll(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, t := range ts {
		res.Scanned++
		updated, err := s.reconcile(ctx, t.ID)
		if err != nil {
			res.Failed++
			s.log.Error("status reconcile failed", zap.String("tripId", string(t.ID)), zap.Error(err))
			continue
		}
		if updated {
			res.Updated++
		}
	}

	s.log.Info("status sweep finished",
		zap.Int("scanned", res.Scanned), zap.Int("updated", res.Updated), zap.Int("failed", res.Failed))
	return res, nil
}

func (s *Service) reconcile(ctx context.Context, id domain.TripID) (bool, error) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	var updated bool
	backoff := retry.WithMaxRetries(saveRetries, retry.NewConstant(25*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		t, err := s.trips.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, triprepo.ErrNotFound) {
				// Deleted since the listing; nothing to reconcile.
				return nil
			}
			return err
		}

		next := domain.DeriveStatus(t.Status, t.StartDate, t.EndDate, s.clk.Now())
		if next == t.Status {
			updated = false
			return nil
		}

		t.Status = next
		t.UpdatedAt = s.clk.Now()
		if err := s.trips.Save(ctx, t); err != nil {
			if errors.Is(err, triprepo.ErrVersionConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		updated = true
		return nil
	})
	return updated, err
}
