package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the sweep at the next midnight UTC and every 24 hours after.
type Scheduler struct {
	svc *Service
	log *zap.Logger

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(svc *Service, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		svc:  svc,
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the scheduler loop. Call Stop to shut it down.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop signals the loop to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop() {
	defer close(s.done)

	for {
		wait := untilNextMidnightUTC(time.Now().UTC())
		timer := time.NewTimer(wait)
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		if _, err := s.svc.Run(ctx); err != nil {
			s.log.Error("scheduled status sweep failed", zap.Error(err))
		}
		cancel()
	}
}

func untilNextMidnightUTC(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(now)
}
