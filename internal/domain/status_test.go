package domain_test

import (
	"testing"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeriveStatus_DateWindows(t *testing.T) {
	t.Parallel()

	start := date("2024-01-01")
	end := date("2024-01-05")

	cases := []struct {
		name string
		now  time.Time
		want domain.TripStatus
	}{
		{"before start", date("2023-12-20"), domain.TripStatusUpcoming},
		{"on start", date("2024-01-01"), domain.TripStatusOngoing},
		{"mid trip", date("2024-01-03"), domain.TripStatusOngoing},
		{"on end", date("2024-01-05"), domain.TripStatusOngoing},
		{"after end", date("2024-01-10"), domain.TripStatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.DeriveStatus(domain.TripStatusUpcoming, start, end, tc.now)
			if got != tc.want {
				t.Fatalf("DeriveStatus(now=%s) = %s, want %s", tc.now.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestDeriveStatus_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	start := date("2024-01-01")
	end := date("2024-01-05")
	// 23:59 on the end date is still ongoing: only calendar dates count.
	now := time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)
	if got := domain.DeriveStatus(domain.TripStatusOngoing, start, end, now); got != domain.TripStatusOngoing {
		t.Fatalf("got %s, want ongoing", got)
	}
}

func TestDeriveStatus_CancelledIsTerminal(t *testing.T) {
	t.Parallel()

	start := date("2024-01-01")
	end := date("2024-01-05")
	for _, now := range []time.Time{date("2023-12-01"), date("2024-01-03"), date("2024-02-01")} {
		if got := domain.DeriveStatus(domain.TripStatusCancelled, start, end, now); got != domain.TripStatusCancelled {
			t.Fatalf("cancelled trip derived to %s at %s", got, now.Format("2006-01-02"))
		}
	}
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	t.Parallel()

	start := date("2024-01-01")
	end := date("2024-01-05")
	for _, now := range []time.Time{date("2023-12-01"), date("2024-01-03"), date("2024-02-01")} {
		for _, cur := range []domain.TripStatus{
			domain.TripStatusUpcoming, domain.TripStatusOngoing, domain.TripStatusCompleted, domain.TripStatusCancelled,
		} {
			once := domain.DeriveStatus(cur, start, end, now)
			twice := domain.DeriveStatus(once, start, end, now)
			if once != twice {
				t.Fatalf("not idempotent: %s -> %s -> %s", cur, once, twice)
			}
		}
	}
}
