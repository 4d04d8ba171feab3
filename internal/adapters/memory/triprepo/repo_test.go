package triprepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memtriprepo "github.com/ghumakkad/trip-share-api/internal/adapters/memory/triprepo"
	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/triprepo"
)

func sampleTrip(id domain.TripID, creator domain.UserID) triprepo.Trip {
	now := time.Unix(100, 0).UTC()
	return triprepo.Trip{
		ID:             id,
		Title:          "Manali Run",
		Origin:         "Delhi",
		Destination:    "Manali",
		StartDate:      now.AddDate(0, 0, 7),
		EndDate:        now.AddDate(0, 0, 10),
		TotalSeats:     4,
		PricePerPerson: 1500,
		CreatorID:      creator,
		Status:         domain.TripStatusUpcoming,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestRepo_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := memtriprepo.NewRepo()
	if err := repo.Create(context.Background(), sampleTrip("t1", "u1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(context.Background(), sampleTrip("t1", "u1")); !errors.Is(err, triprepo.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Manali Run" || got.Version != 0 {
		t.Fatalf("got=%+v", got)
	}

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, triprepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_SaveChecksVersion(t *testing.T) {
	t.Parallel()

	repo := memtriprepo.NewRepo()
	_ = repo.Create(context.Background(), sampleTrip("t1", "u1"))

	a, _ := repo.GetByID(context.Background(), "t1")
	b, _ := repo.GetByID(context.Background(), "t1")

	a.Title = "First writer"
	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	b.Title = "Second writer"
	if err := repo.Save(context.Background(), b); !errors.Is(err, triprepo.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, _ := repo.GetByID(context.Background(), "t1")
	if got.Title != "First writer" || got.Version != 1 {
		t.Fatalf("got=%+v", got)
	}
}

func TestRepo_CloneIsolation(t *testing.T) {
	t.Parallel()

	repo := memtriprepo.NewRepo()
	tr := sampleTrip("t1", "u1")
	tr.Bookings = []domain.Booking{{ID: "b1", UserID: "u2", SeatsBooked: 1, Status: domain.BookingStatusPending}}
	_ = repo.Create(context.Background(), tr)

	got, _ := repo.GetByID(context.Background(), "t1")
	got.Bookings[0].Status = domain.BookingStatusAccepted

	again, _ := repo.GetByID(context.Background(), "t1")
	if again.Bookings[0].Status != domain.BookingStatusPending {
		t.Fatalf("mutation through returned copy leaked into the store")
	}
}

func TestRepo_ListOpenExcludingCreator(t *testing.T) {
	t.Parallel()

	repo := memtriprepo.NewRepo()
	mine := sampleTrip("t1", "me")
	other := sampleTrip("t2", "other")
	done := sampleTrip("t3", "other")
	done.Status = domain.TripStatusCompleted
	for _, tr := range []triprepo.Trip{mine, other, done} {
		_ = repo.Create(context.Background(), tr)
	}

	got, err := repo.ListOpenExcludingCreator(context.Background(), "me")
	if err != nil {
		t.Fatalf("ListOpenExcludingCreator: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t2" {
		t.Fatalf("got=%+v", got)
	}
}

func TestRepo_ListWithBookingBy(t *testing.T) {
	t.Parallel()

	repo := memtriprepo.NewRepo()
	tr := sampleTrip("t1", "creator")
	tr.Bookings = []domain.Booking{{ID: "b1", UserID: "u2", SeatsBooked: 2, Status: domain.BookingStatusPending}}
	_ = repo.Create(context.Background(), tr)
	_ = repo.Create(context.Background(), sampleTrip("t2", "creator"))

	got, err := repo.ListWithBookingBy(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ListWithBookingBy: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("got=%+v", got)
	}
}
