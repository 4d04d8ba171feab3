// Package triprepo is the Postgres implementation of the trip repository.
//
// A trip row carries a version column. Save runs in a transaction: the
// UPDATE is conditional on the version the caller loaded, and bookings are
// replaced wholesale. Zero rows updated means another writer got there
// first.
package triprepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghumakkad/trip-share-api/internal/adapters/postgres"
	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/triprepo"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const tripColumns = `external_id, title, origin, destination, start_date, end_date,
	total_seats, price_per_person, transport_mode, image_url, contact_phone,
	creator_id, status, forecast, version, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	forecast, err := marshalForecast(t.Forecast)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO trips (`+tripColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, $15, $16)`,
		t.ID, t.Title, t.Origin, t.Destination, t.StartDate, t.EndDate,
		t.TotalSeats, t.PricePerPerson, t.TransportMode, t.ImageURL, t.ContactPhone,
		t.CreatorID, t.Status, forecast, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return triprepo.ErrAlreadyExists
		}
		return fmt.Errorf("insert trip: %w", err)
	}

	if err := insertBookings(ctx, tx, t.ID, t.Bookings); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	forecast, err := marshalForecast(t.Forecast)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE trips SET
			title = $2, origin = $3, destination = $4, start_date = $5, end_date = $6,
			total_seats = $7, price_per_person = $8, transport_mode = $9,
			image_url = $10, contact_phone = $11, status = $12, forecast = $13,
			version = version + 1, updated_at = $14
		WHERE external_id = $1 AND version = $15`,
		t.ID, t.Title, t.Origin, t.Destination, t.StartDate, t.EndDate,
		t.TotalSeats, t.PricePerPerson, t.TransportMode,
		t.ImageURL, t.ContactPhone, t.Status, forecast,
		t.UpdatedAt, t.Version,
	)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or stale; disambiguate for the caller.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM trips WHERE external_id = $1)`, t.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check trip exists: %w", err)
		}
		if !exists {
			return triprepo.ErrNotFound
		}
		return triprepo.ErrVersionConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM trip_bookings WHERE trip_id = $1`, t.ID); err != nil {
		return fmt.Errorf("delete bookings: %w", err)
	}
	if err := insertBookings(ctx, tx, t.ID, t.Bookings); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	ts, err := r.query(ctx, `WHERE t.external_id = $1`, id)
	if err != nil {
		return triprepo.Trip{}, err
	}
	if len(ts) == 0 {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return ts[0], nil
}

func (r *Repo) ListAll(ctx context.Context) ([]triprepo.Trip, error) {
	return r.query(ctx, ``)
}

func (r *Repo) ListOpenExcludingCreator(ctx context.Context, u domain.UserID) ([]triprepo.Trip, error) {
	return r.query(ctx, `WHERE t.creator_id <> $1 AND t.status IN ('upcoming', 'ongoing')`, u)
}

func (r *Repo) ListByCreator(ctx context.Context, u domain.UserID) ([]triprepo.Trip, error) {
	return r.query(ctx, `WHERE t.creator_id = $1`, u)
}

func (r *Repo) ListWithBookingBy(ctx context.Context, u domain.UserID) ([]triprepo.Trip, error) {
	return r.query(ctx, `
		WHERE EXISTS (
			SELECT 1 FROM trip_bookings b
			WHERE b.trip_id = t.external_id AND b.user_id = $1
		)`, u)
}

// query loads trips matching the WHERE clause, then attaches their bookings
// in insertion order.
func (r *Repo) query(ctx context.Context, where string, args ...any) ([]triprepo.Trip, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.external_id, t.title, t.origin, t.destination, t.start_date, t.end_date,
			t.total_seats, t.price_per_person, t.transport_mode, t.image_url, t.contact_phone,
			t.creator_id, t.status, t.forecast, t.version, t.created_at, t.updated_at
		FROM trips t `+where+`
		ORDER BY t.start_date, t.created_at, t.external_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var (
		out   []triprepo.Trip
		index = make(map[domain.TripID]int)
	)
	for rows.Next() {
		var (
			t        triprepo.Trip
			forecast []byte
		)
		err := rows.Scan(
			&t.ID, &t.Title, &t.Origin, &t.Destination, &t.StartDate, &t.EndDate,
			&t.TotalSeats, &t.PricePerPerson, &t.TransportMode, &t.ImageURL, &t.ContactPhone,
			&t.CreatorID, &t.Status, &forecast, &t.Version, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		if len(forecast) > 0 {
			if err := json.Unmarshal(forecast, &t.Forecast); err != nil {
				return nil, fmt.Errorf("decode forecast: %w", err)
			}
		}
		t.Bookings = []domain.Booking{}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, t := range out {
		ids = append(ids, string(t.ID))
	}
	brows, err := r.pool.Query(ctx, `
		SELECT trip_id, external_id, user_id, seats_booked, status
		FROM trip_bookings
		WHERE trip_id = ANY($1)
		ORDER BY trip_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer brows.Close()

	for brows.Next() {
		var (
			tripID domain.TripID
			b      domain.Booking
		)
		if err := brows.Scan(&tripID, &b.ID, &b.UserID, &b.SeatsBooked, &b.Status); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if i, ok := index[tripID]; ok {
			out[i].Bookings = append(out[i].Bookings, b)
		}
	}
	if err := brows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

func insertBookings(ctx context.Context, tx pgx.Tx, tripID domain.TripID, bookings []domain.Booking) error {
	for i, b := range bookings {
		_, err := tx.Exec(ctx, `
			INSERT INTO trip_bookings (trip_id, external_id, user_id, seats_booked, status, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			tripID, b.ID, b.UserID, b.SeatsBooked, b.Status, i,
		)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
	}
	return nil
}

func marshalForecast(fc []domain.ForecastEntry) ([]byte, error) {
	if len(fc) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encode forecast: %w", err)
	}
	return raw, nil
}
