package forecast

import (
	"context"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

// Provider fetches a weather forecast for a destination city.
//
// Forecast lookup is best effort: callers treat an error as "no forecast"
// and proceed without the data.
type Provider interface {
	Fetch(ctx context.Context, city string, start, end time.Time) ([]domain.ForecastEntry, error)
}
