// Package openweather fetches trip forecasts from the OpenWeather 5-day API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ghumakkad/trip-share-api/internal/domain"
)

const defaultBaseURL = "https://api.openweathermap.org"

type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewProvider(apiKey, baseURL string, client *http.Client) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{apiKey: apiKey, baseURL: baseURL, client: client}
}

// forecastResponse mirrors the fields we consume from /data/2.5/forecast.
type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

// Fetch returns one entry per forecast day that falls inside [start, end].
// The upstream API returns 3-hourly slots; the first slot of each day wins.
func (p *Provider) Fetch(ctx context.Context, city string, start, end time.Time) ([]domain.ForecastEntry, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/data/2.5/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openweather: status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("openweather: decode: %w", err)
	}

	startDay, endDay := domain.DateOnly(start), domain.DateOnly(end)
	seen := make(map[string]bool)
	var out []domain.ForecastEntry
	for _, slot := range body.List {
		day := domain.DateOnly(time.Unix(slot.Dt, 0).UTC())
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		key := day.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true

		e := domain.ForecastEntry{Date: day, TempC: slot.Main.Temp}
		if len(slot.Weather) > 0 {
			e.Description = slot.Weather[0].Description
			e.Icon = slot.Weather[0].Icon
		}
		out = append(out, e)
	}
	return out, nil
}
