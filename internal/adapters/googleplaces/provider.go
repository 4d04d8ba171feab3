// Package googleplaces looks up popular places via the Google Maps Text
// Search API.
package googleplaces

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/ghumakkad/trip-share-api/internal/ports/out/places"
)

// maxResults caps what a single lookup returns; the API pages past this.
const maxResults = 10

type Provider struct {
	client *maps.Client
}

func NewProvider(apiKey string) (*Provider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("googleplaces: create client: %w", err)
	}
	return &Provider{client: c}, nil
}

func (p *Provider) Search(ctx context.Context, city string) ([]places.Place, error) {
	resp, err := p.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query: "popular places in " + city,
	})
	if err != nil {
		return nil, fmt.Errorf("googleplaces: text search: %w", err)
	}

	out := make([]places.Place, 0, maxResults)
	for _, r := range resp.Results {
		if len(out) == maxResults {
			break
		}
		pl := places.Place{
			Name:    r.Name,
			Address: r.FormattedAddress,
			Rating:  r.Rating,
		}
		if len(r.Photos) > 0 {
			pl.ImageURL = photoURL(r.Photos[0].PhotoReference)
		}
		out = append(out, pl)
	}
	return out, nil
}

func photoURL(ref string) string {
	return "https://maps.googleapis.com/maps/api/place/photo?maxwidth=400&photo_reference=" + ref
}
