package places

import "context"

// Place is a simplified point-of-interest result.
type Place struct {
	Name     string
	Address  string
	Rating   float32
	ImageURL string
}

// Provider looks up popular places in a city.
type Provider interface {
	Search(ctx context.Context, city string) ([]Place, error)
}

// Cache stores place lookups keyed by city. Implementations bound their
// contents with a TTL and, for in-process caches, a maximum entry count.
type Cache interface {
	Get(ctx context.Context, city string) ([]Place, bool, error)
	Set(ctx context.Context, city string, results []Place) error
}
