package assistant

import "context"

// Provider answers free-form travel questions. Pure pass-through; no state.
type Provider interface {
	Reply(ctx context.Context, message string) (string, error)
}
