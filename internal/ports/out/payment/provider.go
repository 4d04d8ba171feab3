package payment

import "context"

// Provider creates a payment order with an external gateway.
//
// Unlike forecast and mail, a provider failure here propagates to the caller:
// there is no meaningful degraded mode for order creation.
type Provider interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency string, receipt string) (orderID string, err error)
}
