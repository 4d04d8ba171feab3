package notifier

import "context"

// Notifier delivers an email notification to a user.
//
// Accept/Reject dispatch notifications after the booking state change has been
// persisted and the per-trip lock released; a delivery failure is logged by
// the caller and never rolls back the state change.
type Notifier interface {
	Notify(ctx context.Context, email, subject, bodyHTML string) error
}
