package payments

import "fmt"

// Error is an application-level error carrying an HTTP-ish status and a
// machine-readable code for the transport layer to map.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}
