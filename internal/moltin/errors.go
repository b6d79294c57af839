package moltin

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a product, image or customer that no longer exists
// upstream (a 404 from the API).
var ErrNotFound = errors.New("not found")

// APIError is any non-2xx answer from a catalog/cart/customer endpoint. It is
// recoverable: the conversation resets to the menu, nothing is retried.
type APIError struct {
	Endpoint string
	Status   int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moltin: %s returned status %d", e.Endpoint, e.Status)
}

// AuthError is a failed credential exchange. Nothing works until the next
// exchange succeeds, so it is kept distinct from ordinary API failures.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("moltin: credential exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
