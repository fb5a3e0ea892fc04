package payment

import (
	"errors"
	"fmt"
)

// Errors produced at the gateway boundary. Callers branch on these types with
// errors.As/Is instead of inspecting message text.

// ErrTransactionNotFound is returned when a checkout request ID has no
// corresponding transaction row.
var ErrTransactionNotFound = errors.New("transaction not found")

// ValidationError rejects malformed input before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthError means token acquisition failed or the provider rejected our
// credentials. Operator misconfiguration, not user error; never retried inline.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "gateway auth failed: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// TransportError means the provider could not be reached or did not answer in
// time. Recoverable by retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "gateway unreachable: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// Rejection means the provider responded but declined the request (bad
// parameters, permissions, business rules). No transaction row is created.
type Rejection struct {
	Code        string
	Description string
}

func (e *Rejection) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway rejected request (%s): %s", e.Code, e.Description)
	}
	return "gateway rejected request: " + e.Description
}
