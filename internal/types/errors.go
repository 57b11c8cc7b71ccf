package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the recoverable failure modes of the app. Remote-call
// failures are wrapped in NetworkError so callers can distinguish "rejected"
// from "unreachable".
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid authentication token")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrEmptyMessage       = errors.New("empty message")
	ErrNotConfigured      = errors.New("agent not configured")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAgentNotFound      = errors.New("agent not found")
)

// ValidationError reports which required configuration fields were left
// empty. The labels are the human-facing ones, not field ids.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.MissingFields, ", ")
}

// NetworkError wraps a transport-level failure of the remote boundary. It is
// surfaced as a transient notice and never forces a logout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
