package providers

import (
	"errors"
	"fmt"
)

// ErrRemoteUnavailable indicates a transport failure, timeout, rate-limit
// exhaustion, or remote-side (5xx) error from either endpoint. Callers
// decide whether to retry; the client itself never retries.
var ErrRemoteUnavailable = errors.New("remote endpoint unavailable")

// MalformedResponseError indicates the remote service returned output that
// violates the requested schema or is not parseable JSON. Raw carries the
// original text so callers can attempt a best-effort salvage.
type MalformedResponseError struct {
	Schema string // schema name that was requested
	Raw    string // raw response text
	Reason error  // underlying parse/validation failure
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed structured response for %q: %v", e.Schema, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Reason }
