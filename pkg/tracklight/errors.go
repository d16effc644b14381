package tracklight

import (
	"errors"
	"fmt"
)

// Sentinel errors for the orchestrator lifecycle.
var (
	// ErrAlreadyStarted indicates Start was called more than once.
	ErrAlreadyStarted = errors.New("tracklight: already started")

	// ErrStopped indicates the orchestrator has been stopped.
	ErrStopped = errors.New("tracklight: stopped")
)

// AdaptorStartError reports an adaptor that failed to start and was dropped
// from the active set for this process lifetime.
type AdaptorStartError struct {
	Adaptor  string
	Err      error
	TimedOut bool
}

// Error implements the error interface.
func (e *AdaptorStartError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("adaptor %q timed out during start: %v", e.Adaptor, e.Err)
	}
	return fmt.Sprintf("adaptor %q failed to start: %v", e.Adaptor, e.Err)
}

// Unwrap returns the underlying error.
func (e *AdaptorStartError) Unwrap() error {
	return e.Err
}

// CodedError is implemented by errors that carry a numeric code. Tracked
// error events include the code as the error_code parameter.
type CodedError interface {
	error
	Code() int
}
