package core

import (
	"errors"
	"fmt"
)

// Predefined errors for the failure taxonomy. Nothing in this taxonomy is
// fatal to the process: callers degrade the affected contribution and carry
// on with the turn.
var (
	// ErrValidation indicates a malformed memory write or capability
	// arguments. Dropped and logged; retrying with the same payload is a bug.
	ErrValidation = errors.New("validation failed")

	// ErrTimeout indicates a capability or reasoning-service deadline was
	// exceeded.
	ErrTimeout = errors.New("deadline exceeded")

	// ErrReasoningService indicates the routing or synthesis call failed.
	// Routing degrades to "no tools invoked"; synthesis degrades to a
	// templated reply.
	ErrReasoningService = errors.New("reasoning service unavailable")

	// ErrUnknownCapability indicates a proposal named a capability the
	// registry does not hold.
	ErrUnknownCapability = errors.New("unknown capability")
)

// AdapterError wraps a capability provider failure with the capability name.
//
// errors.Is(err, ...) and errors.As(err, ...) work through the wrapper.
type AdapterError struct {
	// Capability is the registry name of the failed capability.
	Capability string

	// Err is the underlying provider error.
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter %s: %v", e.Capability, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError wraps err with the capability name. Returns nil when err
// is nil, so it is safe to use on every return path.
func NewAdapterError(capability string, err error) error {
	if err == nil {
		return nil
	}
	return &AdapterError{Capability: capability, Err: err}
}

// ValidationErrorf builds a ValidationError-class error with context.
func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
