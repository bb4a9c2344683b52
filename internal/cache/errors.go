package cache

import (
	"errors"
	"fmt"
)

// ErrorType classifies cache errors so the Service can decide between
// failover, surfacing to the caller, and degrading to a miss.
type ErrorType string

const (
	// ErrTypeConnection represents connectivity failures (unreachable,
	// timeout, auth). Recovered via failover, never surfaced to callers.
	ErrTypeConnection ErrorType = "connection"
	// ErrTypeSerialization represents payload encode/decode failures.
	// Surfaced on write, treated as a miss on read.
	ErrTypeSerialization ErrorType = "serialization"
	// ErrTypeCapacity represents allocation or pool-exhaustion failures.
	ErrTypeCapacity ErrorType = "capacity"
	// ErrTypeInternal represents internal system errors.
	ErrTypeInternal ErrorType = "internal"
)

// Error is a structured cache error carrying a type discriminator and an
// optional wrapped cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates a connectivity error.
func NewConnectionError(message string, cause error) *Error {
	return &Error{Type: ErrTypeConnection, Message: message, Cause: cause}
}

// NewSerializationError creates a payload encode/decode error.
func NewSerializationError(message string, cause error) *Error {
	return &Error{Type: ErrTypeSerialization, Message: message, Cause: cause}
}

// NewCapacityError creates an allocation/pool-exhaustion error.
func NewCapacityError(message string, cause error) *Error {
	return &Error{Type: ErrTypeCapacity, Message: message, Cause: cause}
}

// ErrBackendsUnavailable signals that both backends failed in the same
// call. The local backend never fails by construction, so this indicates
// a bug rather than ordinary unavailability.
var ErrBackendsUnavailable = &Error{
	Type:    ErrTypeInternal,
	Message: "all cache backends unavailable",
}

// IsType reports whether err is a cache Error of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}

// IsConnectionError reports whether err is a connectivity failure.
func IsConnectionError(err error) bool {
	return IsType(err, ErrTypeConnection)
}

// IsSerializationError reports whether err is an encode/decode failure.
func IsSerializationError(err error) bool {
	return IsType(err, ErrTypeSerialization)
}
