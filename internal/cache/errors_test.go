package cache

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessageIncludesTypeAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectionError("redis get failed", cause)

	assert.Contains(t, err.Error(), "connection")
	assert.Contains(t, err.Error(), "redis get failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewSerializationError("failed to marshal value", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestError_TypePredicates(t *testing.T) {
	connErr := NewConnectionError("unreachable", nil)
	serErr := NewSerializationError("bad payload", nil)

	assert.True(t, IsConnectionError(connErr))
	assert.False(t, IsConnectionError(serErr))
	assert.True(t, IsSerializationError(serErr))
	assert.False(t, IsSerializationError(connErr))

	// Predicates see through wrapping.
	wrapped := fmt.Errorf("operation failed: %w", connErr)
	assert.True(t, IsConnectionError(wrapped))

	assert.False(t, IsConnectionError(errors.New("plain")))
	assert.False(t, IsConnectionError(nil))
}

func TestErrBackendsUnavailable_IsInternal(t *testing.T) {
	assert.True(t, IsType(ErrBackendsUnavailable, ErrTypeInternal))
}
