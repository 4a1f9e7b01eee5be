package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{ClassInvalid, "invalid"},
		{ClassNotFound, "not_found"},
		{ClassMismatch, "type_mismatch"},
		{ClassRuntime, "runtime"},
		{ClassShutdown, "shutdown"},
		{Class(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.class.String())
	}
}

func TestWrapFormatsContext(t *testing.T) {
	err := Wrap(ErrNotFound, "Broker", "Call", "resolving name")
	require.Error(t, err)
	assert.Equal(t, "Broker.Call: resolving name failed: no service or group with this name exists", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWrapNilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "a", "b", "c"))
	assert.NoError(t, WrapInvalid(nil, "a", "b", "c"))
	assert.NoError(t, WrapNotFound(nil, "a", "b", "c"))
	assert.NoError(t, WrapMismatch(nil, "a", "b", "c"))
	assert.NoError(t, WrapRuntime(nil, "a", "b", "c"))
	assert.NoError(t, WrapShutdown(nil, "a", "b", "c"))
}

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{ErrNameInvalid, ClassInvalid},
		{ErrNameConflict, ClassInvalid},
		{ErrNotFound, ClassNotFound},
		{ErrNoSubscribers, ClassNotFound},
		{ErrTypeMismatch, ClassMismatch},
		{ErrShutdown, ClassShutdown},
		{ErrStopTimeout, ClassShutdown},
		{fmt.Errorf("user callback blew up"), ClassRuntime},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "error %v", tt.err)
	}
}

func TestClassifyWrapped(t *testing.T) {
	err := WrapMismatch(ErrTypeMismatch, "Broker", "Lookup", "downcast")

	var ce *ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ClassMismatch, ce.Class)
	assert.Equal(t, "Broker", ce.Component)
	assert.Equal(t, "Lookup", ce.Operation)

	// Classification survives further wrapping.
	outer := fmt.Errorf("while registering: %w", err)
	assert.Equal(t, ClassMismatch, Classify(outer))
	assert.True(t, IsMismatch(outer))
	assert.ErrorIs(t, outer, ErrTypeMismatch)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(WrapNotFound(ErrNotFound, "Broker", "Call", "lookup")))
	assert.True(t, IsShutdown(WrapShutdown(ErrShutdown, "Queue", "Pull", "pull")))
	assert.False(t, IsNotFound(ErrTypeMismatch))
	assert.False(t, IsShutdown(nil))
}
