package concat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type A struct{ ID int }
type B struct{ ID int }
type C struct{ ID int }

func indexA(a A) int { return a.ID }
func indexB(b B) int { return b.ID }
func indexC(c C) int { return c.ID }

func newFourWay() *Concat4[int, A, A, B, C] {
	return NewBuilder4[int, A, A, B, C](indexA, indexA, indexB, indexC).Build()
}

func TestConcatenate(t *testing.T) {
	c := newFourWay()

	require.NoError(t, c.Put0(A{1}))
	_, ok := c.TryGet()
	assert.False(t, ok)

	require.NoError(t, c.Put1(A{1}))
	_, ok = c.TryGet()
	assert.False(t, ok)

	require.NoError(t, c.Put2(B{1}))
	_, ok = c.TryGet()
	assert.False(t, ok)

	require.NoError(t, c.Put3(C{1}))
	result, ok := c.TryGet()
	require.True(t, ok)

	assert.Equal(t, 1, result.V0.ID)
	assert.Equal(t, 1, result.V1.ID)
	assert.Equal(t, 1, result.V2.ID)
	assert.Equal(t, 1, result.V3.ID)
	assert.Equal(t, 0, c.Size(), "default policy erases on emit")
}

func TestConcatenateBlockingGet(t *testing.T) {
	c := newFourWay()

	require.NoError(t, c.Put0(A{1}))
	require.NoError(t, c.Put1(A{1}))

	go func() {
		_ = c.Put2(B{1})
		_ = c.Put3(C{1})
	}()

	result, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, result.V0.ID)
	assert.Equal(t, 1, result.V1.ID)
	assert.Equal(t, 1, result.V2.ID)
	assert.Equal(t, 1, result.V3.ID)
}

func TestConcatenateFourProducers(t *testing.T) {
	const n = 10000
	c := newFourWay()

	go func() {
		for i := 0; i < n; i++ {
			_ = c.Put0(A{i})
		}
	}()
	go func() {
		for i := 0; i < n; i++ {
			_ = c.Put1(A{i})
		}
	}()
	go func() {
		for i := 0; i < n; i++ {
			_ = c.Put2(B{i})
		}
	}()
	go func() {
		for i := 0; i < n; i++ {
			_ = c.Put3(C{i})
		}
	}()

	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		result, err := c.Get()
		require.NoError(t, err)

		// Every tuple carries one key across all four slots.
		assert.Equal(t, result.V0.ID, result.V1.ID)
		assert.Equal(t, result.V0.ID, result.V2.ID)
		assert.Equal(t, result.V0.ID, result.V3.ID)

		assert.False(t, seen[result.V0.ID], "duplicate tuple for key %d", result.V0.ID)
		seen[result.V0.ID] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, 0, c.Size())
}

func TestOccurrencesPolicy(t *testing.T) {
	// Slot 0 must be put twice before the entry is complete.
	c := NewBuilder2[int, A, B](indexA, indexB).
		Complete(Occurrences(2, 1)).
		Build()

	require.NoError(t, c.Put0(A{7}))
	require.NoError(t, c.Put1(B{7}))
	_, ok := c.TryGet()
	assert.False(t, ok)

	require.NoError(t, c.Put0(A{7}))
	result, ok := c.TryGet()
	require.True(t, ok)
	assert.Equal(t, 7, result.V0.ID)
	assert.Equal(t, 7, result.V1.ID)
}

func TestAssignOverride(t *testing.T) {
	type batch struct {
		ID  int
		Sum int
	}
	c := NewBuilder2[int, batch, B](
		func(b batch) int { return b.ID },
		indexB,
	).
		Complete(Occurrences(3, 1)).
		Assign0(func(dst *batch, v batch) {
			dst.ID = v.ID
			dst.Sum += v.Sum
		}).
		Build()

	require.NoError(t, c.Put0(batch{ID: 1, Sum: 10}))
	require.NoError(t, c.Put0(batch{ID: 1, Sum: 20}))
	require.NoError(t, c.Put0(batch{ID: 1, Sum: 30}))
	require.NoError(t, c.Put1(B{1}))

	result, ok := c.TryGet()
	require.True(t, ok)
	assert.Equal(t, 60, result.V0.Sum, "assigner merges instead of overwriting")
}

func TestNoDuplicateEmissionWithKeepAlive(t *testing.T) {
	// Entries stay in the store after completion; further puts on the
	// same key must not emit the tuple again.
	c := NewBuilder2[int, A, B](indexA, indexB).
		Erase(Never).
		Build()

	require.NoError(t, c.Put0(A{1}))
	require.NoError(t, c.Put1(B{1}))

	_, ok := c.TryGet()
	require.True(t, ok)

	require.NoError(t, c.Put0(A{1}))
	require.NoError(t, c.Put1(B{1}))
	_, ok = c.TryGet()
	assert.False(t, ok, "completion fires once per entry")
	assert.Equal(t, 1, c.Size(), "entry kept alive by Never eviction")
}

func TestOlderThanEviction(t *testing.T) {
	// Stale partial entries are dropped once a put observes them expired.
	c := NewBuilder2[int, A, B](indexA, indexB).
		Erase(Any(AllPresent, OlderThan(10*time.Millisecond))).
		Build()

	require.NoError(t, c.Put0(A{1}))
	assert.Equal(t, 1, c.Size())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Put0(A{1}))
	assert.Equal(t, 0, c.Size(), "expired entry evicted")

	// The evicted key never completed, so nothing was emitted.
	_, ok := c.TryGet()
	assert.False(t, ok)
}

func TestThreeWay(t *testing.T) {
	c := NewBuilder3[int, A, B, C](indexA, indexB, indexC).Build()

	require.NoError(t, c.Put2(C{4}))
	require.NoError(t, c.Put0(A{4}))
	require.NoError(t, c.Put1(B{4}))

	result, ok := c.TryGet()
	require.True(t, ok)
	assert.Equal(t, 4, result.V0.ID)
	assert.Equal(t, 4, result.V1.ID)
	assert.Equal(t, 4, result.V2.ID)
}

func TestCloseWakesGet(t *testing.T) {
	c := newFourWay()

	errs := make(chan error, 1)
	go func() {
		_, err := c.Get()
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	c.Close()

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Get not woken by Close")
	}
}
