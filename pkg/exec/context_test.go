package exec

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseInvokeRuns(t *testing.T) {
	b := NewBase(func(a int) (int, error) {
		return a * 2, nil
	}, Hooks[string]{})

	r, err := b.Invoke(21)
	require.NoError(t, err)
	assert.Equal(t, 42, r)
}

func TestSetConfigurationCommitsImmediatelyWhenIdle(t *testing.T) {
	applied := ""
	b := NewBase(func(a int) (int, error) {
		return a, nil
	}, Hooks[string]{
		Apply:    func(c string) { applied = c },
		Snapshot: func() string { return applied },
	})

	b.SetConfiguration("fast-path")
	assert.Equal(t, "fast-path", applied, "idle context commits without waiting for Invoke")
	assert.Equal(t, "fast-path", b.Configuration())
}

func TestSetConfigurationDefersWhileRunning(t *testing.T) {
	var mu sync.Mutex
	applied := ""

	started := make(chan struct{})
	release := make(chan struct{})

	b := NewBase(func(a int) (int, error) {
		close(started)
		<-release
		mu.Lock()
		defer mu.Unlock()
		return a, nil
	}, Hooks[string]{
		Apply: func(c string) {
			mu.Lock()
			applied = c
			mu.Unlock()
		},
	})

	done := make(chan struct{})
	go func() {
		_, _ = b.Invoke(1)
		close(done)
	}()

	<-started
	b.SetConfiguration("deferred")

	mu.Lock()
	assert.Equal(t, "", applied, "configuration must not land mid-task")
	mu.Unlock()

	close(release)
	<-done

	// The next task commits the staged configuration before running.
	_, err := b.Invoke(2)
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "deferred", applied)
	mu.Unlock()
}

func TestConfigurationWithoutHooksReturnsStorage(t *testing.T) {
	b := NewBase(func(a int) (int, error) {
		return a, nil
	}, Hooks[string]{})

	b.SetConfiguration("stored")
	assert.Equal(t, "stored", b.Configuration())
}

func TestLastSetWins(t *testing.T) {
	b := NewBase(func(a int) (int, error) {
		time.Sleep(time.Millisecond)
		return a, nil
	}, Hooks[string]{})

	b.SetConfiguration("one")
	b.SetConfiguration("two")
	assert.Equal(t, "two", b.Configuration())
}
