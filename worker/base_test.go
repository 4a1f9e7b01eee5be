package worker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazbratanic/service-broker/service"
)

func TestBaseRegistersRequiredServices(t *testing.T) {
	b := service.NewBroker()

	w, err := NewBase[string]("worker", b, Hooks[string]{})
	require.NoError(t, err)

	names := b.List("")
	assert.Contains(t, names, "log.worker")
	assert.Contains(t, names, "error.worker")
	assert.Contains(t, names, "configuration.set.worker")
	assert.Contains(t, names, "configuration.get.worker")

	w.Close()
	assert.Empty(t, b.List(""))
}

func TestBaseNameCollision(t *testing.T) {
	b := service.NewBroker()

	w, err := NewBase[string]("a", b, Hooks[string]{})
	require.NoError(t, err)
	defer w.Close()

	_, err = NewBase[string]("a", b, Hooks[string]{})
	require.Error(t, err)

	// The failed construction must not leave stray registrations behind.
	assert.Len(t, b.List(""), 4)
}

func TestSetGetConfigurationViaBroker(t *testing.T) {
	b := service.NewBroker()

	var mu sync.Mutex
	applied := ""
	w, err := NewBase("a", b, Hooks[string]{
		Apply: func(c string) {
			mu.Lock()
			applied = c
			mu.Unlock()
		},
		Snapshot: func() string {
			mu.Lock()
			defer mu.Unlock()
			return applied
		},
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, service.CallVoid(b, "configuration.set.a", "Test"))

	configuration, err := service.Call[service.Void, string](b, "configuration.get.a", service.Void{})
	require.NoError(t, err)
	require.Len(t, configuration, 1)
	assert.Equal(t, "Test", configuration[0])
}

func TestConfigurationWithoutHooks(t *testing.T) {
	b := service.NewBroker()

	w, err := NewBase[string]("a", b, Hooks[string]{})
	require.NoError(t, err)
	defer w.Close()

	w.SetConfiguration("stored")
	assert.Equal(t, "stored", w.Configuration())
}

func TestLogEmitsOnLogService(t *testing.T) {
	b := service.NewBroker()

	w, err := NewBase[string]("a", b, Hooks[string]{})
	require.NoError(t, err)
	defer w.Close()

	var entries []LogEntry
	_, err = service.Subscribe(b, "log.a", func(e LogEntry) (service.Void, error) {
		entries = append(entries, e)
		return service.Void{}, nil
	})
	require.NoError(t, err)

	w.Log(LogLevelInfo, "starting up")
	w.Logger().Warn("queue backlog growing")

	require.Len(t, entries, 2)
	assert.Equal(t, LogLevelInfo, entries[0].Level)
	assert.Equal(t, "starting up", entries[0].Message)
	assert.Equal(t, "a", entries[0].Worker)
	assert.Equal(t, LogLevelWarn, entries[1].Level)
}

func TestErrorForwarding(t *testing.T) {
	b := service.NewBroker()

	w, err := NewBase[string]("a", b, Hooks[string]{})
	require.NoError(t, err)
	defer w.Close()

	var got []error
	_, err = service.Subscribe(b, "error.a", func(e error) (service.Void, error) {
		got = append(got, e)
		return service.Void{}, nil
	})
	require.NoError(t, err)

	w.Error(fmt.Errorf("task 17 failed"))
	w.Error(nil) // ignored

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "task 17")
}

func TestGroupErrorSubscription(t *testing.T) {
	// One callback collects the error streams of every worker.
	b := service.NewBroker()

	w1, err := NewBase[string]("alpha", b, Hooks[string]{})
	require.NoError(t, err)
	defer w1.Close()
	w2, err := NewBase[string]("beta", b, Hooks[string]{})
	require.NoError(t, err)
	defer w2.Close()

	count := 0
	_, err = service.Subscribe(b, "error", func(error) (service.Void, error) {
		count++
		return service.Void{}, nil
	})
	require.NoError(t, err)

	w1.Error(fmt.Errorf("one"))
	w2.Error(fmt.Errorf("two"))
	assert.Equal(t, 2, count)
}

func TestCloseIsIdempotent(t *testing.T) {
	b := service.NewBroker()

	w, err := NewBase[string]("a", b, Hooks[string]{})
	require.NoError(t, err)

	w.Close()
	w.Close()
	assert.Empty(t, b.List(""))
}
