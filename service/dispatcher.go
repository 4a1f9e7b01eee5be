package service

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/blazbratanic/service-broker/errors"
)

type dispatcherConfig struct {
	trapping bool
}

type subscriber[A, R any] struct {
	id uuid.UUID
	fn func(A) (R, error)
}

// dispatcher holds the shared subscriber list behind a service and its
// clones. Emit snapshots the list before invoking anyone, so subscribers
// may connect or disconnect (including themselves) mid-dispatch without
// holding up the lock.
type dispatcher[A, R any] struct {
	mu   sync.RWMutex
	subs []subscriber[A, R]
	cfg  dispatcherConfig
}

func newDispatcher[A, R any](cfg dispatcherConfig) *dispatcher[A, R] {
	return &dispatcher[A, R]{cfg: cfg}
}

func (d *dispatcher[A, R]) connect(fn func(A) (R, error)) *Handle {
	id := uuid.New()

	d.mu.Lock()
	d.subs = append(d.subs, subscriber[A, R]{id: id, fn: fn})
	d.mu.Unlock()

	return newHandle(id, func() { d.disconnect(id) })
}

func (d *dispatcher[A, R]) disconnect(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, sub := range d.subs {
		if sub.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return
		}
	}
}

func (d *dispatcher[A, R]) len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

func (d *dispatcher[A, R]) emit(a A) (R, error) {
	d.mu.RLock()
	snapshot := make([]subscriber[A, R], len(d.subs))
	copy(snapshot, d.subs)
	d.mu.RUnlock()

	var last R
	if len(snapshot) == 0 {
		if isVoid[R]() {
			return last, nil
		}
		return last, errors.ErrNoSubscribers
	}

	var trapped error
	delivered := false
	for _, sub := range snapshot {
		r, err := sub.fn(a)
		if err != nil {
			err = fmt.Errorf("%w: %w", errors.ErrSubscriberFailure, err)
			if !d.cfg.trapping {
				var zero R
				return zero, err
			}
			trapped = multierr.Append(trapped, err)
			continue
		}
		last = r
		delivered = true
	}

	if !delivered && !isVoid[R]() && trapped != nil {
		var zero R
		return zero, trapped
	}
	return last, trapped
}
