// Package queue provides a generic bounded blocking queue safe for multiple
// producers and consumers. It is the hand-off primitive between services and
// worker loops: producers block when the queue is full, consumers block when
// it is empty, and Close wakes everyone up.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/blazbratanic/service-broker/errors"
)

// Status reports the outcome of a non-blocking pull.
type Status int

const (
	// StatusOK means an item was returned.
	StatusOK Status = iota
	// StatusEmpty means the queue had no items.
	StatusEmpty
	// StatusClosed means the queue is closed and fully drained.
	StatusClosed
)

// String returns a human-readable representation of the pull status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats tracks queue activity. All counters are cumulative since creation.
type Stats struct {
	Pushes   int64 `json:"pushes"`
	Pulls    int64 `json:"pulls"`
	MaxDepth int64 `json:"max_depth"`
}

// Queue is a thread-safe FIFO with blocking push and pull. A capacity of
// zero or less means the queue is unbounded and Push never blocks.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	closed   bool

	notEmpty *sync.Cond
	notFull  *sync.Cond

	// Pulsed on push so consumers can select on arrival instead of polling.
	ready chan struct{}

	pushes   atomic.Int64
	pulls    atomic.Int64
	maxDepth atomic.Int64

	metrics *queueMetrics
}

// New creates a queue with the given capacity. Capacity <= 0 means
// unbounded.
func New[T any](capacity int, options ...Option) (*Queue[T], error) {
	opts := applyOptions(options...)

	var metrics *queueMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newQueueMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "Queue", "New", "metrics registration")
		}
	}

	q := &Queue[T]{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		metrics:  metrics,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q, nil
}

// MustNew is New for callers that use no metrics and cannot fail.
func MustNew[T any](capacity int) *Queue[T] {
	q, err := New[T](capacity)
	if err != nil {
		panic(err)
	}
	return q
}

// Push appends an item, blocking while the queue is at capacity. It returns
// ErrShutdown if the queue is closed before space becomes available.
func (q *Queue[T]) Push(item T) error {
	q.mu.Lock()
	for q.capacity > 0 && len(q.items) >= q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		q.mu.Unlock()
		return errors.WrapShutdown(errors.ErrShutdown, "Queue", "Push", "push to closed queue")
	}

	q.items = append(q.items, item)
	depth := int64(len(q.items))
	q.mu.Unlock()

	q.pushes.Add(1)
	if depth > q.maxDepth.Load() {
		q.maxDepth.Store(depth)
	}
	if q.metrics != nil {
		q.metrics.recordPush(depth)
	}

	q.notEmpty.Signal()
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Pull removes and returns the oldest item, blocking while the queue is
// empty. After Close, remaining items are still drained; once empty it
// returns ErrShutdown.
func (q *Queue[T]) Pull() (T, error) {
	q.mu.Lock()
	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		q.mu.Unlock()
		var zero T
		return zero, errors.WrapShutdown(errors.ErrShutdown, "Queue", "Pull", "pull from closed queue")
	}

	item := q.pop()
	q.mu.Unlock()

	q.recordPull()
	q.notFull.Signal()
	return item, nil
}

// TryPull removes and returns the oldest item without blocking.
func (q *Queue[T]) TryPull() (T, Status) {
	q.mu.Lock()
	if len(q.items) == 0 {
		closed := q.closed
		q.mu.Unlock()
		var zero T
		if closed {
			return zero, StatusClosed
		}
		return zero, StatusEmpty
	}

	item := q.pop()
	q.mu.Unlock()

	q.recordPull()
	q.notFull.Signal()
	return item, StatusOK
}

// Ready returns a channel that receives a pulse after each Push. Consumers
// may select on it and then drain with TryPull; a single pulse can cover
// several queued items.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the current number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the configured capacity, 0 meaning unbounded.
func (q *Queue[T]) Cap() int {
	if q.capacity <= 0 {
		return 0
	}
	return q.capacity
}

// Close marks the queue closed and wakes all blocked producers and
// consumers. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Stats returns a snapshot of the queue counters.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Pushes:   q.pushes.Load(),
		Pulls:    q.pulls.Load(),
		MaxDepth: q.maxDepth.Load(),
	}
}

// pop removes the head. Caller holds q.mu.
func (q *Queue[T]) pop() T {
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Release the backing array so long-lived queues do not pin memory.
		q.items = nil
	}
	return item
}

func (q *Queue[T]) recordPull() {
	q.pulls.Add(1)
	if q.metrics != nil {
		q.metrics.recordPull()
	}
}
