package concat

import (
	"sync"
	"time"

	"github.com/blazbratanic/service-broker/pkg/queue"
)

// record is one in-flight entry: creation time, per-slot put counts and
// the partially assembled tuple.
type record[Out any] struct {
	createdAt time.Time
	counts    []uint16
	values    Out
	emitted   bool
}

// core is the arity-independent join engine shared by the typed
// frontends. One mutex serializes the whole of each put: find-or-create,
// assign, count, policy checks.
type core[K comparable, Out any] struct {
	mu       sync.Mutex
	data     map[K]*record[Out]
	out      *queue.Queue[Out]
	arity    int
	complete Predicate
	erase    Predicate
}

func newCore[K comparable, Out any](arity, queueCapacity int, complete, erase Predicate) *core[K, Out] {
	return &core[K, Out]{
		data:     make(map[K]*record[Out]),
		out:      queue.MustNew[Out](queueCapacity),
		arity:    arity,
		complete: complete,
		erase:    erase,
	}
}

// put runs one slot assignment under the store mutex. The tuple is pushed
// outside the lock so a bounded output queue cannot stall other
// producers' puts on different keys.
func (c *core[K, Out]) put(k K, slot int, assign func(*Out)) error {
	c.mu.Lock()

	rec, ok := c.data[k]
	if !ok {
		rec = &record[Out]{
			createdAt: time.Now(),
			counts:    make([]uint16, c.arity),
		}
		c.data[k] = rec
	}

	assign(&rec.values)
	rec.counts[slot]++

	entry := Entry{CreatedAt: rec.createdAt, Counts: rec.counts}

	// Emit only on the transition into completeness, so eviction policies
	// that keep completed entries around cannot duplicate output.
	var emit *Out
	if !rec.emitted && c.complete(entry) {
		v := rec.values
		emit = &v
		rec.emitted = true
	}
	if c.erase(entry) {
		delete(c.data, k)
	}
	c.mu.Unlock()

	if emit != nil {
		return c.out.Push(*emit)
	}
	return nil
}

func (c *core[K, Out]) tryGet() (Out, bool) {
	v, status := c.out.TryPull()
	return v, status == queue.StatusOK
}

func (c *core[K, Out]) get() (Out, error) {
	return c.out.Pull()
}

// size reports the number of in-flight entries still in the store.
func (c *core[K, Out]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func (c *core[K, Out]) close() {
	c.out.Close()
}
