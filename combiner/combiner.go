// Package combiner wires several input services into one consumer. A
// Combiner value owns the subscriptions it makes; Attach connects a
// service to the user's combine callable, typically one feeding a slot of
// a concat. Releasing the combiner disconnects everything it attached.
package combiner

import (
	"sync"

	"github.com/blazbratanic/service-broker/service"
)

// Combiner collects subscription handles made through Attach.
type Combiner struct {
	mu      sync.Mutex
	handles []*service.Handle
}

// New creates an empty combiner.
func New() *Combiner {
	return &Combiner{}
}

// Attach subscribes combine to svc. The subscription lives until the
// combiner is released.
func Attach[A, R any](c *Combiner, svc *service.Service[A, R], combine func(A)) {
	h := svc.Connect(func(a A) (R, error) {
		combine(a)
		var zero R
		return zero, nil
	})

	c.mu.Lock()
	c.handles = append(c.handles, h)
	c.mu.Unlock()
}

// AttachNamed subscribes combine to every service under name via the
// broker.
func AttachNamed[A, R any](c *Combiner, b *service.Broker, name string, combine func(A)) error {
	handles, err := service.Subscribe(b, name, func(a A) (R, error) {
		combine(a)
		var zero R
		return zero, nil
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.handles = append(c.handles, handles...)
	c.mu.Unlock()
	return nil
}

// Release disconnects every subscription the combiner made.
func (c *Combiner) Release() {
	c.mu.Lock()
	handles := c.handles
	c.handles = nil
	c.mu.Unlock()

	service.ReleaseAll(handles)
}
