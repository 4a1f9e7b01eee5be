// Package service implements named, typed multicast channels and the broker
// that connects them. A Service pairs a dotted name with a dispatcher whose
// subscribers are callables of one payload and one result type; the Broker
// resolves names and groups of names to concrete services through a
// hierarchical directory.
package service

import "fmt"

// Void marks the absence of a payload or result. A Service[Void, R] takes
// no argument; a Service[A, Void] returns nothing.
type Void struct{}

// Service is a named multicast channel. Emitting invokes every subscriber
// on the caller's goroutine, in registration order. Clones share the
// dispatcher, so one subscriber list serves any number of Service values.
type Service[A, R any] struct {
	name string
	disp *dispatcher[A, R]
}

// ServiceOption configures a new service.
type ServiceOption func(*dispatcherConfig)

// Trapping makes Emit run every subscriber even when one fails, combining
// the failures into one error. The default is to stop at the first failure.
func Trapping() ServiceOption {
	return func(c *dispatcherConfig) {
		c.trapping = true
	}
}

// New creates a service with a fresh dispatcher.
func New[A, R any](name string, options ...ServiceOption) *Service[A, R] {
	cfg := dispatcherConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	return &Service[A, R]{
		name: name,
		disp: newDispatcher[A, R](cfg),
	}
}

// Name returns the service name as given at construction.
func (s *Service[A, R]) Name() string {
	return s.name
}

// Connect subscribes fn. The returned handle disconnects the subscriber
// when released.
func (s *Service[A, R]) Connect(fn func(A) (R, error)) *Handle {
	return s.disp.connect(fn)
}

// Emit invokes every subscriber with a.
//
// For a non-void result type the result of the last successful subscriber
// is returned; emitting with zero subscribers fails with ErrNoSubscribers.
// A void service with zero subscribers is a no-op.
//
// A failing subscriber stops dispatch and its error is surfaced to the
// caller, unless the service was created with Trapping().
func (s *Service[A, R]) Emit(a A) (R, error) {
	r, err := s.disp.emit(a)
	if err != nil {
		return r, fmt.Errorf("service %q: %w", s.name, err)
	}
	return r, nil
}

// Clone returns a service value sharing this service's dispatcher.
func (s *Service[A, R]) Clone() *Service[A, R] {
	return &Service[A, R]{name: s.name, disp: s.disp}
}

// Subscribers returns the current number of connected subscribers.
func (s *Service[A, R]) Subscribers() int {
	return s.disp.len()
}

// isVoid reports whether T is the Void marker.
func isVoid[T any]() bool {
	var zero T
	_, ok := any(zero).(Void)
	return ok
}
