package service

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/blazbratanic/service-broker/errors"
)

// erased is a type-erased registry entry. The fingerprint is generated
// once per (A, R) pair, so recovering the typed service is a fingerprint
// equality test followed by a static type assertion.
type erased struct {
	fingerprint reflect.Type
	service     any
}

func fingerprintOf[A, R any]() reflect.Type {
	return reflect.TypeOf((*func(A) (R, error))(nil)).Elem()
}

// Broker pairs a directory with a registry of typed services. For every
// live leaf in the directory there is exactly one registry entry under
// the same normalized name.
//
// Reads (List, Lookup, Call, Subscribe resolution) may run concurrently;
// mutations (Register, Remove, Clear) take the write lock. The broker does
// not serialize user-level emits; service dispatchers do.
type Broker struct {
	mu       sync.RWMutex
	dir      *Directory
	services map[string]erased
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		dir:      NewDirectory(),
		services: make(map[string]erased),
	}
}

// Register adds a service to the broker under its normalized name.
func Register[A, R any](b *Broker, svc *Service[A, R]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.dir.Add(svc.Name()); err != nil {
		return err
	}
	b.services[Normalize(svc.Name())] = erased{
		fingerprint: fingerprintOf[A, R](),
		service:     svc,
	}
	return nil
}

// Remove drops every service under the normalized name and tombstones the
// subtree. It returns the number of services removed; removing an unknown
// name removes nothing.
func (b *Broker) Remove(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	leaves := b.dir.List(name)
	for _, leaf := range leaves {
		delete(b.services, leaf)
	}
	b.dir.Remove(name)
	return len(leaves)
}

// Lookup returns the typed service registered under the normalized name.
func Lookup[A, R any](b *Broker, name string) (*Service[A, R], error) {
	b.mu.RLock()
	entry, ok := b.services[Normalize(name)]
	b.mu.RUnlock()

	if !ok {
		return nil, errors.WrapNotFound(errors.ErrNotFound, "Broker", "Lookup", "resolving "+name)
	}
	return downcast[A, R](entry, name, "Lookup")
}

// SubscribeOption configures Subscribe.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	maskMismatch bool
}

// MaskMismatch makes Subscribe skip leaves whose type does not match the
// callback instead of failing fast.
func MaskMismatch() SubscribeOption {
	return func(c *subscribeConfig) {
		c.maskMismatch = true
	}
}

// Subscribe connects fn to every service under the normalized name and
// returns one handle per subscription. It fails with ErrNotFound when no
// services exist under the name. A leaf of mismatching type fails the
// whole call before any subscription is made, unless MaskMismatch is
// given.
func Subscribe[A, R any](b *Broker, name string, fn func(A) (R, error), options ...SubscribeOption) ([]*Handle, error) {
	cfg := subscribeConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	targets, err := resolve[A, R](b, name, "Subscribe", cfg.maskMismatch)
	if err != nil {
		return nil, err
	}

	handles := make([]*Handle, 0, len(targets))
	for _, svc := range targets {
		handles = append(handles, svc.Connect(fn))
	}
	return handles, nil
}

// Call emits on every service under the normalized name, in directory
// order, and collects the results. It fails with ErrNotFound when no
// services exist under the name; the first emit failure stops the call.
func Call[A, R any](b *Broker, name string, a A) ([]R, error) {
	targets, err := resolve[A, R](b, name, "Call", false)
	if err != nil {
		return nil, err
	}

	results := make([]R, 0, len(targets))
	for _, svc := range targets {
		r, err := svc.Emit(a)
		if err != nil {
			return nil, errors.Wrap(err, "Broker", "Call", "emitting on "+svc.Name())
		}
		results = append(results, r)
	}
	return results, nil
}

// CallVoid is Call for services without a result.
func CallVoid[A any](b *Broker, name string, a A) error {
	_, err := Call[A, Void](b, name, a)
	return err
}

// CallCombine collects the results of Call and folds them with combine.
func CallCombine[A, R any](b *Broker, name string, combine func([]R) R, a A) (R, error) {
	results, err := Call[A, R](b, name, a)
	if err != nil {
		var zero R
		return zero, err
	}
	return combine(results), nil
}

// List returns the fully-qualified names of all services under the
// normalized name.
func (b *Broker) List(name string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dir.List(name)
}

// NodeType reports what the normalized name addresses.
func (b *Broker) NodeType(name string) NodeType {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dir.NodeType(name)
}

// Prune drops tombstoned directory subtrees.
func (b *Broker) Prune() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dir.Prune()
}

// Clear removes every service and directory node.
func (b *Broker) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dir.Clear()
	b.services = make(map[string]erased)
}

// resolve snapshots the typed services under name while holding the read
// lock, so emits and connects run without blocking broker mutations.
func resolve[A, R any](b *Broker, name, op string, maskMismatch bool) ([]*Service[A, R], error) {
	b.mu.RLock()
	leaves := b.dir.List(name)
	entries := make([]erased, 0, len(leaves))
	names := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		if entry, ok := b.services[leaf]; ok {
			entries = append(entries, entry)
			names = append(names, leaf)
		}
	}
	b.mu.RUnlock()

	if len(entries) == 0 {
		return nil, errors.WrapNotFound(errors.ErrNotFound, "Broker", op, "resolving "+name)
	}

	targets := make([]*Service[A, R], 0, len(entries))
	for i, entry := range entries {
		svc, err := downcast[A, R](entry, names[i], op)
		if err != nil {
			if maskMismatch {
				continue
			}
			return nil, err
		}
		targets = append(targets, svc)
	}
	return targets, nil
}

func downcast[A, R any](entry erased, name, op string) (*Service[A, R], error) {
	if entry.fingerprint != fingerprintOf[A, R]() {
		return nil, errors.WrapMismatch(
			fmt.Errorf("%w: service %q is %v, want %v",
				errors.ErrTypeMismatch, name, entry.fingerprint, fingerprintOf[A, R]()),
			"Broker", op, "downcasting "+name)
	}
	return entry.service.(*Service[A, R]), nil
}

var (
	defaultBroker     *Broker
	defaultBrokerOnce sync.Once
)

// Default returns the process-wide broker. Prefer passing a broker
// explicitly; the singleton exists as an opt-in convenience for small
// programs and tests.
func Default() *Broker {
	defaultBrokerOnce.Do(func() {
		defaultBroker = NewBroker()
	})
	return defaultBroker
}
