// Package exec provides the execution machinery behind multi-threaded
// workers: reusable execution contexts with deferred configuration, a
// pool of contexts, and an executor pool that runs tasks against them.
package exec

import (
	"sync"
	"sync/atomic"
)

// Runner is the task function executed inside a context.
type Runner[A, R any] func(A) (R, error)

// Context is the contract the executor pool runs tasks against. Base
// satisfies it; embedders supply the run function and optional
// configuration hooks.
type Context[A, R, C any] interface {
	Invoke(A) (R, error)
	SetConfiguration(C)
	Configuration() C
}

// Hooks let the embedding context apply configuration to live state. Both
// are optional: without them the base only stages and returns the stored
// document.
type Hooks[C any] struct {
	// Apply commits a configuration to live state. Called with the run
	// lock held, so it never races an executing task.
	Apply func(C)
	// Snapshot returns the live configuration.
	Snapshot func() C
}

// Base carries the deferred-configuration protocol for one execution
// context. A configuration set while a task runs is staged and committed
// before the next task; a whole task therefore always executes under a
// single configuration.
type Base[A, R, C any] struct {
	run   Runner[A, R]
	hooks Hooks[C]

	// runMu is held for the duration of a task; storageMu guards the
	// pending slot. When both are taken blocking, runMu comes first.
	runMu     sync.Mutex
	storageMu sync.Mutex
	changed   atomic.Bool
	storage   C
}

// NewBase creates a context around run.
func NewBase[A, R, C any](run Runner[A, R], hooks Hooks[C]) *Base[A, R, C] {
	return &Base[A, R, C]{run: run, hooks: hooks}
}

// Invoke commits any pending configuration, then executes run under the
// run lock.
func (b *Base[A, R, C]) Invoke(a A) (R, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if b.changed.Load() {
		b.storageMu.Lock()
		b.applyLocked(b.storage)
		b.changed.Store(false)
		b.storageMu.Unlock()
	}

	return b.run(a)
}

// SetConfiguration stages cfg. If no task is running it commits
// immediately; otherwise the commit is deferred to the next Invoke.
func (b *Base[A, R, C]) SetConfiguration(cfg C) {
	b.storageMu.Lock()
	defer b.storageMu.Unlock()

	b.storage = cfg

	if b.runMu.TryLock() {
		b.applyLocked(cfg)
		b.changed.Store(false)
		b.runMu.Unlock()
	} else {
		b.changed.Store(true)
	}
}

// Configuration returns the live configuration when a Snapshot hook is
// present, the staged one otherwise.
func (b *Base[A, R, C]) Configuration() C {
	if b.hooks.Snapshot != nil {
		return b.hooks.Snapshot()
	}
	b.storageMu.Lock()
	defer b.storageMu.Unlock()
	return b.storage
}

// applyLocked runs the apply hook. Caller holds runMu.
func (b *Base[A, R, C]) applyLocked(cfg C) {
	if b.hooks.Apply != nil {
		b.hooks.Apply(cfg)
	}
}
