// Package worker provides the worker runtime: lifecycle and service
// bookkeeping shared by all workers, a single-threaded worker pulling
// from an input queue, and a multi-threaded worker fronting an executor
// pool over reusable execution contexts.
//
// Every worker registers four standard services with its broker:
//
//	log.<name>                structured log entries
//	error.<name>              failures forwarded from the worker loop
//	configuration.set.<name>  stage a new configuration
//	configuration.get.<name>  read the current configuration
//
// and producing workers add "<name>.result" for downstream subscribers.
package worker

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/blazbratanic/service-broker/errors"
	"github.com/blazbratanic/service-broker/metric"
	"github.com/blazbratanic/service-broker/pkg/stats"
	"github.com/blazbratanic/service-broker/service"
)

// Hooks let a worker apply configuration to live state. Without them the
// base only stages and returns the stored value.
type Hooks[C any] struct {
	// Apply commits a configuration. Called with the configuration lock
	// held, between tasks.
	Apply func(C)
	// Snapshot returns the live configuration.
	Snapshot func() C
}

// Option configures a worker.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metric.Registry
}

// WithLogger mirrors worker log entries to the given slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records worker activity in the registry's core metrics.
func WithMetrics(reg *metric.Registry) Option {
	return func(o *options) {
		o.metrics = reg
	}
}

// Base carries the per-worker bookkeeping: the four standard services,
// the subscriptions made on the worker's behalf, and the deferred
// configuration protocol. Concrete workers embed it.
type Base[C any] struct {
	name   string
	broker *service.Broker
	logger *Logger

	logSvc   *service.Service[LogEntry, service.Void]
	errorSvc *service.Service[error, service.Void]
	setSvc   *service.Service[C, service.Void]
	getSvc   *service.Service[service.Void, C]

	hooks Hooks[C]

	// cfgMu is held while a task runs; storageMu guards the pending
	// configuration slot. When both are taken blocking, cfgMu comes
	// first.
	cfgMu     sync.Mutex
	storageMu sync.Mutex
	changed   atomic.Bool
	storage   C

	// setConfig is the entry point bound to configuration.set.<name>;
	// worker variants that extend SetConfiguration rebind it.
	setConfig func(C)

	handleMu sync.Mutex
	handles  []*service.Handle

	metrics *metric.Registry
	closed  atomic.Bool
}

// NewBase registers the four standard services for name and subscribes
// the configuration endpoints. The caller owns the returned base and must
// Close it to deregister.
func NewBase[C any](name string, broker *service.Broker, hooks Hooks[C], opts ...Option) (*Base[C], error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	b := &Base[C]{
		name:     name,
		broker:   broker,
		hooks:    hooks,
		logSvc:   service.New[LogEntry, service.Void]("log." + name),
		errorSvc: service.New[error, service.Void]("error." + name),
		setSvc:   service.New[C, service.Void]("configuration.set." + name),
		getSvc:   service.New[service.Void, C]("configuration.get." + name),
		metrics:  o.metrics,
	}
	b.logger = NewLogger(name, b.logSvc, o.logger)
	b.setConfig = b.SetConfiguration

	var registered []string
	unwind := func(err error) error {
		for _, name := range registered {
			broker.Remove(name)
		}
		return err
	}
	if err := service.Register(broker, b.logSvc); err != nil {
		return nil, unwind(err)
	}
	registered = append(registered, b.logSvc.Name())
	if err := service.Register(broker, b.errorSvc); err != nil {
		return nil, unwind(err)
	}
	registered = append(registered, b.errorSvc.Name())
	if err := service.Register(broker, b.setSvc); err != nil {
		return nil, unwind(err)
	}
	registered = append(registered, b.setSvc.Name())
	if err := service.Register(broker, b.getSvc); err != nil {
		return nil, unwind(err)
	}

	b.addHandle(b.setSvc.Connect(func(cfg C) (service.Void, error) {
		b.setConfig(cfg)
		return service.Void{}, nil
	}))
	b.addHandle(b.getSvc.Connect(func(service.Void) (C, error) {
		return b.Configuration(), nil
	}))

	if b.metrics != nil {
		b.metrics.Core.WorkerUp.WithLabelValues(name).Set(1)
	}

	return b, nil
}

// Name returns the worker name.
func (b *Base[C]) Name() string {
	return b.name
}

// Broker returns the broker the worker registered with.
func (b *Base[C]) Broker() *service.Broker {
	return b.broker
}

// Logger returns the worker's logger.
func (b *Base[C]) Logger() *Logger {
	return b.logger
}

// Log emits a message on the worker's log service.
func (b *Base[C]) Log(level LogLevel, msg string) {
	b.logger.Log(level, msg)
}

// Error forwards a failure on the worker's error service.
func (b *Base[C]) Error(err error) {
	if err == nil {
		return
	}
	if b.metrics != nil {
		b.metrics.Core.ErrorsTotal.WithLabelValues(b.name, errors.Classify(err).String()).Inc()
	}
	_, _ = b.errorSvc.Emit(err)
}

// SetConfiguration stages cfg. If no task is running it commits
// immediately; otherwise the commit is deferred until the worker loop
// reaches its next safe point.
func (b *Base[C]) SetConfiguration(cfg C) {
	b.storageMu.Lock()
	defer b.storageMu.Unlock()

	b.storage = cfg

	if b.cfgMu.TryLock() {
		b.applyLocked(cfg)
		b.changed.Store(false)
		b.cfgMu.Unlock()
	} else {
		b.changed.Store(true)
	}
}

// Configuration returns the live configuration when a Snapshot hook is
// present, the staged one otherwise.
func (b *Base[C]) Configuration() C {
	if b.hooks.Snapshot != nil {
		return b.hooks.Snapshot()
	}
	b.storageMu.Lock()
	defer b.storageMu.Unlock()
	return b.storage
}

// UpdateConfiguration commits the staged configuration. Worker loops call
// it between tasks; embedders may call it at their own safe points.
func (b *Base[C]) UpdateConfiguration() {
	b.cfgMu.Lock()
	b.storageMu.Lock()
	b.applyLocked(b.storage)
	b.changed.Store(false)
	b.storageMu.Unlock()
	b.cfgMu.Unlock()
}

// PerformanceStatistics reports execution-time statistics. The base has
// none; worker variants override it.
func (b *Base[C]) PerformanceStatistics() stats.Summary {
	return stats.Summary{}
}

// Close releases every subscription the worker made and removes its
// services from the broker. Close is idempotent.
func (b *Base[C]) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	b.handleMu.Lock()
	handles := b.handles
	b.handles = nil
	b.handleMu.Unlock()
	service.ReleaseAll(handles)

	b.broker.Remove(b.logSvc.Name())
	b.broker.Remove(b.errorSvc.Name())
	b.broker.Remove(b.setSvc.Name())
	b.broker.Remove(b.getSvc.Name())

	if b.metrics != nil {
		b.metrics.Core.WorkerUp.WithLabelValues(b.name).Set(0)
	}
}

// applyLocked runs the apply hook. Caller holds cfgMu.
func (b *Base[C]) applyLocked(cfg C) {
	if b.hooks.Apply != nil {
		b.hooks.Apply(cfg)
	}
}

func (b *Base[C]) addHandle(h *service.Handle) {
	b.handleMu.Lock()
	b.handles = append(b.handles, h)
	b.handleMu.Unlock()
}

// bindSetConfiguration rebinds the configuration.set entry point so
// worker variants can extend staging (e.g. broadcasting to a context
// pool) while keeping one subscription.
func (b *Base[C]) bindSetConfiguration(fn func(C)) {
	b.setConfig = fn
}
