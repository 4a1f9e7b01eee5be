package exec

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/blazbratanic/service-broker/errors"
	"github.com/blazbratanic/service-broker/metric"
	"github.com/blazbratanic/service-broker/pkg/queue"
	"github.com/blazbratanic/service-broker/pkg/stats"
)

// Result carries one completed task out of the pool. Err holds a context
// run failure; consumers surface it wherever they unwrap the result.
type Result[R any] struct {
	Value R
	Err   error
}

// Option configures a pool.
type Option func(*poolOptions)

type poolOptions struct {
	queueCapacity int
	metricsReg    *metric.Registry
	metricsPrefix string
}

// WithQueueCapacity bounds the task queue; 0 (the default) means
// unbounded.
func WithQueueCapacity(n int) Option {
	return func(o *poolOptions) {
		o.queueCapacity = n
	}
}

// WithMetrics exposes pool throughput and task durations as Prometheus
// metrics under the given prefix.
func WithMetrics(reg *metric.Registry, prefix string) Option {
	return func(o *poolOptions) {
		o.metricsReg = reg
		o.metricsPrefix = prefix
	}
}

// Pool executes tasks against pooled contexts with a fixed number of
// worker goroutines. Completed work arrives on the results queue in
// completion order.
type Pool[A, R, C any] struct {
	concurrency int
	contexts    *ContextPool[A, R, C]

	tasks   *queue.Queue[A]
	results *queue.Queue[Result[R]]
	free    chan Context[A, R, C]

	inflight atomic.Int64
	timings  *stats.Statistics

	group   *errgroup.Group
	started atomic.Bool
	stopped atomic.Bool

	metrics *poolMetrics
}

type poolMetrics struct {
	processed prometheus.Counter
	failed    prometheus.Counter
	duration  prometheus.Histogram
}

// NewPool creates an executor pool over the given contexts.
func NewPool[A, R, C any](concurrency int, contexts *ContextPool[A, R, C], options ...Option) (*Pool[A, R, C], error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	opts := &poolOptions{}
	for _, opt := range options {
		opt(opts)
	}

	tasks, err := queue.New[A](opts.queueCapacity)
	if err != nil {
		return nil, err
	}
	results, err := queue.New[Result[R]](0)
	if err != nil {
		return nil, err
	}

	p := &Pool[A, R, C]{
		concurrency: concurrency,
		contexts:    contexts,
		tasks:       tasks,
		results:     results,
		free:        make(chan Context[A, R, C], contexts.Len()),
		timings:     stats.New(),
	}
	for _, c := range contexts.Contexts() {
		p.free <- c
	}

	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		if err := p.registerMetrics(opts.metricsReg, opts.metricsPrefix); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Pool[A, R, C]) registerMetrics(reg *metric.Registry, prefix string) error {
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_processed_total",
		Help: "Total tasks executed by the pool",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_failed_total",
		Help: "Total tasks whose context run returned an error",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    prefix + "_task_duration_seconds",
		Help:    "Task execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	const component = "executor_pool"
	if err := reg.RegisterCounter(component, prefix+"_processed_total", processed); err != nil {
		return err
	}
	if err := reg.RegisterCounter(component, prefix+"_failed_total", failed); err != nil {
		return err
	}
	if err := reg.RegisterHistogram(component, prefix+"_task_duration_seconds", duration); err != nil {
		return err
	}

	p.metrics = &poolMetrics{processed: processed, failed: failed, duration: duration}
	return nil
}

// Start launches the worker goroutines. Cancelling ctx closes the task
// queue and drains the workers.
func (p *Pool[A, R, C]) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Pool", "Start", "starting workers")
	}

	p.group, ctx = errgroup.WithContext(ctx)

	// Cancellation closes the task queue, which drains the workers.
	context.AfterFunc(ctx, func() {
		p.tasks.Close()
	})

	for i := 0; i < p.concurrency; i++ {
		p.group.Go(func() error {
			p.worker()
			return nil
		})
	}
	return nil
}

// Schedule enqueues a task for execution, blocking when the task queue is
// bounded and full.
func (p *Pool[A, R, C]) Schedule(task A) error {
	if !p.started.Load() {
		return errors.WrapInvalid(errors.ErrNotStarted, "Pool", "Schedule", "enqueueing task")
	}
	return p.tasks.Push(task)
}

// Results returns the completed-work queue.
func (p *Pool[A, R, C]) Results() *queue.Queue[Result[R]] {
	return p.results
}

// Pending returns queued plus in-flight tasks.
func (p *Pool[A, R, C]) Pending() int {
	return p.tasks.Len() + int(p.inflight.Load())
}

// PerformanceStatistics returns the execution-time statistics aggregated
// across all contexts.
func (p *Pool[A, R, C]) PerformanceStatistics() stats.Summary {
	return p.timings.Snapshot()
}

// Stop closes the task queue, waits for workers to drain, then closes the
// results queue. It fails with ErrStopTimeout when workers do not finish
// in time.
func (p *Pool[A, R, C]) Stop(timeout time.Duration) error {
	if !p.started.Load() || !p.stopped.CompareAndSwap(false, true) {
		return nil
	}

	p.tasks.Close()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.results.Close()
		return nil
	case <-timer.C:
		return errors.WrapShutdown(errors.ErrStopTimeout, "Pool", "Stop", "waiting for workers")
	}
}

// worker pulls tasks, runs each against a free context and pushes the
// outcome to the results queue.
func (p *Pool[A, R, C]) worker() {
	for {
		task, err := p.tasks.Pull()
		if err != nil {
			return
		}

		p.inflight.Add(1)
		c := <-p.free

		start := time.Now()
		value, runErr := invoke(c, task)
		elapsed := time.Since(start)

		p.free <- c
		p.timings.Update(elapsed)
		p.inflight.Add(-1)

		if p.metrics != nil {
			p.metrics.processed.Inc()
			p.metrics.duration.Observe(elapsed.Seconds())
			if runErr != nil {
				p.metrics.failed.Inc()
			}
		}

		if err := p.results.Push(Result[R]{Value: value, Err: runErr}); err != nil {
			return
		}
	}
}

// invoke shields the pool from panicking user code; a panic becomes the
// task's error result.
func invoke[A, R, C any](c Context[A, R, C], task A) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapRuntime(
				fmt.Errorf("context run panicked: %v", r),
				"Pool", "invoke", "running task")
		}
	}()
	return c.Invoke(task)
}
