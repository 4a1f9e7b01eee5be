package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blazbratanic/service-broker/errors"
	"github.com/blazbratanic/service-broker/pkg/exec"
	"github.com/blazbratanic/service-broker/pkg/queue"
	"github.com/blazbratanic/service-broker/pkg/stats"
	"github.com/blazbratanic/service-broker/service"
)

// PreprocessFunc splits one incoming task into zero or more sub-tasks and
// schedules each onto the executor pool.
type PreprocessFunc[A, CA any] func(task A, schedule func(CA) error) error

// PostprocessFunc consumes one completed context result and produces the
// worker's result.
type PostprocessFunc[CR, R any] func(CR) (R, error)

// MultiThreaded runs tasks on an executor pool over a shared context
// pool. One coordination goroutine performs pre- and post-processing:
// it splits incoming tasks into scheduled sub-tasks and turns completed
// context results into emitted results. Pre- and post-processing share
// the configuration lock, so they serialize with configuration commits.
//
// Type parameters: A is the worker input, R the emitted result, CA and
// CR the argument and result types of the pooled contexts, C the
// configuration.
type MultiThreaded[A, R, CA, CR, C any] struct {
	*Base[C]

	input     *queue.Queue[A]
	resultSvc *service.Service[R, service.Void]

	contexts *exec.ContextPool[CA, CR, C]
	pool     *exec.Pool[CA, CR, C]

	preprocess  PreprocessFunc[A, CA]
	postprocess PostprocessFunc[CR, R]

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// MultiOption configures a multi-threaded worker.
type MultiOption func(*multiOptions)

type multiOptions struct {
	concurrency   int
	queueCapacity int
	base          []Option
}

// WithConcurrency sets the executor pool size. The default is four.
func WithConcurrency(n int) MultiOption {
	return func(o *multiOptions) {
		o.concurrency = n
	}
}

// WithTaskQueueCapacity bounds the executor pool's task queue.
func WithTaskQueueCapacity(n int) MultiOption {
	return func(o *multiOptions) {
		o.queueCapacity = n
	}
}

// WithBaseOptions forwards worker options (logger, metrics) to the
// embedded base.
func WithBaseOptions(opts ...Option) MultiOption {
	return func(o *multiOptions) {
		o.base = append(o.base, opts...)
	}
}

// NewMultiThreaded creates and starts a worker over the given context
// pool. Both processing functions must be non-nil; hooks may be zero.
func NewMultiThreaded[A, R, CA, CR, C any](
	name string,
	broker *service.Broker,
	contexts *exec.ContextPool[CA, CR, C],
	preprocess PreprocessFunc[A, CA],
	postprocess PostprocessFunc[CR, R],
	hooks Hooks[C],
	opts ...MultiOption,
) (*MultiThreaded[A, R, CA, CR, C], error) {
	if preprocess == nil || postprocess == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("worker %q needs preprocess and postprocess functions", name),
			"MultiThreaded", "New", "validating arguments")
	}

	mo := &multiOptions{concurrency: 4}
	for _, opt := range opts {
		opt(mo)
	}

	base, err := NewBase(name, broker, hooks, mo.base...)
	if err != nil {
		return nil, err
	}

	pool, err := exec.NewPool(mo.concurrency, contexts, exec.WithQueueCapacity(mo.queueCapacity))
	if err != nil {
		base.Close()
		return nil, err
	}

	w := &MultiThreaded[A, R, CA, CR, C]{
		Base:        base,
		input:       queue.MustNew[A](0),
		resultSvc:   service.New[R, service.Void](name + ".result"),
		contexts:    contexts,
		pool:        pool,
		preprocess:  preprocess,
		postprocess: postprocess,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	if err := service.Register(broker, w.resultSvc); err != nil {
		base.Close()
		return nil, err
	}

	// Staged configuration also reaches every pooled context, which
	// defers the commit on its own if it is mid-task.
	base.bindSetConfiguration(w.SetConfiguration)

	if err := pool.Start(context.Background()); err != nil {
		broker.Remove(w.resultSvc.Name())
		base.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// SubscribeNamed wires "<input>.result" of each named upstream worker
// into this worker's input queue via the broker.
func (w *MultiThreaded[A, R, CA, CR, C]) SubscribeNamed(inputs ...string) error {
	for _, input := range inputs {
		handles, err := service.Subscribe(w.broker, input+".result",
			func(task A) (service.Void, error) {
				return service.Void{}, w.input.Push(task)
			})
		if err != nil {
			return err
		}
		for _, h := range handles {
			w.addHandle(h)
		}
	}
	return nil
}

// SetConfiguration broadcasts cfg to every pooled context and stages it
// on the worker itself.
func (w *MultiThreaded[A, R, CA, CR, C]) SetConfiguration(cfg C) {
	w.contexts.SetConfiguration(cfg)
	w.Base.SetConfiguration(cfg)
}

// Result returns the worker's result service.
func (w *MultiThreaded[A, R, CA, CR, C]) Result() *service.Service[R, service.Void] {
	return w.resultSvc
}

// Push enqueues a task directly, bypassing service wiring.
func (w *MultiThreaded[A, R, CA, CR, C]) Push(task A) error {
	return w.input.Push(task)
}

func (w *MultiThreaded[A, R, CA, CR, C]) enqueue(task A) error {
	return w.input.Push(task)
}

// Schedule hands a sub-task to the executor pool. Exposed for preprocess
// implementations living outside the closure passed at construction.
func (w *MultiThreaded[A, R, CA, CR, C]) Schedule(task CA) error {
	return w.pool.Schedule(task)
}

// Pending reports the executor pool backlog.
func (w *MultiThreaded[A, R, CA, CR, C]) Pending() int {
	return w.pool.Pending()
}

// PerformanceStatistics aggregates execution times across the pool.
func (w *MultiThreaded[A, R, CA, CR, C]) PerformanceStatistics() stats.Summary {
	return w.pool.PerformanceStatistics()
}

// Close stops the coordination goroutine, drains the executor pool and
// removes the worker's services.
func (w *MultiThreaded[A, R, CA, CR, C]) Close() {
	w.closeOnce.Do(func() {
		w.broker.Remove(w.resultSvc.Name())
		close(w.quit)
		<-w.done

		_ = w.pool.Stop(5 * time.Second)
		w.input.Close()
		w.Base.Close()
	})
}

// loop is the coordination goroutine: two wake sources, input arrival and
// executor completion, replace the historical fixed-interval poll.
func (w *MultiThreaded[A, R, CA, CR, C]) loop() {
	defer close(w.done)

	for {
		if w.changed.Load() {
			w.UpdateConfiguration()
		}

		select {
		case <-w.quit:
			return
		case <-w.input.Ready():
			w.drainInput()
		case <-w.pool.Results().Ready():
			w.drainResults()
		}
	}
}

func (w *MultiThreaded[A, R, CA, CR, C]) drainInput() {
	for {
		task, status := w.input.TryPull()
		if status != queue.StatusOK {
			return
		}
		if w.metrics != nil {
			w.metrics.Core.TasksReceived.WithLabelValues(w.name).Inc()
		}
		w.preprocessOne(task)
	}
}

func (w *MultiThreaded[A, R, CA, CR, C]) preprocessOne(task A) {
	defer func() {
		if r := recover(); r != nil {
			w.Error(errors.WrapRuntime(
				fmt.Errorf("preprocess panicked: %v", r),
				"MultiThreaded", "preprocess", "splitting task"))
		}
	}()

	w.cfgMu.Lock()
	defer w.cfgMu.Unlock()

	if err := w.preprocess(task, w.pool.Schedule); err != nil {
		w.Error(fmt.Errorf("%w: %w", errors.ErrSubscriberFailure, err))
	}
}

func (w *MultiThreaded[A, R, CA, CR, C]) drainResults() {
	for {
		result, status := w.pool.Results().TryPull()
		if status != queue.StatusOK {
			return
		}
		w.postprocessOne(result)
	}
}

func (w *MultiThreaded[A, R, CA, CR, C]) postprocessOne(result exec.Result[CR]) {
	defer func() {
		if r := recover(); r != nil {
			w.Error(errors.WrapRuntime(
				fmt.Errorf("postprocess panicked: %v", r),
				"MultiThreaded", "postprocess", "consuming result"))
		}
	}()

	// A failed context run surfaces here, where the result is unwrapped.
	if result.Err != nil {
		w.Error(fmt.Errorf("%w: %w", errors.ErrSubscriberFailure, result.Err))
		return
	}

	w.cfgMu.Lock()
	defer w.cfgMu.Unlock()

	out, err := w.postprocess(result.Value)
	if err != nil {
		w.Error(fmt.Errorf("%w: %w", errors.ErrSubscriberFailure, err))
		return
	}

	if _, err := w.resultSvc.Emit(out); err != nil {
		w.Error(err)
		return
	}
	if w.metrics != nil {
		w.metrics.Core.ResultsEmitted.WithLabelValues(w.name).Inc()
	}
}
