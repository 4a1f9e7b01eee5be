package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blazbratanic/service-broker/errors"
	"github.com/blazbratanic/service-broker/pkg/queue"
	"github.com/blazbratanic/service-broker/pkg/stats"
	"github.com/blazbratanic/service-broker/service"
)

// RunFunc processes one task on the worker goroutine.
type RunFunc[A, R any] func(A) (R, error)

// SingleThreaded pulls tasks from its input queue on one dedicated
// goroutine, runs the user function under the configuration lock, and
// emits each result on "<name>.result". Failures are forwarded on the
// error service and the loop continues.
type SingleThreaded[A, R, C any] struct {
	*Base[C]

	input     *queue.Queue[A]
	resultSvc *service.Service[R, service.Void]
	run       RunFunc[A, R]
	timings   *stats.Statistics

	terminate atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewSingleThreaded creates and starts a worker. The run function must be
// non-nil; hooks may be zero.
func NewSingleThreaded[A, R, C any](
	name string,
	broker *service.Broker,
	run RunFunc[A, R],
	hooks Hooks[C],
	opts ...Option,
) (*SingleThreaded[A, R, C], error) {
	if run == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("worker %q needs a run function", name),
			"SingleThreaded", "New", "validating arguments")
	}

	base, err := NewBase(name, broker, hooks, opts...)
	if err != nil {
		return nil, err
	}

	w := &SingleThreaded[A, R, C]{
		Base:      base,
		input:     queue.MustNew[A](0),
		resultSvc: service.New[R, service.Void](name + ".result"),
		run:       run,
		timings:   stats.New(),
		done:      make(chan struct{}),
	}

	if err := service.Register(broker, w.resultSvc); err != nil {
		base.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// SubscribeNamed wires "<input>.result" of each named upstream worker
// into this worker's input queue via the broker.
func (w *SingleThreaded[A, R, C]) SubscribeNamed(inputs ...string) error {
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

// Feed wires a result service directly into a worker's input queue,
// without going through the broker. The compile-time counterpart of
// SubscribeNamed.
func Feed[A any](w interface {
	enqueue(A) error
	addHandle(*service.Handle)
}, src *service.Service[A, service.Void]) {
	w.addHandle(src.Connect(func(task A) (service.Void, error) {
		return service.Void{}, w.enqueue(task)
	}))
}

// Result returns the worker's result service, for direct wiring into
// downstream workers.
func (w *SingleThreaded[A, R, C]) Result() *service.Service[R, service.Void] {
	return w.resultSvc
}

// Push enqueues a task directly, bypassing service wiring.
func (w *SingleThreaded[A, R, C]) Push(task A) error {
	return w.input.Push(task)
}

// Pending returns the input queue backlog.
func (w *SingleThreaded[A, R, C]) Pending() int {
	return w.input.Len()
}

// PerformanceStatistics returns min/max/avg execution times of run.
func (w *SingleThreaded[A, R, C]) PerformanceStatistics() stats.Summary {
	return w.timings.Snapshot()
}

// Close stops the worker goroutine, waits for it to join, and removes
// the worker's services. The task in flight, if any, completes first.
func (w *SingleThreaded[A, R, C]) Close() {
	w.closeOnce.Do(func() {
		w.broker.Remove(w.resultSvc.Name())
		w.terminate.Store(true)
		// Sentinel to unblock the queue pull.
		var zero A
		_ = w.input.Push(zero)
		<-w.done

		w.input.Close()
		w.Base.Close()
	})
}

func (w *SingleThreaded[A, R, C]) enqueue(task A) error {
	return w.input.Push(task)
}

func (w *SingleThreaded[A, R, C]) loop() {
	defer close(w.done)

	for {
		if w.changed.Load() {
			w.UpdateConfiguration()
		}

		task, err := w.input.Pull()
		if err != nil {
			return
		}
		if w.terminate.Load() {
			return
		}

		w.runOne(task)
	}
}

// runOne executes a single task under the configuration lock, so staged
// configuration cannot land mid-task.
func (w *SingleThreaded[A, R, C]) runOne(task A) {
	defer func() {
		if r := recover(); r != nil {
			w.Error(errors.WrapRuntime(
				fmt.Errorf("run panicked: %v", r),
				"SingleThreaded", "runOne", "running task"))
		}
	}()

	w.cfgMu.Lock()
	defer w.cfgMu.Unlock()

	if w.metrics != nil {
		w.metrics.Core.TasksReceived.WithLabelValues(w.name).Inc()
	}

	start := time.Now()
	result, err := w.run(task)
	elapsed := time.Since(start)
	w.timings.Update(elapsed)

	if w.metrics != nil {
		w.metrics.Core.ObserveProcessing(w.name, "run", elapsed, err)
	}

	if err != nil {
		w.Error(fmt.Errorf("%w: %w", errors.ErrSubscriberFailure, err))
		return
	}

	if _, err := w.resultSvc.Emit(result); err != nil {
		w.Error(err)
		return
	}
	if w.metrics != nil {
		w.metrics.Core.ResultsEmitted.WithLabelValues(w.name).Inc()
	}
}
