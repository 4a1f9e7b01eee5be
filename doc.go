// Package servicebroker provides an in-process dataflow and service-broker
// runtime: a small set of generic abstractions that compose into directed
// dataflow graphs with uniform lifecycle, configuration, logging and error
// reporting.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│            Workers                  │  lifecycle, input queues,
//	│  (single-threaded, multi-threaded)  │  deferred configuration
//	└─────────────────────────────────────┘
//	           ↓ communicate via
//	┌─────────────────────────────────────┐
//	│         Service broker              │  dotted-name directory,
//	│   (typed services, group calls)     │  typed multicast channels
//	└─────────────────────────────────────┘
//	           ↓ executed on
//	┌─────────────────────────────────────┐
//	│       Execution machinery           │  bounded queues, context
//	│  (queue, contexts, executor pool)   │  pools, executor pools
//	└─────────────────────────────────────┘
//
// # Packages
//
//   - service: Service[A, R] typed multicast channels, the hierarchical
//     ServiceDirectory and the type-erased Broker with group operations.
//   - worker: worker runtime. Base registers the standard per-worker
//     services (log.<name>, error.<name>, configuration.set/get.<name>);
//     SingleThreaded runs tasks on one goroutine; MultiThreaded fronts an
//     executor pool with pre/post-processing.
//   - concat: keyed N-way joins assembling tuples from multiple streams
//     with pluggable completion and eviction policies.
//   - combiner: wires several input services into one combine callable.
//   - config: tree-structured configuration documents (YAML-backed).
//   - errors: error taxonomy and classified wrapping.
//   - metric: Prometheus registry with core runtime metrics.
//   - pkg/queue, pkg/exec, pkg/stats: bounded blocking queues, execution
//     contexts and pools, duration statistics.
//
// # Dataflow
//
// Producers emit values on services; the broker resolves names or whole
// groups to concrete services; subscribed workers receive values into
// their input queues, run user code directly or on an executor pool, and
// publish results through their "<name>.result" service:
//
//	broker := service.NewBroker()
//
//	provider, _ := worker.NewSingleThreaded("provider", broker,
//		func(i int) (string, error) { return strconv.Itoa(i), nil },
//		worker.Hooks[config.Document]{})
//	defer provider.Close()
//
//	sink, _ := worker.NewSingleThreaded("sink", broker,
//		func(s string) (string, error) { return "<" + s + ">", nil },
//		worker.Hooks[config.Document]{})
//	defer sink.Close()
//	sink.SubscribeNamed("provider")
//
//	provider.Push(42)
//
// # Configuration
//
// Configuration updates are deferred to quiescent boundaries: a value set
// while a task runs is staged and committed before the next task, so a
// whole task always executes under a single configuration. Multi-threaded
// workers additionally broadcast staged configurations to every pooled
// execution context.
//
// # Scope
//
// The runtime is strictly in-process. Cross-process discovery, directory
// persistence and delivery guarantees beyond blocking enqueue are out of
// scope.
package servicebroker
