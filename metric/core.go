package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the runtime-level metrics shared by workers, queues and
// executor pools.
type Metrics struct {
	TasksReceived      *prometheus.CounterVec
	TasksProcessed     *prometheus.CounterVec
	ResultsEmitted     *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec
	WorkerUp           *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all runtime metrics
func NewMetrics() *Metrics {
	return &Metrics{
		TasksReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "servicebroker",
				Subsystem: "tasks",
				Name:      "received_total",
				Help:      "Total number of tasks pulled from worker input queues",
			},
			[]string{"worker"},
		),

		TasksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "servicebroker",
				Subsystem: "tasks",
				Name:      "processed_total",
				Help:      "Total number of tasks processed",
			},
			[]string{"worker", "status"},
		),

		ResultsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "servicebroker",
				Subsystem: "results",
				Name:      "emitted_total",
				Help:      "Total number of results emitted on result services",
			},
			[]string{"worker"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "servicebroker",
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Task processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"worker", "operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "servicebroker",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors forwarded on error services",
			},
			[]string{"worker", "class"},
		),

		WorkerUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "servicebroker",
				Subsystem: "worker",
				Name:      "up",
				Help:      "Worker lifecycle state (1=running, 0=joined)",
			},
			[]string{"worker"},
		),
	}
}

// ObserveProcessing records one task execution for a worker.
func (m *Metrics) ObserveProcessing(worker, operation string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.TasksProcessed.WithLabelValues(worker, status).Inc()
	m.ProcessingDuration.WithLabelValues(worker, operation).Observe(d.Seconds())
}
