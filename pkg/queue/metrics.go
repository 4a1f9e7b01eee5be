package queue

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blazbratanic/service-broker/metric"
)

// queueMetrics mirrors the always-on counters into Prometheus collectors.
type queueMetrics struct {
	depth  prometheus.Gauge
	pushed prometheus.Counter
	pulled prometheus.Counter
}

func newQueueMetrics(reg *metric.Registry, prefix string) (*queueMetrics, error) {
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_queue_depth",
		Help: "Current number of queued items",
	})
	pushed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_pushed_total",
		Help: "Total items pushed onto the queue",
	})
	pulled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_pulled_total",
		Help: "Total items pulled from the queue",
	})

	const component = "queue"
	if err := reg.RegisterGauge(component, prefix+"_queue_depth", depth); err != nil {
		return nil, err
	}
	if err := reg.RegisterCounter(component, prefix+"_pushed_total", pushed); err != nil {
		return nil, err
	}
	if err := reg.RegisterCounter(component, prefix+"_pulled_total", pulled); err != nil {
		return nil, err
	}

	return &queueMetrics{depth: depth, pushed: pushed, pulled: pulled}, nil
}

func (m *queueMetrics) recordPush(depth int64) {
	m.pushed.Inc()
	m.depth.Set(float64(depth))
}

func (m *queueMetrics) recordPull() {
	m.pulled.Inc()
	m.depth.Dec()
}
