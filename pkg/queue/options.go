package queue

import "github.com/blazbratanic/service-broker/metric"

type queueOptions struct {
	metricsReg    *metric.Registry
	metricsPrefix string
}

// Option configures a queue.
type Option func(*queueOptions)

// WithMetrics exposes queue depth and throughput as Prometheus metrics
// registered under the given prefix.
func WithMetrics(reg *metric.Registry, prefix string) Option {
	return func(o *queueOptions) {
		o.metricsReg = reg
		o.metricsPrefix = prefix
	}
}

func applyOptions(options ...Option) *queueOptions {
	opts := &queueOptions{}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}
