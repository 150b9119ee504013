// Package metrics collects Prometheus counters and gauges describing the
// running state of the logging pipeline, grounded on the shape of pebble's
// own metrics package (a struct of named collectors registered once at
// construction).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the pipeline's observability surface. It is safe to
// leave nil; every pipeline component that accepts *Registry treats a nil
// receiver as "metrics disabled" and skips the corresponding Inc/Add.
type Registry struct {
	StreamsActive      prometheus.Gauge
	BlocksConsolidated prometheus.Counter
	BytesConsolidated  prometheus.Counter
	BytesWritten       prometheus.Counter
	QueueDepth         prometheus.Gauge
	WriterErrors       prometheus.Counter
}

// New constructs a Registry and registers its collectors with reg. Passing
// a fresh prometheus.NewRegistry() keeps tests isolated from the global
// default registry.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		StreamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "logandload",
			Name:      "streams_active",
			Help:      "Number of streams currently registered with the log.",
		}),
		BlocksConsolidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logandload",
			Name:      "blocks_consolidated_total",
			Help:      "Number of stream blocks packed into the global buffer.",
		}),
		BytesConsolidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logandload",
			Name:      "bytes_consolidated_total",
			Help:      "Number of payload bytes packed into the global buffer.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logandload",
			Name:      "bytes_written_total",
			Help:      "Number of bytes written to the log file.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "logandload",
			Name:      "pending_queue_depth",
			Help:      "Number of streams currently queued for consolidation.",
		}),
		WriterErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logandload",
			Name:      "writer_errors_total",
			Help:      "Number of write failures the Writer has degraded past.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.StreamsActive,
			m.BlocksConsolidated,
			m.BytesConsolidated,
			m.BytesWritten,
			m.QueueDepth,
			m.WriterErrors,
		)
	}
	return m
}
