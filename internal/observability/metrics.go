// Package observability holds the Prometheus metrics recorded by the
// facility stream. The CLI is short-lived, so metrics are written to a
// node-exporter textfile at the end of a run rather than scraped.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

// Metrics holds the counters and gauges for one stream run.
type Metrics struct {
	RowsProcessed      prometheus.Counter
	RowsUnparsable     prometheus.Counter
	RowsSuspicious     prometheus.Counter
	CorrectionFailures prometheus.Counter
	Corrections        *prometheus.CounterVec // labels: kind, confidence
	RunDuration        prometheus.Gauge
	LastRunSuccess     prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the stream metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rmp",
			Name:      "rows_processed_total",
			Help:      "Facility records read from the input.",
		}),
		RowsUnparsable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rmp",
			Name:      "rows_unparsable_total",
			Help:      "Records whose latitude or longitude is not a number.",
		}),
		RowsSuspicious: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rmp",
			Name:      "rows_suspicious_total",
			Help:      "Records whose coordinates fall outside every US region.",
		}),
		CorrectionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rmp",
			Name:      "correction_failures_total",
			Help:      "Records the corrector could not assess.",
		}),
		Corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rmp",
			Name:      "corrections_total",
			Help:      "Coordinates rewritten, by heuristic and confidence.",
		}, []string{"kind", "confidence"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rmp",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last stream run.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rmp",
			Name:      "last_run_success",
			Help:      "1 when the last stream run completed, 0 otherwise.",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsProcessed,
		m.RowsUnparsable,
		m.RowsSuspicious,
		m.CorrectionFailures,
		m.Corrections,
		m.RunDuration,
		m.LastRunSuccess,
	)

	return m
}

// WriteTextfile writes all metrics in the Prometheus text format to path,
// atomically, for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "observability: write textfile %s", path)
	}
	return nil
}
