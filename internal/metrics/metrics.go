// Package metrics instruments the orchestrator with Prometheus
// collectors registered against a private registry (§9: "no HTTP
// exposition — serving /metrics is an edge concern"). Callers that do
// want to expose the registry can wrap it in an http.Handler themselves;
// this package only owns collection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is one orchestrator's instrumentation set: per-analyzer
// duration, analyzer fault counts, and the most recent health score.
type Metrics struct {
	Registry *prometheus.Registry

	AnalyzerDuration *prometheus.HistogramVec
	AnalyzerFaults   *prometheus.CounterVec
	LastScore        prometheus.Gauge
}

// New builds a fresh, privately-owned registry and collector set.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ibhealth",
		Subsystem: "orchestrator",
		Name:      "analyzer_duration_seconds",
		Help:      "Duration of one analyzer's Analyze call.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"analyzer"})

	faults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ibhealth",
		Subsystem: "orchestrator",
		Name:      "analyzer_faults_total",
		Help:      "Count of analyzers that panicked or timed out.",
	}, []string{"analyzer", "reason"})

	lastScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ibhealth",
		Subsystem: "orchestrator",
		Name:      "last_health_score",
		Help:      "Health score (0-100) from the most recently completed analysis.",
	})

	reg.MustRegister(duration, faults, lastScore)

	return &Metrics{
		Registry:         reg,
		AnalyzerDuration: duration,
		AnalyzerFaults:   faults,
		LastScore:        lastScore,
	}
}
