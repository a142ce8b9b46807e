package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ambient operational counters for the proof pipeline:
// job outcomes, per-note proving duration, and queue depth.
type Metrics struct {
	JobsStarted   prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	JobsCancelled prometheus.Counter
	NoteDuration  prometheus.Histogram
	QueueDepth    prometheus.Gauge
}

// NewMetrics registers every gauge/counter/histogram against its own
// registry, so tests can construct independent Metrics instances without
// colliding on prometheus's global default registry.
func NewMetrics() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		JobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadow_proof_jobs_started_total",
			Help: "Total proof jobs admitted to the queue.",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadow_proof_jobs_completed_total",
			Help: "Total proof jobs that completed successfully.",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadow_proof_jobs_failed_total",
			Help: "Total proof jobs that failed.",
		}),
		JobsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shadow_proof_jobs_cancelled_total",
			Help: "Total proof jobs cancelled before completion.",
		}),
		NoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shadow_note_prove_seconds",
			Help:    "Wall-clock time spent proving a single note.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shadow_queue_in_flight",
			Help: "1 if a proof job is currently Queued or Running, else 0.",
		}),
	}
	reg.MustRegister(m.JobsStarted, m.JobsCompleted, m.JobsFailed, m.JobsCancelled, m.NoteDuration, m.QueueDepth)
	return m, reg
}

// ObserveNote records how long a single note took to prove.
func (m *Metrics) ObserveNote(d time.Duration) {
	if m == nil {
		return
	}
	m.NoteDuration.Observe(d.Seconds())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MetricsHandler == nil {
		writeJSONError(w, "metrics not configured", http.StatusServiceUnavailable)
		return
	}
	s.cfg.MetricsHandler.ServeHTTP(w, r)
}

// PromHandler adapts a prometheus.Registry to an http.Handler.
func PromHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
