// Package metrics exposes trio formation measurements to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements formation.Recorder backed by Prometheus.
type Recorder struct {
	runs          *prometheus.CounterVec
	groupsCreated prometheus.Counter
	runDuration   *prometheus.HistogramVec
	hookFailures  *prometheus.CounterVec
	cleanupRemove prometheus.Counter
}

var _ formation.Recorder = (*Recorder)(nil)

// New creates a Recorder and registers its metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer and an empty namespace uses "rantrio".
// Every outcome and hook series starts at zero so it is scraped before the
// first run.
func New(reg prometheus.Registerer, namespace string) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rantrio"
	}

	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "formation",
			Name:      "runs_total",
			Help:      "Trio formation runs by outcome.",
		}, []string{"outcome"}),

		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "formation",
			Name:      "groups_created_total",
			Help:      "Trios persisted by formation runs.",
		}),

		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "formation",
			Name:      "run_duration_seconds",
			Help:      "Wall time of formation runs in seconds by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}, []string{"outcome"}),

		hookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "formation",
			Name:      "hook_failures_total",
			Help:      "Post-formation hook failures by hook (cleanup, notify).",
		}, []string{"hook"}),

		cleanupRemove: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "expired_removed_total",
			Help:      "Expired posts and replies removed by scheduled or manual cleanup.",
		}),
	}

	for _, o := range formation.Outcomes {
		r.runs.WithLabelValues(string(o))
		r.runDuration.WithLabelValues(string(o))
	}
	for _, h := range []string{formation.HookCleanup, formation.HookNotify} {
		r.hookFailures.WithLabelValues(h)
	}

	reg.MustRegister(r.runs, r.groupsCreated, r.runDuration, r.hookFailures, r.cleanupRemove)
	return r
}

// RunFinished records one completed run.
func (r *Recorder) RunFinished(outcome formation.Outcome, groups int, elapsed time.Duration) {
	r.runs.WithLabelValues(string(outcome)).Inc()
	r.runDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
	if groups > 0 {
		r.groupsCreated.Add(float64(groups))
	}
}

// HookFailed counts a failed post-formation hook.
func (r *Recorder) HookFailed(hook string) {
	r.hookFailures.WithLabelValues(hook).Inc()
}

// ContentRemoved counts documents removed by a cleanup outside a formation run.
func (r *Recorder) ContentRemoved(n int64) {
	if n > 0 {
		r.cleanupRemove.Add(float64(n))
	}
}

// Handler serves the metrics in g. A nil g serves the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
