// Package metrics records batch build metrics for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hoopstats"

// Fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeRetry = "retry"
	OutcomeError = "error"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetchAttempts     *prometheus.CounterVec
	playersDegraded   prometheus.Counter
	identityAmbiguous prometheus.Counter
	liveFallbacks     *prometheus.CounterVec
	buildDuration     prometheus.Gauge
	artifactTeams     prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetchAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "CSV fetch attempts by outcome.",
		}, []string{"outcome"}),
		playersDegraded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_degraded_total",
			Help:      "Players whose source could not be fetched and were built from no rows.",
		}),
		identityAmbiguous: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_ambiguous_total",
			Help:      "Team cells that matched more than one canonical team.",
		}),
		liveFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_fallbacks_total",
			Help:      "Reader requests served by live recomputation, by reason.",
		}, []string{"reason"}),
		buildDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of the last artifact build.",
		}),
		artifactTeams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_teams",
			Help:      "Teams written to the last artifact.",
		}),
	}
}

func (r *Recorder) FetchAttempt(outcome string) {
	if r == nil {
		return
	}
	r.fetchAttempts.WithLabelValues(outcome).Inc()
}

func (r *Recorder) PlayerDegraded() {
	if r == nil {
		return
	}
	r.playersDegraded.Inc()
}

func (r *Recorder) IdentityAmbiguous() {
	if r == nil {
		return
	}
	r.identityAmbiguous.Inc()
}

func (r *Recorder) LiveFallback(reason string) {
	if r == nil {
		return
	}
	r.liveFallbacks.WithLabelValues(reason).Inc()
}

// BuildFinished records the duration and team count of a completed build.
func (r *Recorder) BuildFinished(d time.Duration, teams int) {
	if r == nil {
		return
	}
	r.buildDuration.Set(d.Seconds())
	r.artifactTeams.Set(float64(teams))
}

// Gatherer exposes the registry for scraping or tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
