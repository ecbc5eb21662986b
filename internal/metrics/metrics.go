// Package metrics holds the Prometheus collectors of the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "soundbath"

// Metrics groups the engine collectors. New(nil) creates working but
// unregistered collectors.
type Metrics struct {
	// Gauges
	ActiveGenerators prometheus.Gauge
	Degraded         prometheus.Gauge

	// Counters
	SessionsTotal          *prometheus.CounterVec
	StopsTotal             *prometheus.CounterVec
	RejectedTotal          prometheus.Counter
	TeardownSwallowedTotal prometheus.Counter

	// Histograms
	RenderSeconds *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg when it is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActiveGenerators: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_generators",
			Help:      "Number of oscillators or streams of the current session",
		}),
		Degraded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degraded",
			Help:      "1 when the audio device could not be opened and output is simulated",
		}),
		SessionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Playback sessions started by kind and backend",
		}, []string{"kind", "backend"}),
		StopsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stops_total",
			Help:      "Session stops by reason",
		}, []string{"reason"}),
		RejectedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Play requests rejected as invalid",
		}),
		TeardownSwallowedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "teardown_swallowed_total",
			Help:      "Disconnects of already finalized handles",
		}),
		RenderSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Offline render time by kind",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
	}
}
