// Package metrics exposes the bot's counters and histograms behind a small
// interface so callers do not depend on the prometheus client directly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// Collectors are registered on the private registry served at /metrics.
	prometheus.Collector
}

type Metrics struct {
	CommandCount    Observer
	SpokenCount     Observer
	TTSFetchLatency Observer
	RCONLatency     Observer
	VxerRewrites    Observer
	StatusUpdates   Observer
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandCount,
		m.SpokenCount,
		m.TTSFetchLatency,
		m.RCONLatency,
		m.VxerRewrites,
		m.StatusUpdates,
	}
}

var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// New builds the metric set. Collectors are not registered anywhere yet.
func New() *Metrics {
	return &Metrics{
		CommandCount: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "medsbot",
					Subsystem: "commands",
					Name:      "executed",
					Help:      "Number of command invocations by command name.",
				},
				[]string{"command"},
			),
		),
		SpokenCount: NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "medsbot",
					Subsystem: "tts",
					Name:      "spoken",
					Help:      "Number of chat messages relayed into voice.",
				},
			),
		),
		TTSFetchLatency: NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   latencyBuckets,
					Namespace: "medsbot",
					Subsystem: "tts",
					Name:      "fetch_latency",
					Help:      "How long speech synthesis downloads take in seconds.",
				},
				[]string{"backend"},
			),
		),
		RCONLatency: NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   latencyBuckets,
					Namespace: "medsbot",
					Subsystem: "minecraft",
					Name:      "rcon_latency",
					Help:      "How long RCON commands take in seconds.",
				},
				[]string{"command"},
			),
		),
		VxerRewrites: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "medsbot",
					Subsystem: "vxer",
					Name:      "rewrites",
					Help:      "Number of links rewritten on request.",
				},
				[]string{"site"},
			),
		),
		StatusUpdates: NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "medsbot",
					Subsystem: "pastures",
					Name:      "status_updates",
					Help:      "Status embed refreshes by outcome.",
				},
				[]string{"outcome"},
			),
		),
	}
}
