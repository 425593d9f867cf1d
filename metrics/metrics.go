// Package metrics exposes the optional Prometheus instrumentation as
// package-level collectors. The relay session updates FramesProcessed,
// ReconnectAttempts and ConnectionState; the other collectors are declared
// here but no component of this module updates them. A caller that never
// wires a metrics server still gets a fully usable library, since promauto
// registers against this package's own registry rather than the global
// default one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gns_core"

// Registry is the collector registry every metric in this package
// publishes against. Handler() serves it; StartServer() exposes it over
// HTTP for a host that wants a standalone /metrics endpoint.
var Registry = prometheus.NewRegistry()

var (
	// FramesProcessed counts relay frames read and written by the relay
	// session; the frame_type label carries the direction ("inbound" or
	// "outbound").
	FramesProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "frames_processed_total",
			Help:      "Total number of relay frames read or written by the relay session",
		},
		[]string{"frame_type", "outcome"},
	)

	// ReconnectAttempts counts relay reconnect attempts.
	ReconnectAttempts = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "reconnect_attempts_total",
			Help:      "Total number of relay reconnect attempts",
		},
	)

	// ConnectionState reports the relay session's current state as a
	// gauge (0=Disconnected, 1=Connecting, 2=Connected, 3=Reconnecting).
	ConnectionState = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "connection_state",
			Help:      "Current relay session state",
		},
	)

	// StoreOperationDuration tracks local store operation latency.
	StoreOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Local store operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"operation"},
	)

	// EnvelopesSealed and EnvelopesOpened track the sealed-payload path.
	EnvelopesSealed = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envelope",
			Name:      "sealed_total",
			Help:      "Total number of envelopes created",
		},
	)
	EnvelopesOpened = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envelope",
			Name:      "opened_total",
			Help:      "Total number of envelopes opened, by signature validity",
		},
		[]string{"signature_valid"},
	)
)

// Handler returns the HTTP handler serving this package's registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// StartServer starts a standalone metrics HTTP server on addr. It blocks
// until the server stops or fails; callers typically run it in its own
// goroutine.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
