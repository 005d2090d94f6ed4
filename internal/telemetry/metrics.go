package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReconcileCycles counts reconciliation cycles by triggering event.
	ReconcileCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifitrack",
			Name:      "reconcile_cycles_total",
			Help:      "Total number of reconciliation cycles run by the tracker",
		},
		[]string{"trigger"},
	)

	// EntriesEvicted counts cache records removed for being unreachable.
	EntriesEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wifitrack",
			Name:      "entries_evicted_total",
			Help:      "Total number of entries evicted from the cache",
		},
	)

	// EventsDropped counts platform events and notifications rejected at the
	// boundary or shed under backpressure.
	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifitrack",
			Name:      "events_dropped_total",
			Help:      "Total number of dropped events",
		},
		[]string{"reason"},
	)

	// VisibleEntries tracks the size of the published visible list.
	VisibleEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifitrack",
			Name:      "visible_entries",
			Help:      "Number of entries in the latest published snapshot",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		prometheus.DefaultRegisterer.Register(ReconcileCycles)
		prometheus.DefaultRegisterer.Register(EntriesEvicted)
		prometheus.DefaultRegisterer.Register(EventsDropped)
		prometheus.DefaultRegisterer.Register(VisibleEntries)
	})
}
