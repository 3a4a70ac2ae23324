package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the cart collectors.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
)

// CartMetrics records cart mutations and persistence activity.
type CartMetrics struct {
	mutations     *prometheus.CounterVec
	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	hydrations    *prometheus.CounterVec
	liveStores    prometheus.Gauge
}

// NewCartMetrics registers the cart collectors on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Committed cart mutations by operation.",
	}, []string{"op"})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_writes_total",
		Help: "Cart snapshot writes by backend and outcome.",
	}, []string{"backend", "outcome"})
	writeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_persist_write_duration_seconds",
		Help:    "Duration of cart snapshot writes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})
	hydrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_hydrations_total",
		Help: "Cart hydration reads by backend and outcome.",
	}, []string{"backend", "outcome"})
	liveStores := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_live_stores",
		Help: "Carts currently held in memory.",
	})
	reg.MustRegister(mutations, writes, writeDuration, hydrations, liveStores)
	return &CartMetrics{
		mutations:     mutations,
		writes:        writes,
		writeDuration: writeDuration,
		hydrations:    hydrations,
		liveStores:    liveStores,
	}
}

// IncMutation counts a committed cart mutation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveWrite records one snapshot write.
func (c *CartMetrics) ObserveWrite(backend string, duration time.Duration, err error) {
	if c == nil || c.writes == nil {
		return
	}
	backend = normalizeLabel(backend)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.writes.WithLabelValues(backend, outcome).Inc()
	c.writeDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// IncWrite counts a snapshot write outcome that never reached the backend.
func (c *CartMetrics) IncWrite(backend, outcome string) {
	if c == nil || c.writes == nil {
		return
	}
	c.writes.WithLabelValues(normalizeLabel(backend), normalizeLabel(outcome)).Inc()
}

// IncHydration counts a hydration read with the given outcome.
func (c *CartMetrics) IncHydration(backend, outcome string) {
	if c == nil || c.hydrations == nil {
		return
	}
	c.hydrations.WithLabelValues(normalizeLabel(backend), normalizeLabel(outcome)).Inc()
}

// SetLiveStores reports how many carts are resident.
func (c *CartMetrics) SetLiveStores(n int) {
	if c == nil || c.liveStores == nil {
		return
	}
	c.liveStores.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
