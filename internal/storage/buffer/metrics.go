package buffer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "bufmgr"
	metricsSubsystem = "buffer_pool"
)

// Metrics holds the pool's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Evictions  prometheus.Counter
	WriteBacks prometheus.Counter
	Exhausted  prometheus.Counter
	Pinned     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		Hits:       counter("hits_total", "Fetches served from a resident frame."),
		Misses:     counter("misses_total", "Fetches that had to read the page from its file."),
		Evictions:  counter("evictions_total", "Valid frames reclaimed by the clock."),
		WriteBacks: counter("write_backs_total", "Dirty pages written back to their file."),
		Exhausted:  counter("exhausted_total", "Frame requests that found no evictable frame."),
		Pinned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "pinned_frames",
			Help:      "Frames with a pin count above zero.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Evictions, m.WriteBacks, m.Exhausted, m.Pinned)
	}
	return m
}

func (m *Metrics) hit() {
	if m != nil {
		m.Hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.Misses.Inc()
	}
}

func (m *Metrics) evicted() {
	if m != nil {
		m.Evictions.Inc()
	}
}

func (m *Metrics) wroteBack() {
	if m != nil {
		m.WriteBacks.Inc()
	}
}

func (m *Metrics) exhaustedRequest() {
	if m != nil {
		m.Exhausted.Inc()
	}
}

func (m *Metrics) pinned(delta float64) {
	if m != nil {
		m.Pinned.Add(delta)
	}
}
