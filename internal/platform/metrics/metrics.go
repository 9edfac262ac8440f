package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-receiver safe so components can run without a metrics sink in tests.
type Metrics struct {
	RefreshTotal      *prometheus.CounterVec
	ChangeEventsTotal *prometheus.CounterVec
	StreamReconnects  *prometheus.CounterVec
	StreamConnected   *prometheus.GaugeVec
	PrimitivesRebuilt *prometheus.CounterVec
	BoundaryFetches   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "georisk_refresh_total",
			Help: "Total number of store refreshes by domain and outcome",
		}, []string{"domain", "outcome"}),
		ChangeEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "georisk_change_events_total",
			Help: "Total number of material change events per domain",
		}, []string{"domain"}),
		StreamReconnects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "georisk_stream_reconnects_total",
			Help: "Total number of push-channel reconnect attempts per domain",
		}, []string{"domain"}),
		StreamConnected: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "georisk_stream_connected",
			Help: "Whether the push-invalidation channel is currently up (0/1)",
		}, []string{"domain"}),
		PrimitivesRebuilt: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "georisk_layer_primitives_rebuilt_total",
			Help: "Total number of graphic primitives created during layer rebuilds",
		}, []string{"domain"}),
		BoundaryFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "georisk_boundary_fetches_total",
			Help: "Total number of world boundary dataset fetches",
		}),
	}
}

// ObserveRefresh records one refresh outcome for a domain.
func (m *Metrics) ObserveRefresh(domain, outcome string) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(domain, outcome).Inc()
}

// IncrementChangeEvents records one emitted change event for a domain.
func (m *Metrics) IncrementChangeEvents(domain string) {
	if m == nil {
		return
	}
	m.ChangeEventsTotal.WithLabelValues(domain).Inc()
}

// IncrementStreamReconnects records one reconnect attempt for a domain.
func (m *Metrics) IncrementStreamReconnects(domain string) {
	if m == nil {
		return
	}
	m.StreamReconnects.WithLabelValues(domain).Inc()
}

// SetStreamConnected records push-channel state for a domain.
func (m *Metrics) SetStreamConnected(domain string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1.0
	}
	m.StreamConnected.WithLabelValues(domain).Set(v)
}

// AddPrimitivesRebuilt records primitives created during one layer rebuild.
func (m *Metrics) AddPrimitivesRebuilt(domain string, n int) {
	if m == nil {
		return
	}
	m.PrimitivesRebuilt.WithLabelValues(domain).Add(float64(n))
}

// IncrementBoundaryFetches records one boundary dataset fetch.
func (m *Metrics) IncrementBoundaryFetches() {
	if m == nil {
		return
	}
	m.BoundaryFetches.Inc()
}
