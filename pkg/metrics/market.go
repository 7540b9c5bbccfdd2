package metrics

import "github.com/prometheus/client_golang/prometheus"

// MarketMetrics tracks market data cache efficiency and upstream failures.
type MarketMetrics struct {
	lookups  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewMarketMetrics(reg prometheus.Registerer) *MarketMetrics {
	if reg == nil {
		return &MarketMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "market_cache_lookups_total",
		Help: "Market data cache lookups by kind and result.",
	}, []string{"kind", "result"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "market_upstream_failures_total",
		Help: "Failed upstream market data fetches.",
	}, []string{"kind"})
	reg.MustRegister(lookups, failures)
	return &MarketMetrics{lookups: lookups, failures: failures}
}

func (m *MarketMetrics) CacheHit(kind string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(kind), "hit").Inc()
}

func (m *MarketMetrics) CacheMiss(kind string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(kind), "miss").Inc()
}

func (m *MarketMetrics) UpstreamFailure(kind string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}
