package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusCacheHits          prometheus.Counter
	prometheusCacheMisses        prometheus.Counter
	prometheusCacheInvalidations prometheus.Counter

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "utxo_cache_hits",
			Help:      "Number of transaction ids resolved from the utxo cache",
		},
	)
	prometheusCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "utxo_cache_misses",
			Help:      "Number of transaction ids fetched from the backing store",
		},
	)
	prometheusCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "utxo_cache_invalidations",
			Help:      "Number of commits that invalidated cached transaction ids",
		},
	)
}
