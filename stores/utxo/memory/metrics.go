package memory

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusMemoryFetch    prometheus.Counter
	prometheusMemoryFetchIDs prometheus.Counter
	prometheusMemoryCommit   prometheus.Counter

	// only init the metrics once
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusMemoryFetch = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "memory_utxo_fetch",
			Help:      "Number of utxo fetch calls done to the memory store",
		},
	)
	prometheusMemoryFetchIDs = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "memory_utxo_fetch_ids",
			Help:      "Number of transaction ids fetched from the memory store",
		},
	)
	prometheusMemoryCommit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "memory_utxo_commit",
			Help:      "Number of utxo commit calls done to the memory store",
		},
	)
}
