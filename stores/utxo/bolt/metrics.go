package bolt

import (
	"sync"

	"github.com/bsv-blockchain/coinview/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusBoltFetch          prometheus.Counter
	prometheusBoltFetchDuration  prometheus.Histogram
	prometheusBoltCommit         prometheus.Counter
	prometheusBoltCommitDuration prometheus.Histogram
	prometheusBoltErrors         *prometheus.CounterVec

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBoltFetch = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "bolt_utxo_fetch",
			Help:      "Number of utxo fetch calls done to the bolt store",
		},
	)
	prometheusBoltFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Name:      "bolt_utxo_fetch_duration_seconds",
			Help:      "Duration of utxo fetch calls done to the bolt store",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
	prometheusBoltCommit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "bolt_utxo_commit",
			Help:      "Number of utxo commit calls done to the bolt store",
		},
	)
	prometheusBoltCommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Name:      "bolt_utxo_commit_duration_seconds",
			Help:      "Duration of utxo commit calls done to the bolt store",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
	prometheusBoltErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "bolt_utxo_errors",
			Help:      "Number of utxo errors",
		},
		[]string{
			"function", // function raising the error
			"error",    // error returned
		},
	)
}
