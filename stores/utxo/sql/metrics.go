package sql

import (
	"sync"

	"github.com/bsv-blockchain/coinview/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusUtxoFetch           prometheus.Counter
	prometheusUtxoFetchStatements prometheus.Counter
	prometheusUtxoFetchDuration   prometheus.Histogram
	prometheusUtxoCommit          prometheus.Counter
	prometheusUtxoCommitDuration  prometheus.Histogram
	prometheusUtxoErrors          *prometheus.CounterVec

	// only init the metrics once
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusUtxoFetch = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "sql_utxo_fetch",
			Help:      "Number of utxo fetch calls done to sql",
		},
	)
	prometheusUtxoFetchStatements = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "sql_utxo_fetch_statements",
			Help:      "Number of SELECT statements issued by utxo fetch calls",
		},
	)
	prometheusUtxoFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Name:      "sql_utxo_fetch_duration_seconds",
			Help:      "Duration of utxo fetch calls done to sql",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
	prometheusUtxoCommit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "sql_utxo_commit",
			Help:      "Number of utxo commit calls done to sql",
		},
	)
	prometheusUtxoCommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Name:      "sql_utxo_commit_duration_seconds",
			Help:      "Duration of utxo commit calls done to sql",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
	prometheusUtxoErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Name:      "sql_utxo_errors",
			Help:      "Number of utxo errors",
		},
		[]string{
			"function", // function raising the error
			"error",    // error returned
		},
	)
}
