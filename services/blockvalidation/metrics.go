package blockvalidation

import (
	"sync"

	"github.com/bsv-blockchain/coinview/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusPipelineDuration   prometheus.Histogram
	prometheusPipelineResults    *prometheus.CounterVec
	prometheusRuleDuration       *prometheus.HistogramVec
	prometheusLoadCoinViewFetch  prometheus.Histogram
	prometheusLoadCoinViewIDs    prometheus.Histogram
	prometheusSaveCoinViewCommit prometheus.Histogram

	// block validator
	prometheusBlockValidatorValidate      prometheus.Histogram
	prometheusBlockValidatorRetries       prometheus.Counter
	prometheusBlockValidatorRejectedCache prometheus.Gauge
	prometheusBlockValidatorInFlight      prometheus.Gauge
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusPipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of a complete pipeline run",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusPipelineResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "pipeline_results",
			Help:      "Number of pipeline runs by final state and error category",
		},
		[]string{
			"state",    // accepted, rejected or aborted
			"category", // errors.GetErrorCategory of the run's error, none when accepted
		},
	)

	prometheusRuleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "rule_duration_seconds",
			Help:      "Duration of a single rule",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
		[]string{
			"rule",
		},
	)

	prometheusLoadCoinViewFetch = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "load_coin_view_seconds",
			Help:      "Duration of the coin store fetch of a block",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusLoadCoinViewIDs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "load_coin_view_ids",
			Help:      "Number of transaction ids fetched per block",
			Buckets:   util.MetricsBucketsCount,
		},
	)

	prometheusSaveCoinViewCommit = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "save_coin_view_seconds",
			Help:      "Duration of the coin store commit of a block",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusBlockValidatorValidate = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "validate_block_seconds",
			Help:      "Duration of ValidateBlock, retries included",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusBlockValidatorRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "retries",
			Help:      "Number of pipeline runs retried after an infrastructure fault",
		},
	)

	prometheusBlockValidatorRejectedCache = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "rejected_blocks_cache",
			Help:      "Number of recently rejected block hashes remembered",
		},
	)

	prometheusBlockValidatorInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "coinview",
			Subsystem: "blockvalidation",
			Name:      "in_flight",
			Help:      "Number of pipeline runs in progress",
		},
	)
}
