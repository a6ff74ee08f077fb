// Package settings reads the coinview configuration through gocore, which merges settings.conf,
// settings_local.conf and the environment.
package settings

import (
	"time"

	"github.com/bsv-blockchain/go-chaincfg"
)

func NewSettings() *Settings {
	params, err := chaincfg.GetChainParams(getString("network", "mainnet"))
	if err != nil {
		panic(err)
	}

	return &Settings{
		ServiceName:    getString("SERVICE_NAME", "coinview"),
		DataFolder:     getString("dataFolder", "data"),
		LogLevel:       getString("logLevel", "INFO"),
		ChainCfgParams: params,
		UtxoStore: UtxoStoreSettings{
			StoreURL:             getURL("utxostore", "sqlite:///utxostore"),
			CacheEnabled:         getBool("utxostore_cacheEnabled", true),
			CacheTTL:             getDuration("utxostore_cacheTTL", 10*time.Minute),
			DBTimeout:            getDuration("utxostore_dbTimeoutMillis", 5*time.Second),
			FetchBatchSize:       getInt("utxostore_fetchBatchSize", 500),
			FetchConcurrency:     getInt("utxostore_fetchConcurrency", 8),
			PostgresMaxIdleConns: getInt("utxostore_postgresMaxIdleConns", 10),
			PostgresMaxOpenConns: getInt("utxostore_postgresMaxOpenConns", 80),
			VerboseDebug:         getBool("utxostore_verbose_debug", false),
		},
		BlockValidation: BlockValidationSettings{
			MaxRetries:             getInt("blockvalidation_maxRetries", 3),
			RetryBackoffMultiplier: getInt("blockvalidation_retryBackoffMultiplier", 2),
			RetryBackoffDuration:   getDuration("blockvalidation_retryBackoffMillis", 100*time.Millisecond),
			Concurrency:            getInt("blockvalidation_concurrency", 4),
			RejectedBlockCacheTTL:  getDuration("blockvalidation_rejectedBlockCacheTTL", 10*time.Minute),
			EnforceBIP30:           getBool("blockvalidation_enforceBIP30", false),
		},
		Health: HealthSettings{
			GRPCListenAddress: getString("health_grpcListenAddress", ":8090"),
		},
		Metrics: MetricsSettings{
			HTTPListenAddress: getString("metrics_httpListenAddress", ":9091"),
		},
		Tracing: TracingSettings{
			Enabled:      getBool("tracing_enabled", false),
			CollectorURL: getURL("tracing_collectorURL", "http://localhost:4318"),
			SampleRate:   getFloat64("tracing_sampleRate", 0.01),
		},
	}
}
