package settings

import (
	"net/url"
	"time"

	"github.com/bsv-blockchain/go-chaincfg"
)

type UtxoStoreSettings struct {
	StoreURL *url.URL
	// CacheEnabled puts the ttl cache overlay in front of the store
	CacheEnabled bool
	CacheTTL     time.Duration
	DBTimeout    time.Duration
	// FetchBatchSize is the maximum number of ids per SQL statement, a single Fetch call is split
	// into as many statements as needed
	FetchBatchSize       int
	FetchConcurrency     int
	PostgresMaxIdleConns int
	PostgresMaxOpenConns int
	VerboseDebug         bool
}

type BlockValidationSettings struct {
	MaxRetries             int
	RetryBackoffMultiplier int
	RetryBackoffDuration   time.Duration
	// Concurrency caps how many pipeline runs may be in flight at once
	Concurrency           int
	RejectedBlockCacheTTL time.Duration
	// EnforceBIP30 forces the duplicate txid check on every block, ignoring the historical exceptions
	EnforceBIP30 bool
}

type HealthSettings struct {
	GRPCListenAddress string
}

type MetricsSettings struct {
	HTTPListenAddress string
}

type TracingSettings struct {
	Enabled      bool
	CollectorURL *url.URL
	SampleRate   float64
}

type Settings struct {
	ServiceName     string
	DataFolder      string
	LogLevel        string
	ChainCfgParams  *chaincfg.Params
	UtxoStore       UtxoStoreSettings
	BlockValidation BlockValidationSettings
	Health          HealthSettings
	Metrics         MetricsSettings
	Tracing         TracingSettings
}
