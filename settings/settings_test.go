package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// check settings object is initialised
func TestInitialiseSettings(t *testing.T) {
	tSettings := NewSettings()

	require.NotNil(t, tSettings.ChainCfgParams)
	require.NotNil(t, tSettings.UtxoStore.StoreURL)
	require.NotNil(t, tSettings.Tracing.CollectorURL)

	assert.Positive(t, tSettings.UtxoStore.FetchBatchSize)
	assert.Positive(t, tSettings.UtxoStore.FetchConcurrency)
	assert.Positive(t, tSettings.BlockValidation.Concurrency)
	assert.Positive(t, tSettings.UtxoStore.DBTimeout)
}

func TestChainParams(t *testing.T) {
	tSettings := NewSettings()

	// every network defines a coinbase maturity, mainnet uses 100
	require.Positive(t, tSettings.ChainCfgParams.CoinbaseMaturity)
}

func TestGetDuration(t *testing.T) {
	t.Run("missing key falls back", func(t *testing.T) {
		assert.Equal(t, 3*time.Second, getDuration("coinview_test_missing_duration", 3*time.Second))
	})

	t.Run("missing float falls back", func(t *testing.T) {
		assert.InDelta(t, 0.5, getFloat64("coinview_test_missing_float", 0.5), 0.0001)
	})
}
