package memory

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/tests"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	tests.RunAll(t, func(t *testing.T) utxo.Store {
		return New(ulogger.TestLogger{})
	})
}

func TestMemoryFetchReturnsCopies(t *testing.T) {
	db := New(ulogger.TestLogger{})
	tests.SeedTx(t, db)

	resp, err := db.Fetch(context.Background(), []chainhash.Hash{tests.TXHash})
	require.NoError(t, err)

	resp.Get(tests.TXHash).Outputs[0].Satoshis = 1
	delete(resp.Get(tests.TXHash).Outputs, 1)

	again, err := db.Fetch(context.Background(), []chainhash.Hash{tests.TXHash})
	require.NoError(t, err)

	assert.NotEqual(t, uint64(1), again.Get(tests.TXHash).Outputs[0].Satoshis)
	assert.Contains(t, again.Get(tests.TXHash).Outputs, uint32(1))
	assert.Equal(t, 1, db.Len())
}

func TestMemoryClosed(t *testing.T) {
	db := New(ulogger.TestLogger{})
	require.NoError(t, db.Close(context.Background()))

	_, err := db.Fetch(context.Background(), []chainhash.Hash{tests.TXHash})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageUnavailable))

	status, _, err := db.Health(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, 503, status)
}

func TestMemoryCanceledContext(t *testing.T) {
	db := New(ulogger.TestLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Fetch(ctx, []chainhash.Hash{tests.TXHash})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrContextCanceled))
}
