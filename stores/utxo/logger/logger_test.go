package logger

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/memory"
	"github.com/bsv-blockchain/coinview/stores/utxo/tests"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util/test/mocklogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerStore(t *testing.T) {
	tests.RunAll(t, func(t *testing.T) utxo.Store {
		return New(ulogger.TestLogger{}, memory.New(ulogger.TestLogger{}))
	})
}

func TestLoggerStoreLogsCalls(t *testing.T) {
	ctx := context.Background()
	logger := mocklogger.NewTestLogger()
	s := New(logger, memory.New(ulogger.TestLogger{}))

	tests.SeedTx(t, s)
	assert.True(t, logger.Contains("DEBUG [UTXOStore][logger][Commit] spent 0 added 5"))

	_, err := s.Fetch(ctx, []chainhash.Hash{tests.TXHash, *tests.Hash})
	require.NoError(t, err)
	assert.True(t, logger.Contains("[UTXOStore][logger][Fetch] txids 2 found 1"))
	assert.True(t, logger.Contains("called from"))

	err = s.Commit(ctx, []model.Outpoint{model.NewOutpoint(*tests.Hash, 0)}, nil)
	require.Error(t, err)
	assert.True(t, logger.Contains("WARN [UTXOStore][logger][Commit] spent 1 added 0"))

	require.NoError(t, s.Close(ctx))
	assert.True(t, logger.Contains("INFO [UTXOStore][logger][Close]"))

	logger.AssertNumberOfCalls(t, "Warnf", 1)
	logger.AssertNumberOfCalls(t, "Infof", 1)
}
