package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/memory"
	"github.com/bsv-blockchain/coinview/stores/utxo/tests"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup() (*Store, *tests.CountingStore) {
	backing := tests.NewCountingStore(memory.New(ulogger.TestLogger{}))

	return New(ulogger.TestLogger{}, backing, time.Minute), backing
}

func TestCacheStore(t *testing.T) {
	tests.RunAll(t, func(t *testing.T) utxo.Store {
		s, _ := setup()
		return s
	})
}

func TestCacheFetchOnlyMisses(t *testing.T) {
	ctx := context.Background()
	s, backing := setup()

	defer func() {
		_ = s.Close(ctx)
	}()

	tests.SeedTx(t, s)

	_, err := s.Fetch(ctx, []chainhash.Hash{tests.TXHash, *tests.Hash})
	require.NoError(t, err)
	require.Equal(t, 1, backing.FetchCount())
	assert.ElementsMatch(t, []chainhash.Hash{tests.TXHash, *tests.Hash}, backing.FetchCalls()[0])

	// both are cached now, the absent one included
	resp, err := s.Fetch(ctx, []chainhash.Hash{*tests.Hash, tests.TXHash})
	require.NoError(t, err)
	assert.Equal(t, 1, backing.FetchCount())
	assert.NotNil(t, resp.Get(tests.TXHash))
	assert.Nil(t, resp.Get(*tests.Hash))
	assert.Contains(t, resp.Coins, *tests.Hash)
	assert.Equal(t, 2, s.Len())

	other := chainhash.Hash{9}

	_, err = s.Fetch(ctx, []chainhash.Hash{tests.TXHash, other, other})
	require.NoError(t, err)
	require.Equal(t, 2, backing.FetchCount())
	assert.Equal(t, []chainhash.Hash{other}, backing.FetchCalls()[1])
}

func TestCacheCommitInvalidates(t *testing.T) {
	ctx := context.Background()
	s, backing := setup()

	defer func() {
		_ = s.Close(ctx)
	}()

	tests.SeedTx(t, s)

	_, err := s.Fetch(ctx, []chainhash.Hash{tests.TXHash, *tests.Hash})
	require.NoError(t, err)

	created := &model.UnspentOutput{Satoshis: 10, LockingScript: []byte{0x51}, Height: 1001}

	require.NoError(t, s.Commit(ctx,
		[]model.Outpoint{model.NewOutpoint(tests.TXHash, 0)},
		map[model.Outpoint]*model.UnspentOutput{model.NewOutpoint(*tests.Hash, 0): created},
	))
	assert.Equal(t, 0, s.Len())

	resp, err := s.Fetch(ctx, []chainhash.Hash{tests.TXHash, *tests.Hash})
	require.NoError(t, err)
	assert.Equal(t, 2, backing.FetchCount())
	assert.NotContains(t, resp.Get(tests.TXHash).Outputs, uint32(0))
	require.NotNil(t, resp.Get(*tests.Hash))
	assert.True(t, created.Equal(resp.Get(*tests.Hash).Outputs[0]))
}

func TestCacheFailedCommitInvalidates(t *testing.T) {
	ctx := context.Background()
	s, backing := setup()

	defer func() {
		_ = s.Close(ctx)
	}()

	tests.SeedTx(t, s)

	_, err := s.Fetch(ctx, []chainhash.Hash{tests.TXHash})
	require.NoError(t, err)

	backing.CommitErr = errors.NewStorageError("disk full")

	err = s.Commit(ctx, []model.Outpoint{model.NewOutpoint(tests.TXHash, 0)}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageError))
	assert.Equal(t, 0, s.Len())
}

func TestCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := setup()

	defer func() {
		_ = s.Close(ctx)
	}()

	tests.SeedTx(t, s)

	resp, err := s.Fetch(ctx, []chainhash.Hash{tests.TXHash})
	require.NoError(t, err)

	delete(resp.Get(tests.TXHash).Outputs, 0)

	resp, err = s.Fetch(ctx, []chainhash.Hash{tests.TXHash})
	require.NoError(t, err)
	assert.Contains(t, resp.Get(tests.TXHash).Outputs, uint32(0))
}

func TestCacheFetchErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	s, backing := setup()

	defer func() {
		_ = s.Close(ctx)
	}()

	backing.FetchErr = errors.NewStorageUnavailableError("connection refused")

	_, err := s.Fetch(ctx, []chainhash.Hash{{1}})
	require.Error(t, err)
	assert.Same(t, backing.FetchErr, err)
	assert.Equal(t, 0, s.Len())
}
