package blockvalidation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util/test"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first failures fetches with err.
type flakyStore struct {
	utxo.Store
	failures atomic.Int32
	err      error
}

func (f *flakyStore) Fetch(ctx context.Context, txIDs []chainhash.Hash) (*utxo.FetchResponse, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, f.err
	}

	return f.Store.Fetch(ctx, txIDs)
}

// gatedStore holds the first commit after it reached the store until release is closed.
type gatedStore struct {
	utxo.Store
	once      sync.Once
	committed chan struct{}
	release   chan struct{}
}

func newGatedStore(store utxo.Store) *gatedStore {
	return &gatedStore{
		Store:     store,
		committed: make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gatedStore) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error {
	err := g.Store.Commit(ctx, spent, added)

	g.once.Do(func() {
		close(g.committed)
		<-g.release
	})

	return err
}

func newTestValidator(t *testing.T, tc *testChain, store utxo.Store) *BlockValidator {
	t.Helper()

	tc.settings.BlockValidation.MaxRetries = 3
	tc.settings.BlockValidation.RetryBackoffMultiplier = 1
	tc.settings.BlockValidation.RetryBackoffDuration = time.Millisecond
	tc.settings.BlockValidation.Concurrency = 2
	tc.settings.BlockValidation.EnforceBIP30 = false

	if store == nil {
		store = tc.store
	}

	return NewBlockValidator(ulogger.TestLogger{}, tc.settings, store, tc.chainState)
}

func TestBlockValidatorValidateBlock(t *testing.T) {
	t.Run("accepts and advances the tip", func(t *testing.T) {
		tc := newTestChain(t)
		bv := newTestValidator(t, tc, nil)

		block := tc.block(100, test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 0)}, 900))

		result, err := bv.ValidateBlock(context.Background(), block)
		require.NoError(t, err)
		require.NoError(t, result.Err)
		assert.Equal(t, StateAccepted, result.State)
		assert.Equal(t, *block.Hash(), tc.chainState.CurrentTip().Hash)

		// the next block builds on the new tip and spends the output just created
		next := tc.block(0, test.SpendingTx([]model.Outpoint{test.Outpoint(block.Transactions[1], 0)}, 900))

		result, err = bv.ValidateBlock(context.Background(), next)
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, result.State)
		assert.Equal(t, uint32(tipHeight+2), tc.chainState.CurrentTip().Height)
	})

	t.Run("retries a store outage", func(t *testing.T) {
		tc := newTestChain(t)

		store := &flakyStore{Store: tc.store, err: errors.NewStorageUnavailableError("connection refused")}
		store.failures.Store(2)

		bv := newTestValidator(t, tc, store)

		block := tc.block(0)

		result, err := bv.ValidateBlock(context.Background(), block)
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, result.State)
		assert.Equal(t, *block.Hash(), tc.chainState.CurrentTip().Hash)
	})

	t.Run("gives up after the retries", func(t *testing.T) {
		tc := newTestChain(t)

		store := &flakyStore{Store: tc.store, err: errors.NewStorageUnavailableError("connection refused")}
		store.failures.Store(100)

		bv := newTestValidator(t, tc, store)

		result, err := bv.ValidateBlock(context.Background(), tc.block(0))
		require.NoError(t, err)
		assert.Equal(t, StateAborted, result.State)
		assert.True(t, errors.Is(result.Err, errors.ErrStorageUnavailable))
		assert.Equal(t, int32(100-3), store.failures.Load())
	})

	t.Run("processing faults are not retried", func(t *testing.T) {
		tc := newTestChain(t)

		store := &flakyStore{Store: tc.store, err: errors.NewProcessingError("bad response")}
		store.failures.Store(100)

		bv := newTestValidator(t, tc, store)

		result, err := bv.ValidateBlock(context.Background(), tc.block(0))
		require.NoError(t, err)
		assert.Equal(t, StateAborted, result.State)
		assert.Equal(t, int32(99), store.failures.Load())
	})

	t.Run("remembers rejected blocks", func(t *testing.T) {
		tc := newTestChain(t)
		bv := newTestValidator(t, tc, nil)

		block := tc.block(0, test.SpendingTx([]model.Outpoint{model.NewOutpoint(test.Hash(0x77), 0)}, 1))

		result, err := bv.ValidateBlock(context.Background(), block)
		require.NoError(t, err)
		assert.Equal(t, StateRejected, result.State)
		assert.True(t, errors.Is(result.Err, errors.ErrTxMissingInputs))
		assert.Equal(t, 1, tc.store.FetchCount())

		result, err = bv.ValidateBlock(context.Background(), block)
		require.NoError(t, err)
		assert.Equal(t, StateRejected, result.State)
		assert.True(t, errors.Is(result.Err, errors.ErrBlockRejectedRecently))
		assert.True(t, errors.Is(result.Err, errors.ErrTxMissingInputs))
		assert.Equal(t, 1, tc.store.FetchCount())
	})

	t.Run("stale tip is not remembered", func(t *testing.T) {
		tc := newTestChain(t)
		bv := newTestValidator(t, tc, nil)

		block := test.Block(test.Hash(9), test.CoinbaseTx(tipHeight+1, subsidy))

		for i := 0; i < 2; i++ {
			result, err := bv.ValidateBlock(context.Background(), block)
			require.NoError(t, err)
			assert.True(t, errors.Is(result.Err, errors.ErrInvalidPreviousTip))
			assert.False(t, errors.Is(result.Err, errors.ErrBlockRejectedRecently))
		}

		assert.Equal(t, 0, tc.store.FetchCount())
	})

	t.Run("canceled context", func(t *testing.T) {
		tc := newTestChain(t)
		bv := newTestValidator(t, tc, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := bv.ValidateBlock(ctx, tc.block(0))
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, errors.ErrContextCanceled))
		assert.Equal(t, 0, tc.store.FetchCount())
	})

	t.Run("coinbase height once BIP34 is active", func(t *testing.T) {
		tc := newTestChain(t)

		params := *tc.settings.ChainCfgParams
		params.BIP0034Height = tipHeight
		tc.settings.ChainCfgParams = &params

		bv := newTestValidator(t, tc, nil)

		wrongHeight := test.Block(tc.chainState.CurrentTip().Hash, test.CoinbaseTx(tipHeight, subsidy))

		result, err := bv.ValidateBlock(context.Background(), wrongHeight)
		require.NoError(t, err)
		assert.Equal(t, StateRejected, result.State)
		assert.Equal(t, "CheckTransactions", result.FailedRule)
		assert.True(t, errors.Is(result.Err, errors.ErrBlockCoinbaseInvalid))

		block := tc.block(0)

		result, err = bv.ValidateBlock(context.Background(), block)
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, result.State)
		assert.Equal(t, *block.Hash(), tc.chainState.CurrentTip().Hash)
	})

	t.Run("concurrent blocks on one tip", func(t *testing.T) {
		tc := newTestChain(t)
		bv := newTestValidator(t, tc, nil)

		blocks := []*model.Block{
			tc.block(0, test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 0)}, 1000)),
			tc.block(0, test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 1)}, 2000)),
			tc.block(0),
			tc.block(0),
		}

		var wg sync.WaitGroup

		results := make([]*ValidationResult, len(blocks))

		for i, block := range blocks {
			wg.Add(1)

			go func() {
				defer wg.Done()

				result, err := bv.ValidateBlock(context.Background(), block)
				assert.NoError(t, err)

				results[i] = result
			}()
		}

		wg.Wait()

		accepted := 0

		for _, result := range results {
			require.NotNil(t, result)

			if result.State == StateAccepted {
				accepted++
				continue
			}

			// every other block lost the race for the tip, none of them is invalid
			assert.Equal(t, StateRejected, result.State)
			assert.True(t, errors.Is(result.Err, errors.ErrInvalidPreviousTip), "unexpected error: %v", result.Err)
			assert.False(t, errors.Is(result.Err, errors.ErrTxMissingInputs))
		}

		assert.Equal(t, 1, accepted)
		assert.Equal(t, 0, bv.rejectedBlocks.Len())
		assert.Equal(t, uint32(tipHeight+1), tc.chainState.CurrentTip().Height)
		assert.Equal(t, 1, tc.store.CommitCount())
	})

	t.Run("sibling waits for a commit in flight", func(t *testing.T) {
		tc := newTestChain(t)
		gate := newGatedStore(tc.store)
		bv := newTestValidator(t, tc, gate)

		// both spend the same output and build on the same tip
		first := tc.block(0, test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 0)}, 1000))
		sibling := tc.block(0, test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 0)}, 999))

		firstDone := make(chan *ValidationResult, 1)

		go func() {
			result, err := bv.ValidateBlock(context.Background(), first)
			assert.NoError(t, err)

			firstDone <- result
		}()

		// the spend of first is in the store, its tip is not yet published
		<-gate.committed

		siblingDone := make(chan *ValidationResult, 1)

		go func() {
			result, err := bv.ValidateBlock(context.Background(), sibling)
			assert.NoError(t, err)

			siblingDone <- result
		}()

		assert.Never(t, func() bool { return len(siblingDone) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

		close(gate.release)

		result := <-firstDone
		require.NotNil(t, result)
		assert.Equal(t, StateAccepted, result.State)

		result = <-siblingDone
		require.NotNil(t, result)
		assert.Equal(t, StateRejected, result.State)
		assert.Equal(t, "LoadCoinView", result.FailedRule)
		assert.True(t, errors.Is(result.Err, errors.ErrInvalidPreviousTip))
		assert.False(t, errors.Is(result.Err, errors.ErrTxMissingInputs))
		assert.Equal(t, 0, bv.rejectedBlocks.Len())

		// resubmitting is judged against the tip again, not answered from the rejected cache
		result, err := bv.ValidateBlock(context.Background(), sibling)
		require.NoError(t, err)
		assert.True(t, errors.Is(result.Err, errors.ErrInvalidPreviousTip))
		assert.False(t, errors.Is(result.Err, errors.ErrBlockRejectedRecently))

		// only first ever fetched
		assert.Equal(t, 1, tc.store.FetchCount())
	})
}

func TestBlockValidatorFlags(t *testing.T) {
	tc := newTestChain(t)
	bv := newTestValidator(t, tc, nil)

	block := tc.block(0)

	assert.True(t, bv.flags(block).EnforceBIP30)
	assert.False(t, bv.flags(block).EnforceBIP34)
	assert.Equal(t, uint32(tc.settings.ChainCfgParams.CoinbaseMaturity), bv.flags(block).CoinbaseMaturity)
	assert.Equal(t, tc.pipeline().Rules(), bv.Pipeline().Rules())
}
