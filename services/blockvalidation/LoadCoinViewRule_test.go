package blockvalidation

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/util/test"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLoadCoinViewRule(t *testing.T) {
	t.Run("block on another tip", func(t *testing.T) {
		tc := newTestChain(t)

		block := test.Block(test.Hash(99), test.CoinbaseTx(tipHeight+1, subsidy))
		vctx := NewContext(block, Flags{EnforceBIP30: true}, tc.settings.ChainCfgParams)

		err := tc.loadRule().Run(context.Background(), vctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidPreviousTip))

		assert.Equal(t, 0, tc.store.FetchCount())
		assert.Equal(t, 0, tc.store.CommitCount())
		assert.Equal(t, 0, vctx.CoinView.Len())
		assert.Empty(t, vctx.FetchedIDs)
	})

	t.Run("block without previous hash", func(t *testing.T) {
		tc := newTestChain(t)

		block := test.Block(test.Hash(1), test.CoinbaseTx(tipHeight+1, subsidy))
		block.Header.HashPrevBlock = nil

		err := tc.loadRule().Run(context.Background(), NewContext(block, Flags{}, tc.settings.ChainCfgParams))
		assert.True(t, errors.Is(err, errors.ErrInvalidPreviousTip))
		assert.Equal(t, 0, tc.store.FetchCount())
	})

	t.Run("coinbase and one spend", func(t *testing.T) {
		tc := newTestChain(t)

		regular := test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 0)}, 900)
		block := tc.block(100, regular)

		vctx := tc.loadedContext(t, block)

		calls := tc.store.FetchCalls()
		require.Len(t, calls, 1)

		// with BIP30 enforced every txid of the block is fetched, the coinbase included. Leaving the
		// coinbase out would let a block repeat an earlier coinbase with unspent outputs. See
		// DESIGN.md, "Open question decisions", item 3.
		assert.Equal(t, []chainhash.Hash{
			*block.Transactions[0].TxIDChainHash(),
			*regular.TxIDChainHash(),
			*tc.funding.TxIDChainHash(),
		}, calls[0])

		// the whole funding transaction is loaded, the coinbase and the regular tx are absent
		assert.Equal(t, 2, vctx.CoinView.Len())

		out, ok := vctx.CoinView.AccessCoin(test.Outpoint(tc.funding, 0))
		require.True(t, ok)
		assert.Equal(t, uint64(1000), out.Satoshis)
		assert.False(t, vctx.CoinView.HasUnspentOutputs(*regular.TxIDChainHash()))
		assert.True(t, vctx.CoinView.Diff().IsEmpty())

		assert.Equal(t, uint32(tipHeight+1), vctx.Height)
		assert.Equal(t, tc.chainState.CurrentTip(), vctx.Tip)
	})

	t.Run("only the spent output is unspent", func(t *testing.T) {
		tc := newTestChain(t)

		t0 := test.SpendingTx([]model.Outpoint{model.NewOutpoint(test.Hash(0xe0), 0)}, 5000)
		tc.seed(t, t0, 3)
		tc.store.Reset()

		regular := test.SpendingTx([]model.Outpoint{test.Outpoint(t0, 0)}, 4000)
		block := tc.block(1000, regular)

		vctx := tc.loadedContext(t, block)

		require.Equal(t, 1, vctx.CoinView.Len())

		out, ok := vctx.CoinView.AccessCoin(test.Outpoint(t0, 0))
		require.True(t, ok)
		assert.True(t, model.NewUnspentOutput(t0, 0, 3).Equal(out))
	})

	t.Run("shared parent is fetched once", func(t *testing.T) {
		tc := newTestChain(t)

		a := test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 0)}, 900)
		b := test.SpendingTx([]model.Outpoint{test.Outpoint(tc.funding, 1)}, 1900)
		c := test.SpendingTx([]model.Outpoint{test.Outpoint(a, 0), test.Outpoint(tc.funding, 0)}, 10)

		tc.loadedContext(t, tc.block(0, a, b, c))

		calls := tc.store.FetchCalls()
		require.Len(t, calls, 1)

		count := 0

		for _, id := range calls[0] {
			if id == *tc.funding.TxIDChainHash() {
				count++
			}
		}

		assert.Equal(t, 1, count)
		// coinbase, a, b, c and the funding tx, the parent a is already in the set as a txid
		assert.Len(t, calls[0], 5)
	})

	t.Run("empty fetch set still fetches once", func(t *testing.T) {
		tc := newTestChain(t)

		vctx := NewContext(tc.block(0), Flags{}, tc.settings.ChainCfgParams)
		require.NoError(t, tc.loadRule().Run(context.Background(), vctx))

		calls := tc.store.FetchCalls()
		require.Len(t, calls, 1)
		assert.Empty(t, calls[0])
		assert.Equal(t, 0, vctx.CoinView.Len())
	})

	t.Run("one fetch for a large block", func(t *testing.T) {
		tc := newTestChain(t)

		txs := make([]*bt.Tx, 10_000)
		for i := range txs {
			seed := make([]byte, 4)
			binary.LittleEndian.PutUint32(seed, uint32(i))

			txs[i] = test.SpendingTx([]model.Outpoint{model.NewOutpoint(chainhash.HashH(seed), 0)}, 1)
		}

		vctx := NewContext(tc.block(0, txs...), Flags{EnforceBIP30: true}, tc.settings.ChainCfgParams)
		require.NoError(t, tc.loadRule().Run(context.Background(), vctx))

		assert.Equal(t, 1, tc.store.FetchCount())
		assert.Len(t, vctx.FetchedIDs, 1+2*len(txs))
		assert.Equal(t, 0, vctx.CoinView.Len())
	})

	t.Run("store errors pass through unchanged", func(t *testing.T) {
		for _, storeErr := range []error{
			errors.NewStorageUnavailableError("connection refused"),
			errors.NewStorageError("disk full"),
		} {
			tc := newTestChain(t)
			tc.store.FetchErr = storeErr

			vctx := NewContext(tc.block(0), Flags{}, tc.settings.ChainCfgParams)

			err := tc.loadRule().Run(context.Background(), vctx)
			assert.Same(t, storeErr, err)
			assert.Equal(t, 1, tc.store.FetchCount())
			assert.Equal(t, 0, vctx.CoinView.Len())
		}
	})
}

func TestIDsToFetch(t *testing.T) {
	parent := test.SpendingTx([]model.Outpoint{model.NewOutpoint(test.Hash(7), 0)}, 10, 20)
	spend := test.SpendingTx([]model.Outpoint{test.Outpoint(parent, 0), test.Outpoint(parent, 1)}, 25)
	coinbase := test.CoinbaseTx(1, subsidy)

	block := test.Block(test.Hash(1), coinbase, spend)

	t.Run("bip30", func(t *testing.T) {
		assert.Equal(t, []chainhash.Hash{
			*coinbase.TxIDChainHash(),
			*spend.TxIDChainHash(),
			*parent.TxIDChainHash(),
		}, IDsToFetch(block, true))
	})

	t.Run("inputs only", func(t *testing.T) {
		assert.Equal(t, []chainhash.Hash{*parent.TxIDChainHash()}, IDsToFetch(block, false))
	})

	t.Run("coinbase inputs are never fetched", func(t *testing.T) {
		ids := IDsToFetch(test.Block(test.Hash(1), coinbase), false)
		assert.Empty(t, ids)
		assert.NotNil(t, ids)
	})
}

// TestIDsToFetchProperties checks that the fetch set is exactly the referenced parents plus, with
// BIP30, the block's own txids, without duplicates.
func TestIDsToFetchProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		// a small pool of parents makes shared references likely
		pool := rapid.IntRange(1, 8).Draw(rt, "pool")
		enforceBIP30 := rapid.Bool().Draw(rt, "enforceBIP30")
		txCount := rapid.IntRange(0, 20).Draw(rt, "txs")

		txs := []*bt.Tx{test.CoinbaseTx(1, subsidy)}

		for i := 0; i < txCount; i++ {
			inputs := rapid.SliceOfN(rapid.IntRange(0, pool-1), 1, 4).Draw(rt, "inputs")

			from := make([]model.Outpoint, len(inputs))
			for j, p := range inputs {
				from[j] = model.NewOutpoint(test.Hash(byte(p+10)), uint32(j))
			}

			txs = append(txs, test.SpendingTx(from, uint64(i+1)))
		}

		expected := make(map[chainhash.Hash]struct{})

		for _, tx := range txs {
			if enforceBIP30 {
				expected[*tx.TxIDChainHash()] = struct{}{}
			}

			if tx.IsCoinbase() {
				continue
			}

			for _, input := range tx.Inputs {
				expected[*input.PreviousTxIDChainHash()] = struct{}{}
			}
		}

		ids := IDsToFetch(test.Block(test.Hash(1), txs...), enforceBIP30)

		if len(ids) != len(expected) {
			rt.Fatalf("got %d ids, expected %d", len(ids), len(expected))
		}

		for _, id := range ids {
			if _, ok := expected[id]; !ok {
				rt.Fatalf("unexpected id %s", id)
			}
		}
	})
}
