package blockvalidation

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/coinview/chainstate"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo/memory"
	"github.com/bsv-blockchain/coinview/stores/utxo/tests"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util/test"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/stretchr/testify/require"
)

const (
	tipHeight = 10
	// subsidy is the regtest block subsidy at the heights used by these tests
	subsidy = 50 * 100_000_000
)

type testChain struct {
	settings   *settings.Settings
	store      *tests.CountingStore
	chainState *chainstate.ChainState
	// funding is a confirmed transaction with two spendable outputs of 1000 and 2000 satoshis
	funding *bt.Tx
}

func newTestChain(t *testing.T) *testChain {
	t.Helper()

	tc := &testChain{
		settings:   test.CreateBaseTestSettings(),
		store:      tests.NewCountingStore(memory.New(ulogger.TestLogger{})),
		chainState: chainstate.New(chainstate.Tip{Hash: test.Hash(1), Height: tipHeight}),
	}

	tc.funding = test.SpendingTx([]model.Outpoint{model.NewOutpoint(test.Hash(0xf0), 0)}, 1000, 2000)
	tc.seed(t, tc.funding, tipHeight-5)

	tc.store.Reset()

	return tc
}

// seed stores every output of tx as created at height.
func (tc *testChain) seed(t *testing.T, tx *bt.Tx, height uint32) {
	t.Helper()

	added := make(map[model.Outpoint]*model.UnspentOutput, len(tx.Outputs))
	for i := range tx.Outputs {
		added[test.Outpoint(tx, uint32(i))] = model.NewUnspentOutput(tx, uint32(i), height)
	}

	require.NoError(t, tc.store.Commit(context.Background(), nil, added))
}

// block builds a block on the current tip, with a coinbase paying the subsidy plus fees.
func (tc *testChain) block(fees uint64, txs ...*bt.Tx) *model.Block {
	tip := tc.chainState.CurrentTip()
	coinbase := test.CoinbaseTx(tip.Height+1, subsidy+fees)

	return test.Block(tip.Hash, append([]*bt.Tx{coinbase}, txs...)...)
}

func (tc *testChain) loadRule() *LoadCoinViewRule {
	return NewLoadCoinViewRule(ulogger.TestLogger{}, tc.store, tc.chainState)
}

func (tc *testChain) pipeline() *Pipeline {
	return NewPipeline(ulogger.TestLogger{}, tc.settings.ChainCfgParams, DefaultRules(ulogger.TestLogger{}, tc.store, tc.chainState)...)
}

// loadedContext runs LoadCoinViewRule for block and returns the context the later rules work on.
func (tc *testChain) loadedContext(t *testing.T, block *model.Block) *Context {
	t.Helper()

	vctx := NewContext(block, Flags{EnforceBIP30: true, CoinbaseMaturity: 1}, tc.settings.ChainCfgParams)
	require.NoError(t, tc.loadRule().Run(context.Background(), vctx))

	return vctx
}
