package blockvalidation

import (
	"context"

	"github.com/bsv-blockchain/coinview/chainstate"
	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/tracing"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// LoadCoinViewRule loads the working set of a block with a single store fetch. It must be the
// first rule of a pipeline: it checks that the block builds on the current tip before doing any
// I/O, and every later rule works on the coins it loads.
//
// The rule only gathers data. Missing inputs and duplicate txids are judged by the rules after it.
type LoadCoinViewRule struct {
	logger     ulogger.Logger
	store      utxo.Store
	chainState chainstate.TipReader
}

func NewLoadCoinViewRule(logger ulogger.Logger, store utxo.Store, chainState chainstate.TipReader) *LoadCoinViewRule {
	return &LoadCoinViewRule{
		logger:     logger,
		store:      store,
		chainState: chainState,
	}
}

func (r *LoadCoinViewRule) Name() string {
	return "LoadCoinView"
}

func (r *LoadCoinViewRule) Run(ctx context.Context, vctx *Context) (err error) {
	blockHash := vctx.Block.Hash()

	ctx, _, deferFn := tracing.Tracer("blockvalidation").Start(ctx, "LoadCoinViewRule:Run",
		tracing.WithHistogram(prometheusLoadCoinViewFetch),
	)

	defer func() {
		deferFn(err)
	}()

	// the tip check and the fetch share one read lock, a commit that lands in between would leave
	// the view reflecting a different tip than the one checked
	return r.chainState.WithTip(func(tip chainstate.Tip) error {
		// a block that does not build on our tip was overtaken by a reorg, loading its coins is wasted I/O
		prevHash := vctx.Block.Header.HashPrevBlock
		if prevHash == nil || !prevHash.IsEqual(&tip.Hash) {
			r.logger.Debugf("[LoadCoinView][%s] reorganization detected, block builds on %v, tip is %s", blockHash, prevHash, tip)
			return errors.NewInvalidPreviousTipError("[LoadCoinView][%s] block builds on %v, current tip is %s", blockHash, prevHash, tip)
		}

		vctx.Tip = tip
		vctx.Height = tip.Height + 1

		ids := IDsToFetch(vctx.Block, vctx.Flags.EnforceBIP30)

		vctx.FetchedIDs = ids
		vctx.CoinView = model.NewUnspentOutputSet(len(ids))

		// always exactly one fetch, also for an empty set
		resp, fetchErr := r.store.Fetch(ctx, ids)
		if fetchErr != nil {
			return fetchErr
		}

		vctx.CoinView.SetCoins(resp.Coins)

		prometheusLoadCoinViewIDs.Observe(float64(len(ids)))

		r.logger.Debugf("[LoadCoinView][%s] loaded %d outputs of %d transactions", blockHash, vctx.CoinView.Len(), len(ids))

		return nil
	})
}

// IDsToFetch returns the transaction ids a block needs from the coin store: the txid of every input
// of every non coinbase transaction and, when enforceBIP30 is set, the txid of every transaction
// itself. Every id appears once, in order of first reference.
func IDsToFetch(block *model.Block, enforceBIP30 bool) []chainhash.Hash {
	seen := make(map[chainhash.Hash]struct{}, len(block.Transactions))
	ids := make([]chainhash.Hash, 0, len(block.Transactions))

	add := func(id chainhash.Hash) {
		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, tx := range block.Transactions {
		if enforceBIP30 {
			add(*tx.TxIDChainHash())
		}

		if tx.IsCoinbase() {
			continue
		}

		for _, input := range tx.Inputs {
			add(*input.PreviousTxIDChainHash())
		}
	}

	return ids
}
