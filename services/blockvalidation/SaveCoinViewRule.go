package blockvalidation

import (
	"context"

	"github.com/bsv-blockchain/coinview/chainstate"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/tracing"
	"github.com/bsv-blockchain/coinview/ulogger"
)

// SaveCoinViewRule writes the changes of the working set to the coin store in one commit and moves
// the chain tip to the block. It must be the last rule: once it succeeds the block is part of the
// chain.
//
// The commit runs under the chain state's write lock after checking the tip has not moved since
// LoadCoinViewRule, so two blocks built on the same tip can never both be committed.
type SaveCoinViewRule struct {
	logger     ulogger.Logger
	store      utxo.Store
	chainState chainstate.TipWriter
}

func NewSaveCoinViewRule(logger ulogger.Logger, store utxo.Store, chainState chainstate.TipWriter) *SaveCoinViewRule {
	return &SaveCoinViewRule{
		logger:     logger,
		store:      store,
		chainState: chainState,
	}
}

func (r *SaveCoinViewRule) Name() string {
	return "SaveCoinView"
}

func (r *SaveCoinViewRule) Run(ctx context.Context, vctx *Context) (err error) {
	ctx, _, deferFn := tracing.Tracer("blockvalidation").Start(ctx, "SaveCoinViewRule:Run",
		tracing.WithHistogram(prometheusSaveCoinViewCommit),
	)

	defer func() {
		deferFn(err)
	}()

	diff := vctx.CoinView.Diff()
	spent := diff.RemovedOutpoints()
	added := diff.AddedOutputs()

	next := chainstate.Tip{Hash: *vctx.Block.Hash(), Height: vctx.Height}

	err = r.chainState.AdvanceWith(vctx.Tip.Hash, next, func() error {
		if diff.IsEmpty() {
			return nil
		}

		return r.store.Commit(ctx, spent, added)
	})
	if err != nil {
		return err
	}

	r.logger.Debugf("[SaveCoinView][%s] committed %d spent and %d added outputs, tip is now %s", vctx.Block.Hash(), len(spent), len(added), next)

	return nil
}
