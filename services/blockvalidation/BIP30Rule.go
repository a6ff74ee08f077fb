package blockvalidation

import (
	"context"

	"github.com/bsv-blockchain/coinview/errors"
)

// BIP30Rule rejects a transaction whose txid still has unspent outputs in the coin view. Connecting
// it would overwrite those outputs. The coins are there because LoadCoinViewRule fetches every txid
// of the block when the flag is set.
type BIP30Rule struct{}

func NewBIP30Rule() *BIP30Rule {
	return &BIP30Rule{}
}

func (r *BIP30Rule) Name() string {
	return "BIP30"
}

func (r *BIP30Rule) Run(_ context.Context, vctx *Context) error {
	if !vctx.Flags.EnforceBIP30 {
		return nil
	}

	for _, tx := range vctx.Block.Transactions {
		txID := tx.TxIDChainHash()

		if vctx.CoinView.HasUnspentOutputs(*txID) {
			return errors.NewTxDuplicateError("[BIP30][%s] transaction %s overwrites unspent outputs of an earlier transaction", vctx.Block.Hash(), txID)
		}
	}

	return nil
}
