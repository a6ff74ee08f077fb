package blockvalidation

import (
	"context"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// MaxMoney is the largest amount of satoshis that can ever exist.
const MaxMoney uint64 = 21_000_000 * 100_000_000

// CheckTransactionsRule checks the block structure that needs no coins: a coinbase first and only
// first, no txid twice, every transaction with inputs and outputs and amounts within MaxMoney. With
// BIP34 enforced the coinbase must also carry the height the block gets on the tip.
type CheckTransactionsRule struct{}

func NewCheckTransactionsRule() *CheckTransactionsRule {
	return &CheckTransactionsRule{}
}

func (r *CheckTransactionsRule) Name() string {
	return "CheckTransactions"
}

func (r *CheckTransactionsRule) Run(_ context.Context, vctx *Context) error {
	block := vctx.Block
	blockHash := block.Hash()

	if len(block.Transactions) == 0 {
		return errors.NewBlockInvalidError("[CheckTransactions][%s] block has no transactions", blockHash)
	}

	if !block.Transactions[0].IsCoinbase() {
		return errors.NewBlockCoinbaseInvalidError("[CheckTransactions][%s] first transaction is not a coinbase", blockHash)
	}

	if vctx.Flags.EnforceBIP34 {
		height, err := block.ExtractCoinbaseHeight()
		if err != nil {
			return errors.NewBlockCoinbaseInvalidError("[CheckTransactions][%s] cannot read the coinbase height", blockHash, err)
		}

		if height != vctx.Height {
			return errors.NewBlockCoinbaseInvalidError("[CheckTransactions][%s] coinbase height %d, block height is %d", blockHash, height, vctx.Height)
		}
	}

	seen := make(map[chainhash.Hash]struct{}, len(block.Transactions))

	for i, tx := range block.Transactions {
		txID := *tx.TxIDChainHash()

		if i > 0 && tx.IsCoinbase() {
			return errors.NewBlockInvalidError("[CheckTransactions][%s] transaction %d (%s) is a second coinbase", blockHash, i, txID)
		}

		if _, ok := seen[txID]; ok {
			return errors.NewBlockInvalidError("[CheckTransactions][%s] transaction %s appears twice", blockHash, txID)
		}

		seen[txID] = struct{}{}

		if len(tx.Inputs) == 0 {
			return errors.NewTxInvalidError("[CheckTransactions][%s] transaction %s has no inputs", blockHash, txID)
		}

		if len(tx.Outputs) == 0 {
			return errors.NewTxInvalidError("[CheckTransactions][%s] transaction %s has no outputs", blockHash, txID)
		}

		var total uint64

		for vout, output := range tx.Outputs {
			if output.Satoshis > MaxMoney {
				return errors.NewTxInvalidAmountError("[CheckTransactions][%s] output %s:%d is more than the maximum amount", blockHash, txID, vout)
			}

			total += output.Satoshis

			// both terms are at most MaxMoney, so the sum cannot wrap before this check
			if total > MaxMoney {
				return errors.NewTxInvalidAmountError("[CheckTransactions][%s] outputs of %s total more than the maximum amount", blockHash, txID)
			}
		}
	}

	return nil
}
