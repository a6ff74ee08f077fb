package blockvalidation

import (
	"context"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/go-bt/v2"
)

// ConnectTransactionsRule applies the block to the working set, transaction by transaction: every
// input must spend an output that is in the coin view and mature, inputs must cover outputs, and the
// outputs of each transaction become spendable for the ones after it. Finally the coinbase may claim
// no more than the subsidy plus the fees.
//
// Scripts are not executed here.
type ConnectTransactionsRule struct{}

func NewConnectTransactionsRule() *ConnectTransactionsRule {
	return &ConnectTransactionsRule{}
}

func (r *ConnectTransactionsRule) Name() string {
	return "ConnectTransactions"
}

func (r *ConnectTransactionsRule) Run(_ context.Context, vctx *Context) error {
	block := vctx.Block
	coinbase := block.CoinbaseTx()

	if coinbase == nil {
		return errors.NewBlockCoinbaseInvalidError("[ConnectTransactions][%s] block has no coinbase", block.Hash())
	}

	vctx.Fees = 0

	vctx.CoinView.AddTx(coinbase, vctx.Height)

	for _, tx := range block.Transactions[1:] {
		fee, err := r.connectTx(vctx, tx)
		if err != nil {
			return err
		}

		vctx.Fees += fee
	}

	var claimed uint64
	for _, output := range coinbase.Outputs {
		claimed += output.Satoshis
	}

	allowed := model.GetBlockSubsidyForHeight(vctx.Height, vctx.Params) + vctx.Fees
	if claimed > allowed {
		return errors.NewBlockCoinbaseInvalidError("[ConnectTransactions][%s] coinbase pays %d, subsidy plus fees is %d", block.Hash(), claimed, allowed)
	}

	return nil
}

func (r *ConnectTransactionsRule) connectTx(vctx *Context, tx *bt.Tx) (uint64, error) {
	txID := tx.TxIDChainHash()

	var in uint64

	for _, input := range tx.Inputs {
		op := model.NewOutpoint(*input.PreviousTxIDChainHash(), input.PreviousTxOutIndex)

		// spending as we go also catches a transaction spending the same outpoint twice
		out, ok := vctx.CoinView.Spend(op)
		if !ok {
			if vctx.CoinView.WasSpentInBlock(op) {
				return 0, errors.NewTxInvalidDoubleSpendError("[ConnectTransactions][%s] transaction %s spends %s, already spent in this block", vctx.Block.Hash(), txID, op)
			}

			return 0, errors.NewTxMissingInputsError("[ConnectTransactions][%s] transaction %s spends %s, which is not unspent", vctx.Block.Hash(), txID, op)
		}

		if !out.IsSpendableAt(vctx.Height, vctx.Flags.CoinbaseMaturity) {
			return 0, errors.NewTxCoinbaseImmatureError("[ConnectTransactions][%s] transaction %s spends coinbase output %s created at height %d, immature at height %d", vctx.Block.Hash(), txID, op, out.Height, vctx.Height)
		}

		in += out.Satoshis
		if in > MaxMoney {
			return 0, errors.NewTxInvalidAmountError("[ConnectTransactions][%s] inputs of %s total more than the maximum amount", vctx.Block.Hash(), txID)
		}
	}

	var outTotal uint64
	for _, output := range tx.Outputs {
		outTotal += output.Satoshis
	}

	if in < outTotal {
		return 0, errors.NewTxInvalidAmountError("[ConnectTransactions][%s] transaction %s spends %d but creates %d", vctx.Block.Hash(), txID, in, outTotal)
	}

	vctx.CoinView.AddTx(tx, vctx.Height)

	return in - outTotal, nil
}
