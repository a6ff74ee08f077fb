package blockvalidation

import (
	"github.com/bsv-blockchain/coinview/chainstate"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
)

// Context carries one block through one pipeline run. It is created by Pipeline.Validate and
// dropped when the run ends, it is never shared between runs.
type Context struct {
	Block  *model.Block
	Flags  Flags
	Params *chaincfg.Params

	// Tip is the chain tip the block was checked against, Height the height the block gets on it.
	// Both are set by LoadCoinViewRule.
	Tip    chainstate.Tip
	Height uint32

	// CoinView is the working set, empty until LoadCoinViewRule has run
	CoinView *model.UnspentOutputSet

	// FetchedIDs is the identifier fetch set that was sent to the store
	FetchedIDs []chainhash.Hash

	// Fees is the total fee of the non coinbase transactions, set by ConnectTransactionsRule
	Fees uint64
}

func NewContext(block *model.Block, flags Flags, params *chaincfg.Params) *Context {
	return &Context{
		Block:    block,
		Flags:    flags,
		Params:   params,
		CoinView: model.NewUnspentOutputSet(0),
	}
}
