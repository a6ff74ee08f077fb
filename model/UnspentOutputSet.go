package model

import (
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/dolthub/swiss"
)

// UnspentOutputSet is the working set of one validation attempt: the coins loaded from the store
// for a single block, mutated in place as the block's transactions are connected. Every mutation
// is mirrored in a CoinDiff, the only thing that ever reaches the store. Not thread-safe, a set
// belongs to exactly one pipeline run.
type UnspentOutputSet struct {
	outputs *swiss.Map[Outpoint, *UnspentOutput]
	// persisted holds the outpoints that were loaded from the store
	persisted *swiss.Map[Outpoint, struct{}]
	// unspentByTx counts the outputs per txid currently in outputs
	unspentByTx *swiss.Map[chainhash.Hash, uint32]
	// spentInBlock remembers what this block already spent, to tell a double spend from a missing input
	spentInBlock *swiss.Map[Outpoint, struct{}]
	diff         *CoinDiff
}

func NewUnspentOutputSet(sizeHint int) *UnspentOutputSet {
	if sizeHint < 16 {
		sizeHint = 16
	}

	return &UnspentOutputSet{
		outputs:      swiss.NewMap[Outpoint, *UnspentOutput](uint32(sizeHint)),
		persisted:    swiss.NewMap[Outpoint, struct{}](uint32(sizeHint)),
		unspentByTx:  swiss.NewMap[chainhash.Hash, uint32](uint32(sizeHint)),
		spentInBlock: swiss.NewMap[Outpoint, struct{}](uint32(sizeHint)),
		diff:         NewCoinDiff(sizeHint),
	}
}

// SetCoins loads fetched coins into the set. Nil entries are absent transactions and are skipped.
// Loaded coins are not part of the diff.
func (s *UnspentOutputSet) SetCoins(fetched map[chainhash.Hash]*Coins) {
	for _, coins := range fetched {
		if coins == nil {
			continue
		}

		for idx, out := range coins.Outputs {
			op := NewOutpoint(coins.TxID, idx)
			s.put(op, out)
			s.persisted.Put(op, struct{}{})
		}
	}
}

// AccessCoin returns the unspent output at op, if present.
func (s *UnspentOutputSet) AccessCoin(op Outpoint) (*UnspentOutput, bool) {
	return s.outputs.Get(op)
}

// HasUnspentOutputs reports whether any output of txID is currently unspent in the set.
func (s *UnspentOutputSet) HasUnspentOutputs(txID chainhash.Hash) bool {
	n, ok := s.unspentByTx.Get(txID)
	return ok && n > 0
}

// WasSpentInBlock reports whether op was spent earlier in the block being validated.
func (s *UnspentOutputSet) WasSpentInBlock(op Outpoint) bool {
	return s.spentInBlock.Has(op)
}

// Spend removes op from the set and returns the output it held. It returns false, and changes
// nothing, when op is not present.
func (s *UnspentOutputSet) Spend(op Outpoint) (*UnspentOutput, bool) {
	out, ok := s.outputs.Get(op)
	if !ok {
		return nil, false
	}

	s.outputs.Delete(op)
	s.decrement(op.TxID)
	s.spentInBlock.Put(op, struct{}{})
	s.diff.Delete(op, s.persisted.Has(op))

	return out, true
}

// AddOutput inserts out at op, overwriting whatever was there.
func (s *UnspentOutputSet) AddOutput(op Outpoint, out *UnspentOutput) {
	s.put(op, out)
	s.spentInBlock.Delete(op)
	s.diff.Add(op, out)
}

// AddTx adds every spendable output of tx, created at height. Data outputs can never be spent and
// are not tracked.
func (s *UnspentOutputSet) AddTx(tx *bt.Tx, height uint32) {
	txID := *tx.TxIDChainHash()

	for i, output := range tx.Outputs {
		if output.LockingScript != nil && output.LockingScript.IsData() {
			continue
		}

		s.AddOutput(NewOutpoint(txID, uint32(i)), NewUnspentOutput(tx, uint32(i), height))
	}
}

// Len returns the number of unspent outputs in the set.
func (s *UnspentOutputSet) Len() int {
	return s.outputs.Count()
}

// Diff returns the changes made since the set was loaded.
func (s *UnspentOutputSet) Diff() *CoinDiff {
	return s.diff
}

func (s *UnspentOutputSet) put(op Outpoint, out *UnspentOutput) {
	if !s.outputs.Has(op) {
		n, _ := s.unspentByTx.Get(op.TxID)
		s.unspentByTx.Put(op.TxID, n+1)
	}

	s.outputs.Put(op, out)
}

func (s *UnspentOutputSet) decrement(txID chainhash.Hash) {
	n, _ := s.unspentByTx.Get(txID)
	if n <= 1 {
		s.unspentByTx.Delete(txID)
		return
	}

	s.unspentByTx.Put(txID, n-1)
}
