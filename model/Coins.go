package model

import (
	"sort"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Coins holds the still unspent outputs of one transaction, keyed by output index. A Coins value
// returned by a store is never mutated afterwards, callers that need to change it Clone first.
type Coins struct {
	TxID    chainhash.Hash
	Outputs map[uint32]*UnspentOutput
}

func NewCoins(txID chainhash.Hash) *Coins {
	return &Coins{
		TxID:    txID,
		Outputs: make(map[uint32]*UnspentOutput),
	}
}

// HasUnspent reports whether at least one output is still unspent.
func (c *Coins) HasUnspent() bool {
	return c != nil && len(c.Outputs) > 0
}

// Indexes returns the unspent output indexes in ascending order.
func (c *Coins) Indexes() []uint32 {
	if c == nil {
		return nil
	}

	indexes := make([]uint32, 0, len(c.Outputs))
	for idx := range c.Outputs {
		indexes = append(indexes, idx)
	}

	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	return indexes
}

func (c *Coins) Clone() *Coins {
	if c == nil {
		return nil
	}

	clone := &Coins{
		TxID:    c.TxID,
		Outputs: make(map[uint32]*UnspentOutput, len(c.Outputs)),
	}

	for idx, out := range c.Outputs {
		o := *out
		clone.Outputs[idx] = &o
	}

	return clone
}
