package model

import (
	"github.com/dolthub/swiss"
)

// CoinDiff records how a block changes the persistent coin set: the outpoints it spends that were
// loaded from the store, and the outputs it creates that are still unspent at the end of the
// block. Outputs created and spent inside the same block appear in neither. Not thread-safe.
type CoinDiff struct {
	Added   *swiss.Map[Outpoint, *UnspentOutput]
	Removed *swiss.Map[Outpoint, struct{}]
}

func NewCoinDiff(sizeHint int) *CoinDiff {
	if sizeHint < 16 {
		sizeHint = 16
	}

	return &CoinDiff{
		Added:   swiss.NewMap[Outpoint, *UnspentOutput](uint32(sizeHint)),
		Removed: swiss.NewMap[Outpoint, struct{}](uint32(sizeHint)),
	}
}

func (cd *CoinDiff) Add(op Outpoint, out *UnspentOutput) {
	cd.Added.Put(op, out)
}

// Delete records op as spent. persisted tells whether op exists in the store, an output that only
// lives in Added is dropped without a trace.
func (cd *CoinDiff) Delete(op Outpoint, persisted bool) {
	cd.Added.Delete(op)

	if persisted {
		cd.Removed.Put(op, struct{}{})
	}
}

func (cd *CoinDiff) IsEmpty() bool {
	return cd.Added.Count() == 0 && cd.Removed.Count() == 0
}

// RemovedOutpoints returns the spent outpoints sorted by txid then index, so that every backend
// applies them in the same order.
func (cd *CoinDiff) RemovedOutpoints() []Outpoint {
	outpoints := make([]Outpoint, 0, cd.Removed.Count())

	cd.Removed.Iter(func(op Outpoint, _ struct{}) bool {
		outpoints = append(outpoints, op)
		return false
	})

	SortOutpoints(outpoints)

	return outpoints
}

// AddedOutputs returns the created outputs as a plain map, ready to be handed to a store.
func (cd *CoinDiff) AddedOutputs() map[Outpoint]*UnspentOutput {
	added := make(map[Outpoint]*UnspentOutput, cd.Added.Count())

	cd.Added.Iter(func(op Outpoint, out *UnspentOutput) bool {
		added[op] = out
		return false
	})

	return added
}
