// Package chainstate holds the process wide record of the accepted chain tip. CurrentTip is lock
// free and may be called from any number of goroutines; writes come only from the component that
// finalizes accepted blocks.
package chainstate

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
)

type Tip struct {
	Hash   chainhash.Hash
	Height uint32
}

func (t Tip) String() string {
	return fmt.Sprintf("%s (height %d)", t.Hash, t.Height)
}

// TipReader is what block validation needs from the chain state.
type TipReader interface {
	CurrentTip() Tip

	// WithTip runs fn with the current tip. Until fn returns the tip cannot move and no commit of
	// AdvanceWith can run. fn must not call back into the chain state's writers.
	WithTip(fn func(Tip) error) error
}

// TipWriter is implemented by the chain state for the component that finalizes accepted blocks.
type TipWriter interface {
	TipReader
	AdvanceWith(prev chainhash.Hash, next Tip, commit func() error) error
}

type ChainState struct {
	tip atomic.Pointer[Tip]
	// mu is held exclusively by writers and shared by WithTip, CurrentTip never takes it
	mu sync.RWMutex
}

func New(tip Tip) *ChainState {
	cs := &ChainState{}
	cs.tip.Store(&tip)

	return cs
}

// NewFromGenesis starts the chain state at the genesis block of params.
func NewFromGenesis(params *chaincfg.Params) *ChainState {
	return New(Tip{Hash: *params.GenesisHash, Height: 0})
}

func (cs *ChainState) CurrentTip() Tip {
	return *cs.tip.Load()
}

func (cs *ChainState) WithTip(fn func(Tip) error) error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return fn(*cs.tip.Load())
}

// Advance moves the tip to next, provided the current tip is still prev. It fails with
// ERR_BLOCK_INVALID_PREVIOUS_TIP when another writer moved the tip in the meantime.
func (cs *ChainState) Advance(prev chainhash.Hash, next Tip) error {
	return cs.AdvanceWith(prev, next, nil)
}

// AdvanceWith is Advance with commit run between the tip check and the tip update, while holding
// the write lock. The tip only moves when commit succeeds. Neither another writer nor a WithTip
// reader can run while commit runs.
func (cs *ChainState) AdvanceWith(prev chainhash.Hash, next Tip, commit func() error) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	current := cs.tip.Load()
	if !current.Hash.IsEqual(&prev) {
		return errors.NewInvalidPreviousTipError("cannot advance tip to %s: expected previous tip %s, current tip is %s", next.Hash, prev, current)
	}

	if next.Height != current.Height+1 {
		return errors.NewStateError("cannot advance tip from height %d to height %d", current.Height, next.Height)
	}

	if commit != nil {
		if err := commit(); err != nil {
			return err
		}
	}

	cs.tip.Store(&next)

	return nil
}

// SetTip replaces the tip unconditionally, for the reorg and sync layers.
func (cs *ChainState) SetTip(tip Tip) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.tip.Store(&tip)
}
