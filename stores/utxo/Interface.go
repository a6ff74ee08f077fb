// Package utxo defines the coin store: the persistent mapping from outpoint to unspent output that
// block validation reads in one batch per block and writes in one atomic commit per accepted block.
//
// Implementations live in the sub packages (memory, sql, bolt) and can be wrapped by the cache and
// logger decorators. All of them pass the shared suite in stores/utxo/tests.
package utxo

import (
	"context"

	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// FetchResponse maps every requested transaction id to the still unspent outputs of that
// transaction, or to nil when the store holds none. Absence is data, not an error.
type FetchResponse struct {
	Coins map[chainhash.Hash]*model.Coins
}

// NewFetchResponse returns a response that already marks every id in txIDs as absent.
func NewFetchResponse(txIDs []chainhash.Hash) *FetchResponse {
	r := &FetchResponse{
		Coins: make(map[chainhash.Hash]*model.Coins, len(txIDs)),
	}

	for _, txID := range txIDs {
		r.Coins[txID] = nil
	}

	return r
}

// Get returns the coins of txID, nil when absent or never requested.
func (r *FetchResponse) Get(txID chainhash.Hash) *model.Coins {
	return r.Coins[txID]
}

// Found returns the number of ids that have at least one unspent output.
func (r *FetchResponse) Found() int {
	found := 0

	for _, coins := range r.Coins {
		if coins.HasUnspent() {
			found++
		}
	}

	return found
}

// Store is the coin store.
//
// Fetch may be called by any number of goroutines at once. Commit calls are serialized by the
// store and a Commit is atomic with respect to concurrent Fetch calls: a reader sees either all or
// none of its deletions and insertions.
type Store interface {
	// Health returns an http status code, a description and an error. checkLiveness only verifies
	// that the store process is alive, without touching the backend.
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// Fetch returns the unspent outputs of every transaction in txIDs. Every id appears in the
	// response. Duplicate ids are allowed and resolved once.
	Fetch(ctx context.Context, txIDs []chainhash.Hash) (*FetchResponse, error)

	// Commit removes spent and inserts (or overwrites) added, all or nothing. Spending an outpoint
	// that is not in the store fails the whole commit with ERR_STORAGE_ERROR.
	Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error

	Close(ctx context.Context) error
}
