package tests

import (
	"context"
	"sync"

	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// CountingStore wraps a store and records every Fetch and Commit call. FetchErr and CommitErr,
// when set, are returned instead of calling the wrapped store.
type CountingStore struct {
	utxo.Store

	mu          sync.Mutex
	fetchCalls  [][]chainhash.Hash
	commitCalls int
	FetchErr    error
	CommitErr   error
}

func NewCountingStore(store utxo.Store) *CountingStore {
	return &CountingStore{Store: store}
}

func (c *CountingStore) Fetch(ctx context.Context, txIDs []chainhash.Hash) (*utxo.FetchResponse, error) {
	c.mu.Lock()
	c.fetchCalls = append(c.fetchCalls, append([]chainhash.Hash(nil), txIDs...))
	err := c.FetchErr
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return c.Store.Fetch(ctx, txIDs)
}

func (c *CountingStore) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error {
	c.mu.Lock()
	c.commitCalls++
	err := c.CommitErr
	c.mu.Unlock()

	if err != nil {
		return err
	}

	return c.Store.Commit(ctx, spent, added)
}

func (c *CountingStore) FetchCalls() [][]chainhash.Hash {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([][]chainhash.Hash(nil), c.fetchCalls...)
}

func (c *CountingStore) FetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.fetchCalls)
}

func (c *CountingStore) CommitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commitCalls
}

func (c *CountingStore) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fetchCalls = nil
	c.commitCalls = 0
}
