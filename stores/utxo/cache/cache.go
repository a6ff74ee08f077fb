// Package cache is a caching overlay for any coin store. Transactions are cached by txid, including
// the ones the backing store does not have, so a repeated lookup of an absent txid costs nothing.
//
// A Fetch resolves what it can from the cache and asks the backing store for all misses in a single
// Fetch call. Commit goes straight to the backing store and then drops every txid it touched.
//
// Fetch holds the read lock and Commit the write lock for their whole duration. That keeps a fetch
// from mixing cached coins from before a commit with fresh coins from after it, and keeps a fetch
// that read the backing store before a commit from caching what it read after the commit returned.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/jellydator/ttlcache/v3"
)

const DefaultTTL = 10 * time.Minute

type Store struct {
	logger   ulogger.Logger
	store    utxo.Store
	ttl      time.Duration
	mu       sync.RWMutex
	ttlCache *ttlcache.Cache[chainhash.Hash, *model.Coins]
	stopOnce sync.Once
}

func New(logger ulogger.Logger, store utxo.Store, ttl time.Duration) *Store {
	initPrometheusMetrics()

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		logger: logger,
		store:  store,
		ttl:    ttl,
		ttlCache: ttlcache.New[chainhash.Hash, *model.Coins](
			ttlcache.WithTTL[chainhash.Hash, *model.Coins](ttl),
			ttlcache.WithDisableTouchOnHit[chainhash.Hash, *model.Coins](),
		),
	}

	go s.ttlCache.Start()

	return s
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	status, details, err := s.store.Health(ctx, checkLiveness)

	return status, fmt.Sprintf("%s (cached, %d entries)", details, s.ttlCache.Len()), err
}

func (s *Store) Fetch(ctx context.Context, txIDs []chainhash.Hash) (*utxo.FetchResponse, error) {
	unique := utxo.UniqueTxIDs(txIDs)
	response := utxo.NewFetchResponse(unique)

	s.mu.RLock()
	defer s.mu.RUnlock()

	misses := make([]chainhash.Hash, 0, len(unique))

	for _, txID := range unique {
		item := s.ttlCache.Get(txID)
		if item == nil {
			misses = append(misses, txID)
			continue
		}

		// a nil value is a cached absence
		response.Coins[txID] = item.Value().Clone()
	}

	prometheusCacheHits.Add(float64(len(unique) - len(misses)))
	prometheusCacheMisses.Add(float64(len(misses)))

	if len(misses) == 0 {
		return response, nil
	}

	fetched, err := s.store.Fetch(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, txID := range misses {
		coins := fetched.Get(txID)
		if !coins.HasUnspent() {
			coins = nil
		}

		s.ttlCache.Set(txID, coins, s.ttl)
		response.Coins[txID] = coins.Clone()
	}

	return response, nil
}

func (s *Store) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// invalidate even when the commit failed, the backing store decides what was applied
	defer func() {
		for _, op := range spent {
			s.ttlCache.Delete(op.TxID)
		}

		for op := range added {
			s.ttlCache.Delete(op.TxID)
		}

		prometheusCacheInvalidations.Inc()
	}()

	return s.store.Commit(ctx, spent, added)
}

// Len returns the number of cached txids, absent ones included.
func (s *Store) Len() int {
	return s.ttlCache.Len()
}

func (s *Store) Close(ctx context.Context) error {
	s.stopOnce.Do(s.ttlCache.Stop)

	return s.store.Close(ctx)
}
