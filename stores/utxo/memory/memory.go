// Package memory is the reference coin store: everything lives in a swiss map guarded by a
// RWMutex. Fetch takes the read lock, Commit the write lock, which makes a commit atomic for every
// reader.
package memory

import (
	"context"
	"net/http"
	"sync"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/dolthub/swiss"
)

type Memory struct {
	logger ulogger.Logger
	mu     sync.RWMutex
	// the swiss map uses a lot less memory than the standard map
	txs    *swiss.Map[chainhash.Hash, map[uint32]*model.UnspentOutput]
	closed bool
}

func New(logger ulogger.Logger) *Memory {
	initPrometheusMetrics()

	return &Memory{
		logger: logger,
		txs:    swiss.NewMap[chainhash.Hash, map[uint32]*model.UnspentOutput](1024),
	}
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return http.StatusServiceUnavailable, "Memory Store closed", utxo.ErrStoreClosed
	}

	return http.StatusOK, "Memory Store available", nil
}

func (m *Memory) Fetch(ctx context.Context, txIDs []chainhash.Hash) (*utxo.FetchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewContextCanceledError("[Memory] fetch canceled", err)
	}

	prometheusMemoryFetch.Inc()
	prometheusMemoryFetchIDs.Add(float64(len(txIDs)))

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, utxo.ErrStoreClosed
	}

	response := utxo.NewFetchResponse(txIDs)

	for _, txID := range txIDs {
		outputs, ok := m.txs.Get(txID)
		if !ok {
			continue
		}

		coins := model.NewCoins(txID)
		for idx, out := range outputs {
			o := *out
			coins.Outputs[idx] = &o
		}

		response.Coins[txID] = coins
	}

	return response, nil
}

func (m *Memory) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error {
	if err := ctx.Err(); err != nil {
		return errors.NewContextCanceledError("[Memory] commit canceled", err)
	}

	if err := utxo.ValidateCommit(spent, added); err != nil {
		return err
	}

	prometheusMemoryCommit.Inc()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return utxo.ErrStoreClosed
	}

	// check everything before touching anything, so a failed commit leaves no trace
	for _, op := range spent {
		outputs, ok := m.txs.Get(op.TxID)
		if !ok {
			return utxo.NewErrMissingSpend(op)
		}

		if _, ok = outputs[op.Index]; !ok {
			return utxo.NewErrMissingSpend(op)
		}
	}

	for _, op := range spent {
		outputs, _ := m.txs.Get(op.TxID)
		delete(outputs, op.Index)

		if len(outputs) == 0 {
			m.txs.Delete(op.TxID)
		}
	}

	for op, out := range added {
		outputs, ok := m.txs.Get(op.TxID)
		if !ok {
			outputs = make(map[uint32]*model.UnspentOutput)
			m.txs.Put(op.TxID, outputs)
		}

		o := *out
		outputs[op.Index] = &o
	}

	return nil
}

// Len returns the number of transactions with at least one unspent output.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.txs.Count()
}

func (m *Memory) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}
