// Package logger wraps a coin store and logs every call, its size, duration and error. The factory
// adds it when the store url carries logging=true.
package logger

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

type Store struct {
	logger ulogger.Logger
	store  utxo.Store
}

func New(logger ulogger.Logger, store utxo.Store) *Store {
	return &Store{
		logger: logger,
		store:  store,
	}
}

func caller() string {
	var callers []string

	depth := 3

	for i := 0; i < depth; i++ {
		pc, file, line, ok := runtime.Caller(2 + i)
		if !ok {
			break
		}

		// keep the path from the module root on
		if idx := strings.Index(file, "coinview/"); idx >= 0 {
			file = file[idx+len("coinview/"):]
		} else {
			file = filepath.Base(file)
		}

		funcName := runtime.FuncForPC(pc).Name()
		funcPaths := strings.Split(funcName, "/")
		funcName = funcPaths[len(funcPaths)-1]

		callers = append(callers, fmt.Sprintf("called from %s: %s:%d", funcName, file, line))
	}

	return strings.Join(callers, ",")
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	status, details, err := s.store.Health(ctx, checkLiveness)
	s.logger.Debugf("[UTXOStore][logger][Health] checkLiveness %t status %d details %q err %v : %s", checkLiveness, status, details, err, caller())

	return status, details, err
}

func (s *Store) Fetch(ctx context.Context, txIDs []chainhash.Hash) (*utxo.FetchResponse, error) {
	start := time.Now()
	resp, err := s.store.Fetch(ctx, txIDs)

	found := 0
	if resp != nil {
		found = resp.Found()
	}

	s.logger.Debugf("[UTXOStore][logger][Fetch] txids %d found %d in %s err %v : %s", len(txIDs), found, time.Since(start), err, caller())

	return resp, err
}

func (s *Store) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error {
	start := time.Now()
	err := s.store.Commit(ctx, spent, added)

	if err != nil {
		s.logger.Warnf("[UTXOStore][logger][Commit] spent %d added %d in %s err %v : %s", len(spent), len(added), time.Since(start), err, caller())
	} else {
		s.logger.Debugf("[UTXOStore][logger][Commit] spent %d added %d in %s : %s", len(spent), len(added), time.Since(start), caller())
	}

	return err
}

func (s *Store) Close(ctx context.Context) error {
	err := s.store.Close(ctx)
	s.logger.Infof("[UTXOStore][logger][Close] err %v", err)

	return err
}
