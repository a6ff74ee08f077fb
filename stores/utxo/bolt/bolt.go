// Package bolt is a coin store on a single bbolt file. Every unspent output is one key in the utxos
// bucket, keyed by the 36 byte outpoint, so the outputs of a transaction are a contiguous key range
// starting with its txid.
//
// bbolt gives each View its own consistent snapshot and runs one Update at a time, so a Fetch never
// sees part of a Commit and no extra locking is needed.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/tracing"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	bolt "go.etcd.io/bbolt"
)

var bucketUtxos = []byte("utxos")

type Store struct {
	logger ulogger.Logger
	path   string
	db     *bolt.DB
}

// New opens (or creates) the bolt file named by the url path inside the data folder. An absolute
// path given as bolt://localhost/abs/path.db is used as is.
func New(_ context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	initPrometheusMetrics()

	path := storePath(tSettings, storeURL)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewStorageError("failed to create bolt data folder %s", filepath.Dir(path), err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open bolt file %s", path, err)
	}

	if err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketUtxos)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageError("failed to create bucket %s", string(bucketUtxos), err)
	}

	logger.Infof("[Bolt] opened utxo store at %s", path)

	return &Store{
		logger: logger,
		path:   path,
		db:     db,
	}, nil
}

func storePath(tSettings *settings.Settings, storeURL *url.URL) string {
	if storeURL.Host != "" {
		return storeURL.Path
	}

	name := strings.TrimPrefix(storeURL.Path, "/")
	if name == "" {
		name = "utxostore"
	}

	if filepath.Ext(name) == "" {
		name += ".db"
	}

	return filepath.Join(tSettings.DataFolder, name)
}

func (s *Store) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	details := fmt.Sprintf("Bolt file %s", s.path)

	if checkLiveness {
		return http.StatusOK, details, nil
	}

	if err := s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketUtxos) == nil {
			return errors.NewStorageError("bucket %s is missing", string(bucketUtxos))
		}

		return nil
	}); err != nil {
		return http.StatusServiceUnavailable, details, s.storeError("Health", err)
	}

	return http.StatusOK, details, nil
}

func (s *Store) Fetch(ctx context.Context, txIDs []chainhash.Hash) (_ *utxo.FetchResponse, err error) {
	_, _, deferFn := tracing.Tracer("bolt").Start(ctx, "bolt:Fetch",
		tracing.WithHistogram(prometheusBoltFetchDuration),
	)

	defer func() {
		deferFn(err)
	}()

	if err = ctx.Err(); err != nil {
		return nil, errors.NewContextCanceledError("[Bolt] fetch canceled", err)
	}

	prometheusBoltFetch.Inc()

	unique := utxo.UniqueTxIDs(txIDs)
	response := utxo.NewFetchResponse(unique)

	if len(unique) == 0 {
		return response, nil
	}

	err = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketUtxos).Cursor()

		for _, txID := range unique {
			prefix := txID[:]

			var coins *model.Coins

			for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
				op, err := model.NewOutpointFromBytes(k)
				if err != nil {
					return errors.NewStorageError("invalid key in bucket %s", string(bucketUtxos), err)
				}

				out, err := model.NewUnspentOutputFromBytes(v)
				if err != nil {
					return errors.NewStorageError("invalid value for %s", op, err)
				}

				if coins == nil {
					coins = model.NewCoins(txID)
				}

				coins.Outputs[op.Index] = out
			}

			if coins != nil {
				response.Coins[txID] = coins
			}
		}

		return nil
	})
	if err != nil {
		return nil, s.storeError("Fetch", err)
	}

	return response, nil
}

func (s *Store) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) (err error) {
	_, _, deferFn := tracing.Tracer("bolt").Start(ctx, "bolt:Commit",
		tracing.WithHistogram(prometheusBoltCommitDuration),
	)

	defer func() {
		deferFn(err)
	}()

	if err = ctx.Err(); err != nil {
		return errors.NewContextCanceledError("[Bolt] commit canceled", err)
	}

	prometheusBoltCommit.Inc()

	if err = utxo.ValidateCommit(spent, added); err != nil {
		return err
	}

	// returning an error from the Update function rolls the whole transaction back
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUtxos)

		for _, op := range spent {
			key := op.Bytes()

			if b.Get(key) == nil {
				return utxo.NewErrMissingSpend(op)
			}

			if err := b.Delete(key); err != nil {
				return err
			}
		}

		for op, out := range added {
			if err := b.Put(op.Bytes(), out.Bytes()); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return s.storeError("Commit", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *Store) storeError(function string, err error) error {
	var tErr *errors.Error
	if errors.As(err, &tErr) {
		return err
	}

	if errors.Is(err, bolt.ErrDatabaseNotOpen) || errors.Is(err, bolt.ErrTimeout) {
		prometheusBoltErrors.WithLabelValues(function, "unavailable").Inc()
		return errors.NewStorageUnavailableError("[Bolt] %s failed, %s is not open", function, s.path, err)
	}

	prometheusBoltErrors.WithLabelValues(function, "error").Inc()

	return errors.NewStorageError("[Bolt] %s failed", function, err)
}
