// Package sql provides a SQL-based implementation of the coin store. It supports PostgreSQL and
// SQLite (file or in-memory) with automatic schema creation.
//
// # Usage
//
//	store, err := sql.New(ctx, logger, settings, &url.URL{
//	    Scheme: "postgres",
//	    Host:   "localhost:5432",
//	    User:   url.UserPassword("coinview", "coinview"),
//	    Path:   "coinview",
//	})
//
// # Database Schema
//
// One table, utxos, keyed by (txid, idx). A row exists for every unspent output and is deleted
// when the output is spent.
//
// # Concurrency
//
// A Fetch larger than utxostore_fetchBatchSize is split into several statements that run in
// parallel on different connections. The store holds a read lock for the whole Fetch and Commit
// takes the write lock, so no Fetch can see part of a commit. The database transaction guarantees
// the commit is all or nothing on disk.
//
// # Metrics
//
//   - coinview_sql_utxo_fetch: Number of fetch calls
//   - coinview_sql_utxo_fetch_statements: Number of SELECT statements issued by fetch calls
//   - coinview_sql_utxo_commit: Number of commit calls
//   - coinview_sql_utxo_errors: Number of errors by function and type
package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/tracing"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util"
	"github.com/bsv-blockchain/coinview/util/usql"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	logger      ulogger.Logger
	settings    *settings.Settings
	db          *usql.DB
	engine      util.SQLEngine
	dbTimeout   time.Duration
	batchSize   int
	concurrency int
	mu          sync.RWMutex
}

func New(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, err
	}

	s := newStore(logger, tSettings, db, util.SQLEngine(storeURL.Scheme))

	if err = s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func newStore(logger ulogger.Logger, tSettings *settings.Settings, db *usql.DB, engine util.SQLEngine) *Store {
	initPrometheusMetrics()

	batchSize := tSettings.UtxoStore.FetchBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	concurrency := tSettings.UtxoStore.FetchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dbTimeout := tSettings.UtxoStore.DBTimeout
	if dbTimeout <= 0 {
		dbTimeout = 5 * time.Second
	}

	return &Store{
		logger:      logger,
		settings:    tSettings,
		db:          db,
		engine:      engine,
		dbTimeout:   dbTimeout,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

func (s *Store) createSchema(ctx context.Context) error {
	var q string

	switch s.engine {
	case util.Postgres:
		q = `
		CREATE TABLE IF NOT EXISTS utxos (
		 txid            BYTEA NOT NULL
		,idx             BIGINT NOT NULL
		,satoshis        BIGINT NOT NULL
		,locking_script  BYTEA NOT NULL
		,height          BIGINT NOT NULL
		,coinbase        BOOLEAN NOT NULL DEFAULT FALSE
		,PRIMARY KEY (txid, idx)
		);
		`
	case util.Sqlite, util.SqliteMemory:
		q = `
		CREATE TABLE IF NOT EXISTS utxos (
		 txid            BLOB NOT NULL
		,idx             INTEGER NOT NULL
		,satoshis        INTEGER NOT NULL
		,locking_script  BLOB NOT NULL
		,height          INTEGER NOT NULL
		,coinbase        BOOLEAN NOT NULL DEFAULT FALSE
		,PRIMARY KEY (txid, idx)
		);
		`
	default:
		return errors.NewConfigurationError("unknown database engine: %s", s.engine)
	}

	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return errors.NewStorageError("could not create utxos table", err)
	}

	return nil
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	details := fmt.Sprintf("SQL Engine is %s", s.engine)

	if checkLiveness {
		return http.StatusOK, details, nil
	}

	var num int

	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&num); err != nil {
		return http.StatusServiceUnavailable, details, s.storeError(ctx, "Health", err)
	}

	return http.StatusOK, details, nil
}

func (s *Store) Fetch(ctx context.Context, txIDs []chainhash.Hash) (_ *utxo.FetchResponse, err error) {
	ctx, _, deferFn := tracing.Tracer("sql").Start(ctx, "sql:Fetch",
		tracing.WithHistogram(prometheusUtxoFetchDuration),
	)

	defer func() {
		deferFn(err)
	}()

	prometheusUtxoFetch.Inc()

	unique := utxo.UniqueTxIDs(txIDs)
	response := utxo.NewFetchResponse(unique)

	if len(unique) == 0 {
		return response, nil
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var responseMu sync.Mutex

	g, gCtx := errgroup.WithContext(timeoutCtx)
	g.SetLimit(s.concurrency)

	for _, chunk := range utxo.ChunkTxIDs(unique, s.batchSize) {
		g.Go(func() error {
			coins, err := s.fetchChunk(gCtx, chunk)
			if err != nil {
				return err
			}

			responseMu.Lock()
			for txID, c := range coins {
				response.Coins[txID] = c
			}
			responseMu.Unlock()

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, s.storeError(ctx, "Fetch", err)
	}

	return response, nil
}

func (s *Store) fetchChunk(ctx context.Context, txIDs []chainhash.Hash) (map[chainhash.Hash]*model.Coins, error) {
	prometheusUtxoFetchStatements.Inc()

	placeholders := make([]string, len(txIDs))
	args := make([]interface{}, len(txIDs))

	for i := range txIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = txIDs[i][:]
	}

	q := `
		SELECT
		 txid
		,idx
		,satoshis
		,locking_script
		,height
		,coinbase
		FROM utxos
		WHERE txid IN (` + strings.Join(placeholders, ",") + `)
	`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	coins := make(map[chainhash.Hash]*model.Coins)

	for rows.Next() {
		var (
			txIDBytes []byte
			idx       int64
			satoshis  int64
			script    []byte
			height    int64
			coinbase  bool
		)

		if err = rows.Scan(&txIDBytes, &idx, &satoshis, &script, &height, &coinbase); err != nil {
			return nil, err
		}

		txID, err := chainhash.NewHash(txIDBytes)
		if err != nil {
			return nil, errors.NewStorageError("invalid txid in utxos table", err)
		}

		c, ok := coins[*txID]
		if !ok {
			c = model.NewCoins(*txID)
			coins[*txID] = c
		}

		if script == nil {
			script = []byte{}
		}

		c.Outputs[uint32(idx)] = &model.UnspentOutput{ //nolint:gosec
			Satoshis:      uint64(satoshis), //nolint:gosec
			LockingScript: script,
			Height:        uint32(height), //nolint:gosec
			IsCoinbase:    coinbase,
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return coins, nil
}

func (s *Store) Commit(ctx context.Context, spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) (err error) {
	ctx, _, deferFn := tracing.Tracer("sql").Start(ctx, "sql:Commit",
		tracing.WithHistogram(prometheusUtxoCommitDuration),
	)

	defer func() {
		deferFn(err)
	}()

	prometheusUtxoCommit.Inc()

	if err = utxo.ValidateCommit(spent, added); err != nil {
		return err
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, s.dbTimeout)
	defer cancelTimeout()

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.db.BeginTx(timeoutCtx, nil)
	if err != nil {
		return s.storeError(ctx, "Commit", err)
	}

	defer func() {
		// a no-op after a successful commit
		_ = txn.Rollback()
	}()

	for _, op := range spent {
		result, err := txn.ExecContext(timeoutCtx, `DELETE FROM utxos WHERE txid = $1 AND idx = $2`, op.TxID[:], int64(op.Index))
		if err != nil {
			return s.storeError(ctx, "Commit", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return s.storeError(ctx, "Commit", err)
		}

		if affected == 0 {
			prometheusUtxoErrors.WithLabelValues("Commit", "missing spend").Inc()
			return utxo.NewErrMissingSpend(op)
		}
	}

	q := `
		INSERT INTO utxos (
		 txid
		,idx
		,satoshis
		,locking_script
		,height
		,coinbase
		) VALUES (
		 $1
		,$2
		,$3
		,$4
		,$5
		,$6
		)
		ON CONFLICT (txid, idx) DO UPDATE SET
		 satoshis = excluded.satoshis
		,locking_script = excluded.locking_script
		,height = excluded.height
		,coinbase = excluded.coinbase
	`

	for _, op := range sortedOutpoints(added) {
		out := added[op]

		script := out.LockingScript
		if script == nil {
			script = []byte{}
		}

		satoshis, convErr := safeconversion.Uint64ToInt64(out.Satoshis)
		if convErr != nil {
			return errors.NewStorageError("[SQL][Commit] satoshis of %s out of range", op, convErr)
		}

		if _, err = txn.ExecContext(timeoutCtx, q, op.TxID[:], int64(op.Index), satoshis, script, int64(out.Height), out.IsCoinbase); err != nil {
			return s.storeError(ctx, "Commit", err)
		}
	}

	if err = txn.Commit(); err != nil {
		return s.storeError(ctx, "Commit", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// storeError classifies a driver error. Connection problems become ERR_STORAGE_UNAVAILABLE, a
// canceled caller context ERR_CONTEXT_CANCELED, everything else ERR_STORAGE_ERROR. Errors that
// already carry a code are returned unchanged.
func (s *Store) storeError(ctx context.Context, function string, err error) error {
	var tErr *errors.Error
	if errors.As(err, &tErr) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() != nil {
			return errors.NewContextCanceledError("[%s] %s canceled", s.engine, function, err)
		}

		prometheusUtxoErrors.WithLabelValues(function, "timeout").Inc()

		// not wrapped, a timeout of our own is retryable
		return errors.NewStorageUnavailableError("[%s] %s timed out after %s", s.engine, function, s.dbTimeout)

	case isUnavailable(err):
		prometheusUtxoErrors.WithLabelValues(function, "unavailable").Inc()
		return errors.NewStorageUnavailableError("[%s] %s failed, database unavailable", s.engine, function, err)
	}

	prometheusUtxoErrors.WithLabelValues(function, "error").Inc()

	return errors.NewStorageError("[%s] %s failed", s.engine, function, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", // connection exception
			"53", // insufficient resources
			"57": // operator intervention, e.g. admin shutdown
			return true
		}

		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return true
		}
	}

	return false
}

func sortedOutpoints(added map[model.Outpoint]*model.UnspentOutput) []model.Outpoint {
	outpoints := make([]model.Outpoint, 0, len(added))
	for op := range added {
		outpoints = append(outpoints, op)
	}

	// a fixed insert order keeps concurrent postgres writers from deadlocking
	model.SortOutpoints(outpoints)

	return outpoints
}
