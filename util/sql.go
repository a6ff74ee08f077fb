package util

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util/usql"
	"github.com/labstack/gommon/random"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

type SQLEngine string

const (
	Postgres     SQLEngine = "postgres"
	Sqlite       SQLEngine = "sqlite"
	SqliteMemory SQLEngine = "sqlitememory"
)

func InitSQLDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	switch SQLEngine(storeURL.Scheme) {
	case Postgres:
		return InitPostgresDB(logger, storeURL, tSettings)
	case Sqlite, SqliteMemory:
		return InitSQLiteDB(logger, storeURL, tSettings)
	}

	return nil, errors.NewConfigurationError("db: unknown scheme: %s", storeURL.Scheme)
}

func InitPostgresDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	dbHost := storeURL.Hostname()
	dbPort, _ := strconv.Atoi(storeURL.Port())
	dbName := dbNameFromURL(storeURL)
	dbUser := ""
	dbPassword := ""

	if storeURL.User != nil {
		dbUser = storeURL.User.Username()
		dbPassword, _ = storeURL.User.Password()
	}

	sslMode := "disable"
	if val := storeURL.Query().Get("sslmode"); val != "" {
		sslMode = val
	}

	dbInfo := fmt.Sprintf("user=%s password=%s dbname=%s sslmode=%s host=%s port=%d", dbUser, dbPassword, dbName, sslMode, dbHost, dbPort)

	db, err := usql.Open("postgres", dbInfo)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open postgres DB", err)
	}

	logger.Infof("Using postgres DB: %s@%s:%d/%s", dbUser, dbHost, dbPort, dbName)

	db.SetMaxIdleConns(tSettings.UtxoStore.PostgresMaxIdleConns)
	db.SetMaxOpenConns(tSettings.UtxoStore.PostgresMaxOpenConns)

	return db, nil
}

func InitSQLiteDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	var filename string

	var err error

	if SQLEngine(storeURL.Scheme) == SqliteMemory {
		filename = fmt.Sprintf("file:%s?mode=memory&cache=shared", random.String(16))
	} else {
		folder := tSettings.DataFolder
		if err = os.MkdirAll(folder, 0755); err != nil {
			return nil, errors.NewStorageError("failed to create data folder %s", folder, err)
		}

		filename, err = filepath.Abs(path.Join(folder, fmt.Sprintf("%s.db", dbNameFromURL(storeURL))))
		if err != nil {
			return nil, errors.NewStorageError("failed to get absolute path for sqlite DB", err)
		}

		/* Don't be tempted by a large busy_timeout. Just masks a bigger problem.
		Fail fast. This is 'dev mode' sqlite after all */
		filename = fmt.Sprintf("%s?cache=shared&_pragma=busy_timeout=5000&_pragma=journal_mode=WAL", filename)
	}

	logger.Infof("Using sqlite DB: %s", filename)

	db, err := usql.Open("sqlite", filename)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open sqlite DB", err)
	}

	if _, err = db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageError("could not enable foreign keys support", err)
	}

	if _, err = db.Exec(`PRAGMA locking_mode = SHARED;`); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageError("could not enable shared locking mode", err)
	}

	return db, nil
}

func dbNameFromURL(storeURL *url.URL) string {
	if len(storeURL.Path) > 1 {
		return storeURL.Path[1:]
	}

	if storeURL.Host != "" {
		return storeURL.Host
	}

	return "coinview"
}
