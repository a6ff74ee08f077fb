package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/sql"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util"
)

func init() {
	newSQLStore := func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (utxo.Store, error) {
		s, err := sql.New(ctx, logger, tSettings, storeURL)
		if err != nil {
			return nil, err
		}

		return s, nil
	}

	availableDatabases[string(util.Postgres)] = newSQLStore
	availableDatabases[string(util.Sqlite)] = newSQLStore
	availableDatabases[string(util.SqliteMemory)] = newSQLStore
}
