package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/bolt"
	"github.com/bsv-blockchain/coinview/ulogger"
)

func init() {
	availableDatabases["bolt"] = func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (utxo.Store, error) {
		s, err := bolt.New(ctx, logger, tSettings, storeURL)
		if err != nil {
			return nil, err
		}

		return s, nil
	}
}
