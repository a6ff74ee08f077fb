package factory

import (
	"context"
	"net/url"

	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/memory"
	"github.com/bsv-blockchain/coinview/ulogger"
)

func init() {
	availableDatabases["memory"] = func(_ context.Context, logger ulogger.Logger, _ *settings.Settings, _ *url.URL) (utxo.Store, error) {
		return memory.New(logger), nil
	}
}
