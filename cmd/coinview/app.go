package main

import (
	"io/fs"
	"net/url"
	"os"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/stores/utxo/factory"
	"github.com/bsv-blockchain/coinview/tracing"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-chaincfg"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// app holds what every command needs. It is filled in by before, once the flags are parsed.
type app struct {
	logger   ulogger.Logger
	settings *settings.Settings
}

func newApp() *cli.App {
	a := &app{}

	return &cli.App{
		Name:  "coinview",
		Usage: "validate blocks against a UTXO coin store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "file with environment variables loaded before the settings are read",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "utxostore",
				Usage: "coin store URL, overrides the utxostore setting",
			},
			&cli.StringFlag{
				Name:  "datafolder",
				Usage: "folder for file based stores, overrides the dataFolder setting",
			},
			&cli.StringFlag{
				Name:  "network",
				Usage: "mainnet, testnet, regtest, stn or teratestnet, overrides the network setting",
			},
			&cli.StringFlag{
				Name:  "loglevel",
				Usage: "DEBUG, INFO, WARN or ERROR, overrides the logLevel setting",
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.validateCommand(),
			a.fetchCommand(),
			a.seedCommand(),
			a.serveCommand(),
			a.healthCommand(),
		},
	}
}

func (a *app) before(c *cli.Context) error {
	if err := loadEnv(c.String("env"), c.IsSet("env")); err != nil {
		return err
	}

	a.settings = settings.NewSettings()

	if storeURL := c.String("utxostore"); storeURL != "" {
		u, err := url.Parse(storeURL)
		if err != nil {
			return errors.NewConfigurationError("invalid utxostore URL %q", storeURL, err)
		}

		a.settings.UtxoStore.StoreURL = u
	}

	if dataFolder := c.String("datafolder"); dataFolder != "" {
		a.settings.DataFolder = dataFolder
	}

	if network := c.String("network"); network != "" {
		params, err := chaincfg.GetChainParams(network)
		if err != nil {
			return errors.NewConfigurationError("unknown network %q", network, err)
		}

		a.settings.ChainCfgParams = params
	}

	if level := c.String("loglevel"); level != "" {
		a.settings.LogLevel = level
	}

	a.logger = ulogger.New(a.settings.ServiceName, ulogger.WithLevel(a.settings.LogLevel))

	return tracing.InitTracer(c.Context, a.settings)
}

func (a *app) after(c *cli.Context) error {
	return tracing.ShutdownTracer(c.Context)
}

// loadEnv loads path into the environment. A missing file is only an error when it was asked for
// explicitly.
func loadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.NewConfigurationError("failed to load %s", path, err)
	}

	return nil
}

// openStore builds the configured store stack. The caller closes it.
func (a *app) openStore(c *cli.Context) (utxo.Store, error) {
	return factory.NewStore(c.Context, a.logger, a.settings)
}

func closeStore(c *cli.Context, logger ulogger.Logger, store utxo.Store) {
	if err := store.Close(c.Context); err != nil {
		logger.Warnf("[coinview] failed to close store: %v", err)
	}
}
