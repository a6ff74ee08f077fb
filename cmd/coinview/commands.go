package main

import (
	"bytes"
	"encoding/hex"
	"os"

	"github.com/bsv-blockchain/coinview/chainstate"
	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/services/blockvalidation"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/urfave/cli/v2"
)

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate a block and, when it is valid, commit it to the store",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "block",
				Usage:    "file with the block, raw bytes or hex",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "tip",
				Usage: "hash of the current chain tip, defaults to the block's previous hash",
			},
			&cli.StringFlag{
				Name:  "tip-header",
				Usage: "hex encoded header of the current chain tip, instead of --tip",
			},
			&cli.IntFlag{
				Name:  "height",
				Usage: "height of the current chain tip",
			},
		},
		Action: a.validate,
	}
}

func (a *app) validate(c *cli.Context) error {
	block, err := readBlock(c.String("block"))
	if err != nil {
		return err
	}

	height, err := safeconversion.IntToUint32(c.Int("height"))
	if err != nil {
		return errors.NewInvalidArgumentError("invalid tip height %d", c.Int("height"), err)
	}

	tip := chainstate.Tip{Height: height}

	tipHash, tipHeader := c.String("tip"), c.String("tip-header")

	switch {
	case tipHash != "" && tipHeader != "":
		return errors.NewInvalidArgumentError("--tip and --tip-header are mutually exclusive")
	case tipHash != "":
		hash, err := chainhash.NewHashFromStr(tipHash)
		if err != nil {
			return errors.NewInvalidArgumentError("invalid tip hash %q", tipHash, err)
		}

		tip.Hash = *hash
	case tipHeader != "":
		header, err := model.NewBlockHeaderFromString(tipHeader)
		if err != nil {
			return errors.NewInvalidArgumentError("invalid tip header", err)
		}

		tip.Hash = *header.Hash()
	case block.Header.HashPrevBlock != nil:
		tip.Hash = *block.Header.HashPrevBlock
	}

	store, err := a.openStore(c)
	if err != nil {
		return err
	}

	defer closeStore(c, a.logger, store)

	validator := blockvalidation.NewBlockValidator(a.logger, a.settings, store, chainstate.New(tip))

	result, err := validator.ValidateBlock(c.Context, block)
	if err != nil {
		return err
	}

	if err = writeJSON(c.App.Writer, newResultJSON(result)); err != nil {
		return err
	}

	if result.State != blockvalidation.StateAccepted {
		return cli.Exit("", 2)
	}

	return nil
}

// readBlock reads a block file holding either the raw block or its hex encoding.
func readBlock(path string) (*model.Block, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("failed to read block file %s", path, err)
	}

	if trimmed := bytes.TrimSpace(b); isHex(trimmed) {
		decoded := make([]byte, hex.DecodedLen(len(trimmed)))
		if _, err = hex.Decode(decoded, trimmed); err != nil {
			return nil, errors.NewInvalidArgumentError("failed to decode block file %s", path, err)
		}

		b = decoded
	}

	block, err := model.NewBlockFromBytes(b)
	if err != nil {
		return nil, errors.NewBlockInvalidError("failed to parse block file %s", path, err)
	}

	return block, nil
}

func isHex(b []byte) bool {
	if len(b) == 0 || len(b)%2 != 0 {
		return false
	}

	for _, c := range b {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}

	return true
}

func (a *app) fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "print the unspent outputs of transactions",
		ArgsUsage: "<txid>...",
		Action:    a.fetch,
	}
}

func (a *app) fetch(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.NewInvalidArgumentError("at least one txid is required")
	}

	txIDs := make([]chainhash.Hash, 0, c.NArg())

	for _, arg := range c.Args().Slice() {
		hash, err := chainhash.NewHashFromStr(arg)
		if err != nil {
			return errors.NewInvalidArgumentError("invalid txid %q", arg, err)
		}

		txIDs = append(txIDs, *hash)
	}

	store, err := a.openStore(c)
	if err != nil {
		return err
	}

	defer closeStore(c, a.logger, store)

	resp, err := store.Fetch(c.Context, txIDs)
	if err != nil {
		return err
	}

	out := make([]coinsJSON, 0, len(txIDs))
	for _, txID := range txIDs {
		out = append(out, newCoinsJSON(txID, resp.Get(txID)))
	}

	return writeJSON(c.App.Writer, out)
}

func (a *app) seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "add unspent outputs from a JSON file to the store",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "JSON array of {txid, vout, satoshis, lockingScript, height, coinbase}",
				Required: true,
			},
		},
		Action: a.seed,
	}
}

func (a *app) seed(c *cli.Context) error {
	path := c.String("file")

	f, err := os.Open(path)
	if err != nil {
		return errors.NewInvalidArgumentError("failed to open %s", path, err)
	}

	defer f.Close()

	var outputs []outputJSON
	if err = json.NewDecoder(f).Decode(&outputs); err != nil {
		return errors.NewInvalidArgumentError("failed to decode %s", path, err)
	}

	added := make(map[model.Outpoint]*model.UnspentOutput, len(outputs))

	for _, o := range outputs {
		op, out, err := o.decode()
		if err != nil {
			return err
		}

		added[op] = out
	}

	store, err := a.openStore(c)
	if err != nil {
		return err
	}

	defer closeStore(c, a.logger, store)

	if err = store.Commit(c.Context, nil, added); err != nil {
		return err
	}

	a.logger.Infof("[coinview] seeded %d outputs from %s", len(added), path)

	return nil
}
