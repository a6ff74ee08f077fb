package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/util/test"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type runResult struct {
	out      string
	err      error
	exitCode int
}

// run executes the CLI against a sqlite store in dataFolder.
func run(t *testing.T, ctx context.Context, dataFolder string, args ...string) runResult {
	t.Helper()

	var (
		out    bytes.Buffer
		result runResult
	)

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(_ *cli.Context, err error) {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			result.exitCode = exitErr.ExitCode()
		}
	}

	base := []string{"coinview", "--utxostore", "sqlite:///coinview", "--datafolder", dataFolder, "--network", "regtest", "--loglevel", "ERROR"}

	result.err = app.RunContext(ctx, append(base, args...))
	result.out = out.String()

	return result
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func seedFile(t *testing.T, dir string, tx *bt.Tx, height uint32) string {
	t.Helper()

	outputs := make([]outputJSON, 0, len(tx.Outputs))
	for i := range tx.Outputs {
		outputs = append(outputs, newOutputJSON(test.Outpoint(tx, uint32(i)), model.NewUnspentOutput(tx, uint32(i), height)))
	}

	b, err := json.Marshal(outputs)
	require.NoError(t, err)

	return writeFile(t, dir, "seed.json", b)
}

func TestSeedAndFetch(t *testing.T) {
	dir := t.TempDir()

	funding := test.SpendingTx([]model.Outpoint{model.NewOutpoint(test.Hash(9), 0)}, 1000, 2000)

	res := run(t, context.Background(), dir, "seed", "--file", seedFile(t, dir, funding, 5))
	require.NoError(t, res.err)

	res = run(t, context.Background(), dir, "fetch", funding.TxID(), test.Hash(3).String())
	require.NoError(t, res.err)

	var fetched []coinsJSON
	require.NoError(t, json.Unmarshal([]byte(res.out), &fetched))
	require.Len(t, fetched, 2)

	assert.Equal(t, funding.TxID(), fetched[0].TxID)
	require.Len(t, fetched[0].Outputs, 2)
	assert.Equal(t, uint64(2000), fetched[0].Outputs[1].Satoshis)
	assert.Equal(t, uint32(5), fetched[0].Outputs[1].Height)
	assert.Equal(t, hex.EncodeToString(*funding.Outputs[0].LockingScript), fetched[0].Outputs[0].LockingScript)

	assert.Nil(t, fetched[1].Outputs)
}

func TestFetchArguments(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, run(t, context.Background(), dir, "fetch").err)
	assert.Error(t, run(t, context.Background(), dir, "fetch", "not-a-txid").err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	funding := test.SpendingTx([]model.Outpoint{model.NewOutpoint(test.Hash(9), 0)}, 1000, 2000)
	require.NoError(t, run(t, context.Background(), dir, "seed", "--file", seedFile(t, dir, funding, 5)).err)

	tip := test.Hash(1)
	spend := test.SpendingTx([]model.Outpoint{test.Outpoint(funding, 0)}, 900)

	block := test.Block(tip, test.CoinbaseTx(11, 50*100_000_000+100), spend)

	raw, err := block.Bytes()
	require.NoError(t, err)

	t.Run("accepted", func(t *testing.T) {
		path := writeFile(t, dir, "block.hex", []byte(hex.EncodeToString(raw)+"\n"))

		res := run(t, context.Background(), dir, "validate", "--block", path, "--tip", tip.String(), "--height", "10")
		require.NoError(t, res.err)

		var result resultJSON
		require.NoError(t, json.Unmarshal([]byte(res.out), &result))
		assert.Equal(t, "accepted", result.State)
		assert.Equal(t, block.Hash().String(), result.Block)
		assert.Equal(t, uint32(11), result.Height)
		assert.Equal(t, 3, result.FetchedIDs)

		res = run(t, context.Background(), dir, "fetch", funding.TxID(), spend.TxID())
		require.NoError(t, res.err)

		var fetched []coinsJSON
		require.NoError(t, json.Unmarshal([]byte(res.out), &fetched))
		require.Len(t, fetched[0].Outputs, 1)
		assert.Equal(t, uint32(1), fetched[0].Outputs[0].Vout)
		require.Len(t, fetched[1].Outputs, 1)
		assert.Equal(t, uint32(11), fetched[1].Outputs[0].Height)
	})

	t.Run("same block again is rejected", func(t *testing.T) {
		path := writeFile(t, dir, "block.bin", raw)

		// its coinbase now has unspent outputs in the store
		res := run(t, context.Background(), dir, "validate", "--block", path, "--tip", tip.String(), "--height", "10")
		require.Error(t, res.err)
		assert.Equal(t, 2, res.exitCode)

		var result resultJSON
		require.NoError(t, json.Unmarshal([]byte(res.out), &result))
		assert.Equal(t, "rejected", result.State)
		assert.Equal(t, "BIP30", result.FailedRule)
	})

	t.Run("wrong tip", func(t *testing.T) {
		path := writeFile(t, dir, "block.bin", raw)

		res := run(t, context.Background(), dir, "validate", "--block", path, "--tip", test.Hash(2).String(), "--height", "10")
		assert.Equal(t, 2, res.exitCode)

		var result resultJSON
		require.NoError(t, json.Unmarshal([]byte(res.out), &result))
		assert.Equal(t, "LoadCoinView", result.FailedRule)
		assert.Equal(t, 0, result.FetchedIDs)
	})

	t.Run("negative height", func(t *testing.T) {
		path := writeFile(t, dir, "block.bin", raw)

		res := run(t, context.Background(), dir, "validate", "--block", path, "--height", "-1")
		require.Error(t, res.err)
		assert.True(t, errors.Is(res.err, errors.ErrInvalidArgument))
	})
}

func TestValidateTipHeader(t *testing.T) {
	tipHeader := &model.BlockHeader{
		Version:        0x20000000,
		HashPrevBlock:  &chainhash.Hash{},
		HashMerkleRoot: &chainhash.Hash{},
		Timestamp:      1729251723,
		Bits:           0x207fffff,
		Nonce:          4,
	}
	headerHex := hex.EncodeToString(tipHeader.Bytes())

	block := test.Block(*tipHeader.Hash(), test.CoinbaseTx(1, 50*100_000_000))

	raw, err := block.Bytes()
	require.NoError(t, err)

	t.Run("accepted on the header's hash", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "block.bin", raw)

		res := run(t, context.Background(), dir, "validate", "--block", path, "--tip-header", headerHex)
		require.NoError(t, res.err)

		var result resultJSON
		require.NoError(t, json.Unmarshal([]byte(res.out), &result))
		assert.Equal(t, "accepted", result.State)
		assert.Equal(t, uint32(1), result.Height)
	})

	t.Run("with --tip", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "block.bin", raw)

		res := run(t, context.Background(), dir, "validate", "--block", path, "--tip-header", headerHex, "--tip", tipHeader.Hash().String())
		require.Error(t, res.err)
		assert.True(t, errors.Is(res.err, errors.ErrInvalidArgument))
	})

	t.Run("malformed header", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "block.bin", raw)

		for _, header := range []string{"zz", headerHex[:20]} {
			res := run(t, context.Background(), dir, "validate", "--block", path, "--tip-header", header)
			require.Error(t, res.err)
			assert.True(t, errors.Is(res.err, errors.ErrInvalidArgument), header)
		}
	})
}

func TestReadBlock(t *testing.T) {
	dir := t.TempDir()

	block := test.Block(test.Hash(1), test.CoinbaseTx(1, 100))

	raw, err := block.Bytes()
	require.NoError(t, err)

	for name, data := range map[string][]byte{
		"raw":       raw,
		"hex":       []byte(hex.EncodeToString(raw)),
		"upper hex": bytes.ToUpper([]byte(hex.EncodeToString(raw))),
	} {
		t.Run(name, func(t *testing.T) {
			read, err := readBlock(writeFile(t, dir, "block", data))
			require.NoError(t, err)
			assert.Equal(t, block.Hash(), read.Hash())
			assert.Len(t, read.Transactions, 1)
		})
	}

	_, err = readBlock(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = readBlock(writeFile(t, dir, "garbage", []byte("abcd")))
	assert.Error(t, err)
}

func freeAddress(t *testing.T) string {
	t.Helper()

	lis, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	address := lis.Addr().String()
	require.NoError(t, lis.Close())

	return address
}

func TestServeAndHealth(t *testing.T) {
	dir := t.TempDir()
	grpcAddress := freeAddress(t)
	httpAddress := freeAddress(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan runResult, 1)

	go func() {
		done <- run(t, ctx, dir, "serve", "--grpc", grpcAddress, "--http", httpAddress)
	}()

	require.Eventually(t, func() bool {
		res := run(t, context.Background(), dir, "health", "--address", grpcAddress, "--http", "http://"+httpAddress)
		return res.err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case res := <-done:
		require.NoError(t, res.err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	res := run(t, context.Background(), dir, "health", "--address", grpcAddress)
	assert.Equal(t, 1, res.exitCode)
	assert.Contains(t, res.out, `"status":"503"`)
}
