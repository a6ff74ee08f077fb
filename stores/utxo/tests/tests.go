// Package tests is the store agnostic suite every coin store backend runs from its own package
// tests.
package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tx, _  = bt.NewTxFromString("010000000000000000ef0152a9231baa4e4b05dc30c8fbb7787bab5f460d4d33b039c39dd8cc006f3363e4020000006b483045022100ce3605307dd1633d3c14de4a0cf0df1439f392994e561b648897c4e540baa9ad02207af74878a7575a95c9599e9cdc7e6d73308608ee59abcd90af3ea1a5c0cca41541210275f8390df62d1e951920b623b8ef9c2a67c4d2574d408e422fb334dd1f3ee5b6ffffffff706b9600000000001976a914a32f7eaae3afd5f73a2d6009b93f91aa11d16eef88ac05404b4c00000000001976a914aabb8c2f08567e2d29e3a64f1f833eee85aaf74d88ac80841e00000000001976a914a4aff400bef2fa074169453e703c611c6b9df51588ac204e0000000000001976a9144669d92d46393c38594b2f07587f01b3e5289f6088ac204e0000000000001976a914a461497034343a91683e86b568c8945fb73aca0288ac99fe2a00000000001976a914de7850e419719258077abd37d4fcccdb0a659b9388ac00000000")
	TXHash = *tx.TxIDChainHash()
	// Hash is a txid the suite never stores
	Hash, _ = chainhash.NewHashFromStr("5e3bc5947f48cec766090aa17f309fd16259de029dcef5d306b514848c9687c7")
)

// SeedTx stores every output of the suite transaction at height 1000 and returns what was stored.
func SeedTx(t *testing.T, db utxo.Store) map[model.Outpoint]*model.UnspentOutput {
	t.Helper()

	added := make(map[model.Outpoint]*model.UnspentOutput, len(tx.Outputs))
	for i := range tx.Outputs {
		added[model.NewOutpoint(TXHash, uint32(i))] = model.NewUnspentOutput(tx, uint32(i), 1000)
	}

	require.NoError(t, db.Commit(context.Background(), nil, added))

	return added
}

func Fetch(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	added := SeedTx(t, db)

	resp, err := db.Fetch(ctx, []chainhash.Hash{TXHash})
	require.NoError(t, err)
	require.Len(t, resp.Coins, 1)

	coins := resp.Get(TXHash)
	require.NotNil(t, coins)
	assert.Equal(t, TXHash, coins.TxID)
	require.Len(t, coins.Outputs, len(tx.Outputs))

	for op, expected := range added {
		actual, ok := coins.Outputs[op.Index]
		require.True(t, ok, "missing output %s", op)
		assert.True(t, expected.Equal(actual), "output %s differs", op)
	}
}

// FetchAbsent checks that unknown ids come back as explicit nil entries, not as errors.
func FetchAbsent(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	SeedTx(t, db)

	resp, err := db.Fetch(ctx, []chainhash.Hash{*Hash, TXHash})
	require.NoError(t, err)
	require.Len(t, resp.Coins, 2)

	coins, ok := resp.Coins[*Hash]
	assert.True(t, ok)
	assert.Nil(t, coins)
	assert.NotNil(t, resp.Get(TXHash))

	resp, err = db.Fetch(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Coins)
}

func FetchDuplicateIDs(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	SeedTx(t, db)

	resp, err := db.Fetch(ctx, []chainhash.Hash{TXHash, *Hash, TXHash, *Hash})
	require.NoError(t, err)
	require.Len(t, resp.Coins, 2)
	assert.Len(t, resp.Get(TXHash).Outputs, len(tx.Outputs))
}

// FetchMany checks that a fetch larger than any batch size a backend may use is complete.
func FetchMany(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	const n = 2500

	added := make(map[model.Outpoint]*model.UnspentOutput, n)
	txIDs := make([]chainhash.Hash, 0, 2*n)

	for i := 0; i < n; i++ {
		stored := chainhash.HashH([]byte{byte(i), byte(i >> 8), 's'})
		missing := chainhash.HashH([]byte{byte(i), byte(i >> 8), 'm'})

		added[model.NewOutpoint(stored, uint32(i%3))] = &model.UnspentOutput{Satoshis: uint64(i), LockingScript: []byte{0x51}, Height: uint32(i)}

		txIDs = append(txIDs, stored, missing)
	}

	require.NoError(t, db.Commit(ctx, nil, added))

	resp, err := db.Fetch(ctx, txIDs)
	require.NoError(t, err)
	require.Len(t, resp.Coins, 2*n)
	assert.Equal(t, n, resp.Found())

	for op, expected := range added {
		coins := resp.Get(op.TxID)
		require.NotNil(t, coins)
		assert.True(t, expected.Equal(coins.Outputs[op.Index]))
	}
}

func Commit(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	SeedTx(t, db)

	spent := []model.Outpoint{model.NewOutpoint(TXHash, 0), model.NewOutpoint(TXHash, 2)}
	newOutput := &model.UnspentOutput{Satoshis: 1234, LockingScript: []byte{0x76, 0xa9}, Height: 1001}

	err := db.Commit(ctx, spent, map[model.Outpoint]*model.UnspentOutput{
		model.NewOutpoint(*Hash, 1): newOutput,
	})
	require.NoError(t, err)

	resp, err := db.Fetch(ctx, []chainhash.Hash{TXHash, *Hash})
	require.NoError(t, err)

	coins := resp.Get(TXHash)
	require.NotNil(t, coins)
	assert.Len(t, coins.Outputs, len(tx.Outputs)-2)
	assert.NotContains(t, coins.Outputs, uint32(0))
	assert.NotContains(t, coins.Outputs, uint32(2))
	assert.Contains(t, coins.Outputs, uint32(1))

	created := resp.Get(*Hash)
	require.NotNil(t, created)
	require.Len(t, created.Outputs, 1)
	assert.True(t, newOutput.Equal(created.Outputs[1]))
}

// CommitAllSpent checks that a transaction whose last output is spent is reported as absent.
func CommitAllSpent(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	added := SeedTx(t, db)

	spent := make([]model.Outpoint, 0, len(added))
	for op := range added {
		spent = append(spent, op)
	}

	require.NoError(t, db.Commit(ctx, spent, nil))

	resp, err := db.Fetch(ctx, []chainhash.Hash{TXHash})
	require.NoError(t, err)
	assert.Nil(t, resp.Get(TXHash))
	assert.Contains(t, resp.Coins, TXHash)
}

// CommitMissingSpend checks that spending an absent outpoint fails and applies nothing, not even
// the parts of the commit that would have succeeded.
func CommitMissingSpend(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	SeedTx(t, db)

	err := db.Commit(ctx,
		[]model.Outpoint{model.NewOutpoint(TXHash, 0), model.NewOutpoint(*Hash, 0)},
		map[model.Outpoint]*model.UnspentOutput{
			model.NewOutpoint(*Hash, 5): {Satoshis: 5, LockingScript: []byte{0x51}},
		},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageError), "expected storage error, got %v", err)

	resp, err := db.Fetch(ctx, []chainhash.Hash{TXHash, *Hash})
	require.NoError(t, err)

	assert.Len(t, resp.Get(TXHash).Outputs, len(tx.Outputs))
	assert.Nil(t, resp.Get(*Hash))
}

// CommitOverwrite checks that adding an outpoint that exists replaces it.
func CommitOverwrite(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	SeedTx(t, db)

	replacement := &model.UnspentOutput{Satoshis: 1, LockingScript: []byte{0x52}, Height: 2000, IsCoinbase: true}

	require.NoError(t, db.Commit(ctx, nil, map[model.Outpoint]*model.UnspentOutput{
		model.NewOutpoint(TXHash, 3): replacement,
	}))

	resp, err := db.Fetch(ctx, []chainhash.Hash{TXHash})
	require.NoError(t, err)
	assert.True(t, replacement.Equal(resp.Get(TXHash).Outputs[3]))
}

// CommitIsAtomic moves a set of outputs back and forth between two txids while readers fetch both.
// Every reader must see the full set under exactly one of the two ids.
func CommitIsAtomic(t *testing.T, db utxo.Store) {
	ctx := context.Background()

	const outputs = 20

	a := chainhash.HashH([]byte("atomic-a"))
	b := chainhash.HashH([]byte("atomic-b"))

	set := func(txID chainhash.Hash) ([]model.Outpoint, map[model.Outpoint]*model.UnspentOutput) {
		ops := make([]model.Outpoint, 0, outputs)
		added := make(map[model.Outpoint]*model.UnspentOutput, outputs)

		for i := uint32(0); i < outputs; i++ {
			op := model.NewOutpoint(txID, i)
			ops = append(ops, op)
			added[op] = &model.UnspentOutput{Satoshis: uint64(i) + 1, LockingScript: []byte{0x51}, Height: i}
		}

		return ops, added
	}

	opsA, addA := set(a)
	opsB, addB := set(b)

	require.NoError(t, db.Commit(ctx, nil, addA))

	var (
		done     atomic.Bool
		wg       sync.WaitGroup
		failures atomic.Int32
	)

	for r := 0; r < 4; r++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for !done.Load() {
				resp, err := db.Fetch(ctx, []chainhash.Hash{a, b})
				if err != nil {
					failures.Add(1)
					return
				}

				na := len(resp.Get(a).Indexes())
				nb := len(resp.Get(b).Indexes())

				if !(na == outputs && nb == 0) && !(na == 0 && nb == outputs) {
					failures.Add(1)
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			require.NoError(t, db.Commit(ctx, opsA, addB))
		} else {
			require.NoError(t, db.Commit(ctx, opsB, addA))
		}
	}

	done.Store(true)
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load(), "a reader observed a partial commit")
}

func Health(t *testing.T, db utxo.Store) {
	status, details, err := db.Health(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.NotEmpty(t, details)

	status, _, err = db.Health(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

// RunAll runs the whole suite, each test against a fresh store from newStore.
func RunAll(t *testing.T, newStore func(t *testing.T) utxo.Store) {
	suite := []struct {
		name string
		fn   func(t *testing.T, db utxo.Store)
	}{
		{"fetch", Fetch},
		{"fetch absent", FetchAbsent},
		{"fetch duplicate ids", FetchDuplicateIDs},
		{"fetch many", FetchMany},
		{"commit", Commit},
		{"commit all spent", CommitAllSpent},
		{"commit missing spend", CommitMissingSpend},
		{"commit overwrite", CommitOverwrite},
		{"commit is atomic", CommitIsAtomic},
		{"health", Health},
	}

	for _, tt := range suite {
		t.Run(tt.name, func(t *testing.T) {
			db := newStore(t)

			defer func() {
				_ = db.Close(context.Background())
			}()

			tt.fn(t, db)
		})
	}
}
