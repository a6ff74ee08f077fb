package utxo

import (
	"testing"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueTxIDs(t *testing.T) {
	a, b, c := chainhash.Hash{1}, chainhash.Hash{2}, chainhash.Hash{3}

	assert.Equal(t, []chainhash.Hash{b, a, c}, UniqueTxIDs([]chainhash.Hash{b, a, b, c, a}))
	assert.Empty(t, UniqueTxIDs(nil))
}

func TestChunkTxIDs(t *testing.T) {
	txIDs := make([]chainhash.Hash, 7)
	for i := range txIDs {
		txIDs[i] = chainhash.Hash{byte(i)}
	}

	tests := []struct {
		name     string
		size     int
		expected []int
	}{
		{"exact", 7, []int{7}},
		{"remainder", 3, []int{3, 3, 1}},
		{"one each", 1, []int{1, 1, 1, 1, 1, 1, 1}},
		{"zero means one chunk", 0, []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkTxIDs(txIDs, tt.size)

			sizes := make([]int, 0, len(chunks))
			for _, chunk := range chunks {
				sizes = append(sizes, len(chunk))
			}

			assert.Equal(t, tt.expected, sizes)
		})
	}

	assert.Empty(t, ChunkTxIDs(nil, 10))
}

func TestValidateCommit(t *testing.T) {
	op := model.NewOutpoint(chainhash.Hash{1}, 0)

	require.NoError(t, ValidateCommit([]model.Outpoint{op}, map[model.Outpoint]*model.UnspentOutput{
		model.NewOutpoint(chainhash.Hash{2}, 0): {Satoshis: 1},
	}))

	err := ValidateCommit([]model.Outpoint{op, op}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageError))

	err = ValidateCommit(nil, map[model.Outpoint]*model.UnspentOutput{op: nil})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageError))
}

func TestFetchResponse(t *testing.T) {
	present, absent := chainhash.Hash{1}, chainhash.Hash{2}

	r := NewFetchResponse([]chainhash.Hash{present, absent})
	require.Len(t, r.Coins, 2)
	assert.Equal(t, 0, r.Found())

	coins := model.NewCoins(present)
	coins.Outputs[0] = &model.UnspentOutput{Satoshis: 1}
	r.Coins[present] = coins

	assert.Equal(t, 1, r.Found())
	assert.Same(t, coins, r.Get(present))
	assert.Nil(t, r.Get(absent))
}
