package model

import (
	"testing"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutpoint(t *testing.T) {
	txID, err := chainhash.NewHashFromStr("9f0a5462ca027f74b8c8e872331da1a55520197ff8734b604505c93cc7dfb968")
	require.NoError(t, err)

	op := NewOutpoint(*txID, 3)

	t.Run("bytes", func(t *testing.T) {
		b := op.Bytes()
		require.Len(t, b, OutpointSize)

		decoded, err := NewOutpointFromBytes(b)
		require.NoError(t, err)
		assert.Equal(t, op, decoded)
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "9f0a5462ca027f74b8c8e872331da1a55520197ff8734b604505c93cc7dfb968:3", op.String())
	})

	t.Run("invalid length", func(t *testing.T) {
		_, err := NewOutpointFromBytes(make([]byte, 35))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("usable as map key", func(t *testing.T) {
		m := map[Outpoint]int{op: 1}
		assert.Equal(t, 1, m[NewOutpoint(*txID, 3)])
		assert.NotContains(t, m, NewOutpoint(*txID, 4))
	})
}

func TestUnspentOutputBytes(t *testing.T) {
	tests := []struct {
		name string
		out  *UnspentOutput
	}{
		{"regular", &UnspentOutput{Satoshis: 1000, LockingScript: []byte{0x76, 0xa9, 0x88, 0xac}, Height: 100}},
		{"coinbase", &UnspentOutput{Satoshis: 50 * 1e8, LockingScript: []byte{0x51}, Height: 1, IsCoinbase: true}},
		{"empty script", &UnspentOutput{Satoshis: 0, LockingScript: []byte{}, Height: 0}},
		{"long script", &UnspentOutput{Satoshis: 1, LockingScript: make([]byte, 70_000), Height: 700_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := NewUnspentOutputFromBytes(tt.out.Bytes())
			require.NoError(t, err)
			assert.True(t, tt.out.Equal(decoded))
		})
	}

	t.Run("too short", func(t *testing.T) {
		_, err := NewUnspentOutputFromBytes([]byte{1, 2, 3})
		require.Error(t, err)
	})

	t.Run("script length mismatch", func(t *testing.T) {
		b := (&UnspentOutput{Satoshis: 1, LockingScript: []byte{1, 2, 3}}).Bytes()

		_, err := NewUnspentOutputFromBytes(b[:len(b)-1])
		require.Error(t, err)
	})
}

func TestUnspentOutputIsSpendableAt(t *testing.T) {
	coinbase := &UnspentOutput{Height: 100, IsCoinbase: true}
	regular := &UnspentOutput{Height: 100}

	assert.True(t, regular.IsSpendableAt(100, 100))
	assert.False(t, coinbase.IsSpendableAt(150, 100))
	assert.False(t, coinbase.IsSpendableAt(199, 100))
	assert.True(t, coinbase.IsSpendableAt(200, 100))
	assert.False(t, coinbase.IsSpendableAt(99, 0))
	assert.True(t, coinbase.IsSpendableAt(100, 0))
}

func TestCoins(t *testing.T) {
	coins := NewCoins(chainhash.Hash{1})
	assert.False(t, coins.HasUnspent())

	coins.Outputs[2] = &UnspentOutput{Satoshis: 2}
	coins.Outputs[0] = &UnspentOutput{Satoshis: 0}
	assert.True(t, coins.HasUnspent())
	assert.Equal(t, []uint32{0, 2}, coins.Indexes())

	clone := coins.Clone()
	clone.Outputs[2].Satoshis = 99
	delete(clone.Outputs, 0)

	assert.Equal(t, uint64(2), coins.Outputs[2].Satoshis)
	assert.Len(t, coins.Outputs, 2)

	var nilCoins *Coins
	assert.False(t, nilCoins.HasUnspent())
	assert.Nil(t, nilCoins.Clone())
}
