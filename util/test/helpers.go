// Package test holds builders shared by the package tests: settings, transactions and blocks that
// are structurally valid without needing real signatures.
package test

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
)

// p2pkhScript is a standard pay-to-pubkey-hash locking script
var p2pkhScript = []byte{
	0x76, 0xa9, 0x14,
	0x62, 0xe9, 0x07, 0xb1, 0x5c, 0xbf, 0x27, 0xd5, 0x42, 0x53,
	0x99, 0xeb, 0xf6, 0xf0, 0xfb, 0x50, 0xeb, 0xb8, 0x8f, 0x18,
	0x88, 0xac,
}

var nonce atomic.Uint32

func CreateBaseTestSettings() *settings.Settings {
	tSettings := settings.NewSettings()

	params := chaincfg.RegressionNetParams
	params.CoinbaseMaturity = 1
	tSettings.ChainCfgParams = &params

	return tSettings
}

// LockingScript returns a fresh copy of the P2PKH script used by the builders.
func LockingScript() *bscript.Script {
	s := make([]byte, len(p2pkhScript))
	copy(s, p2pkhScript)

	return bscript.NewFromBytes(s)
}

// DataScript returns an OP_FALSE OP_RETURN script carrying payload.
func DataScript(payload []byte) *bscript.Script {
	s := []byte{bscript.OpFALSE, bscript.OpRETURN, byte(len(payload))}
	s = append(s, payload...)

	return bscript.NewFromBytes(s)
}

// CoinbaseTx builds a coinbase for height paying satoshis to a single output. The height is pushed
// in the unlocking script, which also makes coinbases at different heights distinct.
func CoinbaseTx(height uint32, satoshis uint64) *bt.Tx {
	heightBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(heightBytes, height)

	extraNonce := make([]byte, 4)
	binary.LittleEndian.PutUint32(extraNonce, nonce.Add(1))

	unlocking := append([]byte{0x04}, heightBytes...)
	unlocking = append(unlocking, 0x04)
	unlocking = append(unlocking, extraNonce...)

	input := &bt.Input{
		PreviousTxOutIndex: 0xffffffff,
		SequenceNumber:     0xffffffff,
		UnlockingScript:    bscript.NewFromBytes(unlocking),
	}
	_ = input.PreviousTxIDAdd(&chainhash.Hash{})

	tx := bt.NewTx()
	tx.Inputs = append(tx.Inputs, input)
	tx.AddOutput(&bt.Output{Satoshis: satoshis, LockingScript: LockingScript()})

	return tx
}

// SpendingTx builds a transaction spending every outpoint in from and creating one output per
// entry of outputs.
func SpendingTx(from []model.Outpoint, outputs ...uint64) *bt.Tx {
	tx := bt.NewTx()

	for _, op := range from {
		txID := op.TxID

		input := &bt.Input{
			PreviousTxOutIndex: op.Index,
			SequenceNumber:     0xffffffff,
			UnlockingScript:    bscript.NewFromBytes([]byte{}),
		}
		_ = input.PreviousTxIDAdd(&txID)

		tx.Inputs = append(tx.Inputs, input)
	}

	for _, satoshis := range outputs {
		tx.AddOutput(&bt.Output{Satoshis: satoshis, LockingScript: LockingScript()})
	}

	return tx
}

// Outpoint is shorthand for the outpoint of output index of tx.
func Outpoint(tx *bt.Tx, index uint32) model.Outpoint {
	return model.NewOutpoint(*tx.TxIDChainHash(), index)
}

// Block wraps txs in a block whose header points at prev.
func Block(prev chainhash.Hash, txs ...*bt.Tx) *model.Block {
	prevHash := prev
	merkleRoot := chainhash.Hash{}

	return model.NewBlock(&model.BlockHeader{
		Version:        0x20000000,
		HashPrevBlock:  &prevHash,
		HashMerkleRoot: &merkleRoot,
		Timestamp:      1729251723,
		Bits:           0x207fffff,
		Nonce:          nonce.Add(1),
	}, txs)
}

// Coins groups outputs of tx, all created at height, the way a store returns them.
func Coins(tx *bt.Tx, height uint32, indexes ...uint32) *model.Coins {
	coins := model.NewCoins(*tx.TxIDChainHash())

	for _, idx := range indexes {
		coins.Outputs[idx] = model.NewUnspentOutput(tx, idx, height)
	}

	return coins
}

// Hash returns a deterministic hash whose first byte is b, handy for tips and fake txids.
func Hash(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b

	return h
}
