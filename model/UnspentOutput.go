package model

import (
	"bytes"
	"encoding/binary"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-wire"
)

const flagCoinbase byte = 1 << 0

// UnspentOutput is the spendable data of one output. It carries no spent flag: an output that is
// present is spendable, an output that is absent was spent or never existed.
type UnspentOutput struct {
	Satoshis      uint64
	LockingScript []byte
	// Height is the height of the block that created the output
	Height     uint32
	IsCoinbase bool
}

// NewUnspentOutput builds the unspent output for tx.Outputs[index] created at height.
func NewUnspentOutput(tx *bt.Tx, index uint32, height uint32) *UnspentOutput {
	output := tx.Outputs[index]

	var script []byte
	if output.LockingScript != nil {
		script = []byte(*output.LockingScript)
	}

	return &UnspentOutput{
		Satoshis:      output.Satoshis,
		LockingScript: script,
		Height:        height,
		IsCoinbase:    tx.IsCoinbase(),
	}
}

// Script returns the locking script as a bscript.Script.
func (u *UnspentOutput) Script() *bscript.Script {
	return bscript.NewFromBytes(u.LockingScript)
}

// Bytes serializes u as satoshis(8 LE) | height(4 LE) | flags(1) | varint(len script) | script.
func (u *UnspentOutput) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 13+9+len(u.LockingScript)))

	var header [13]byte
	binary.LittleEndian.PutUint64(header[0:8], u.Satoshis)
	binary.LittleEndian.PutUint32(header[8:12], u.Height)

	if u.IsCoinbase {
		header[12] |= flagCoinbase
	}

	buf.Write(header[:])

	// writing to a bytes.Buffer cannot fail
	_ = wire.WriteVarInt(buf, 0, uint64(len(u.LockingScript)))

	buf.Write(u.LockingScript)

	return buf.Bytes()
}

func NewUnspentOutputFromBytes(b []byte) (*UnspentOutput, error) {
	if len(b) < 14 {
		return nil, errors.NewProcessingError("unspent output too short: %d bytes", len(b))
	}

	u := &UnspentOutput{
		Satoshis:   binary.LittleEndian.Uint64(b[0:8]),
		Height:     binary.LittleEndian.Uint32(b[8:12]),
		IsCoinbase: b[12]&flagCoinbase != 0,
	}

	r := bytes.NewReader(b[13:])

	scriptLen, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, errors.NewProcessingError("error reading locking script length", err)
	}

	if scriptLen != uint64(r.Len()) {
		return nil, errors.NewProcessingError("locking script length %d does not match remaining %d bytes", scriptLen, r.Len())
	}

	u.LockingScript = make([]byte, scriptLen)
	copy(u.LockingScript, b[len(b)-int(scriptLen):])

	return u, nil
}

// Equal compares all fields.
func (u *UnspentOutput) Equal(other *UnspentOutput) bool {
	if u == nil || other == nil {
		return u == other
	}

	return u.Satoshis == other.Satoshis &&
		u.Height == other.Height &&
		u.IsCoinbase == other.IsCoinbase &&
		bytes.Equal(u.LockingScript, other.LockingScript)
}

// IsSpendableAt reports whether a coinbase output has reached maturity at spendHeight. Outputs of
// regular transactions are always mature.
func (u *UnspentOutput) IsSpendableAt(spendHeight uint32, coinbaseMaturity uint32) bool {
	if !u.IsCoinbase {
		return true
	}

	if spendHeight < u.Height {
		return false
	}

	return spendHeight-u.Height >= coinbaseMaturity
}
