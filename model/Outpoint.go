package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// OutpointSize is the length of a serialized Outpoint.
const OutpointSize = 36

// Outpoint identifies one output of a transaction. It is a comparable value type and is used as a
// map key throughout the coin view.
type Outpoint struct {
	TxID  chainhash.Hash
	Index uint32
}

func NewOutpoint(txID chainhash.Hash, index uint32) Outpoint {
	return Outpoint{
		TxID:  txID,
		Index: index,
	}
}

// NewOutpointFromBytes expects exactly 36 bytes, the transaction ID (little endian) followed by
// the index (little endian).
func NewOutpointFromBytes(b []byte) (Outpoint, error) {
	if len(b) != OutpointSize {
		return Outpoint{}, errors.NewInvalidArgumentError("invalid outpoint length: expected %d bytes, got %d", OutpointSize, len(b))
	}

	var o Outpoint

	copy(o.TxID[:], b[:32])
	o.Index = binary.LittleEndian.Uint32(b[32:])

	return o, nil
}

// Bytes returns the 36 byte form read by NewOutpointFromBytes.
func (o Outpoint) Bytes() []byte {
	serialized := make([]byte, OutpointSize)
	copy(serialized, o.TxID[:])
	binary.LittleEndian.PutUint32(serialized[32:], o.Index)

	return serialized
}

// String returns "txid:index" with the txid in its usual big-endian hex form.
func (o Outpoint) String() string {
	return fmt.Sprintf("%v:%d", o.TxID, o.Index)
}

// SortOutpoints sorts by txid bytes, then index.
func SortOutpoints(outpoints []Outpoint) {
	sort.Slice(outpoints, func(i, j int) bool {
		if c := bytes.Compare(outpoints[i].TxID[:], outpoints[j].TxID[:]); c != 0 {
			return c < 0
		}

		return outpoints[i].Index < outpoints[j].Index
	})
}
