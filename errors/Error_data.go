package errors

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDataI is an interface for error data that can be set, retrieved, and encoded.
type ErrDataI interface {
	EncodeErrorData() []byte
	Error() string
	GetData(key string) interface{}
	SetData(key string, value interface{})
}

// ErrData is a generic error data structure that implements the ErrDataI interface.
type ErrData map[string]interface{}

// Error returns a string representation of the error data.
func (e *ErrData) Error() string {
	return fmt.Sprintf(" %v", *e)
}

// SetData sets a key-value pair in the error data.
func (e *ErrData) SetData(key string, value interface{}) {
	if e == nil {
		return
	}

	if *e == nil {
		*e = ErrData{}
	}

	(*e)[key] = value
}

// GetData retrieves the value associated with a key in the error data.
func (e *ErrData) GetData(key string) interface{} {
	if e == nil {
		return nil
	}

	return (*e)[key]
}

// EncodeErrorData encodes the error data to a byte slice using JSON encoding.
func (e *ErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

// UtxoSpentErrData describes an outpoint that was spent before the block being validated tried to
// spend it.
type UtxoSpentErrData struct {
	TxID           chainhash.Hash `json:"txid"`
	Index          uint32         `json:"index"`
	SpendingTxHash chainhash.Hash `json:"spendingTxHash"`
	Time           time.Time      `json:"time"`
}

func (e *UtxoSpentErrData) Error() string {
	return fmt.Sprintf("utxo %s:%d already spent by %s", e.TxID, e.Index, e.SpendingTxHash)
}

func (e *UtxoSpentErrData) SetData(string, interface{}) {}

func (e *UtxoSpentErrData) GetData(key string) interface{} {
	switch key {
	case "txid":
		return e.TxID.String()
	case "index":
		return e.Index
	case "spendingTxHash":
		return e.SpendingTxHash.String()
	default:
		return nil
	}
}

func (e *UtxoSpentErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

// NewUtxoSpentError returns a double spend error carrying the spent outpoint and the tx that tried
// to spend it again.
func NewUtxoSpentError(txID chainhash.Hash, index uint32, spendingTxID chainhash.Hash, t time.Time) error {
	data := &UtxoSpentErrData{
		TxID:           txID,
		Index:          index,
		SpendingTxHash: spendingTxID,
		Time:           t,
	}

	e := New(ERR_TX_INVALID_DOUBLE_SPEND, data.Error())
	e.data = data

	return e
}

// GetErrorData retrieves error data based on the error code and unmarshals it from a byte slice.
func GetErrorData(code ERR, dataBytes []byte) (ErrDataI, error) {
	var errData ErrDataI

	switch code {
	case ERR_TX_INVALID_DOUBLE_SPEND:
		errData = &UtxoSpentErrData{}
	default:
		errData = &ErrData{}
	}

	if err := json.Unmarshal(dataBytes, errData); err != nil {
		return errData, err
	}

	return errData, nil
}
