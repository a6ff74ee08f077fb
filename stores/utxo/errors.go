package utxo

import (
	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
)

var (
	ErrStoreClosed = errors.NewStorageUnavailableError("utxo store is closed")
)

// NewErrMissingSpend is returned by Commit when an outpoint to spend is not in the store.
func NewErrMissingSpend(op model.Outpoint) error {
	return errors.NewStorageError("cannot spend outpoint %s: not found in utxo store", op)
}
