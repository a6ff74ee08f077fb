package main

import (
	"encoding/hex"
	"io"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/services/blockvalidation"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// outputJSON is one unspent output as read by seed and printed by fetch.
type outputJSON struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Satoshis      uint64 `json:"satoshis"`
	LockingScript string `json:"lockingScript"`
	Height        uint32 `json:"height"`
	Coinbase      bool   `json:"coinbase,omitempty"`
}

func newOutputJSON(op model.Outpoint, out *model.UnspentOutput) outputJSON {
	return outputJSON{
		TxID:          op.TxID.String(),
		Vout:          op.Index,
		Satoshis:      out.Satoshis,
		LockingScript: out.Script().String(),
		Height:        out.Height,
		Coinbase:      out.IsCoinbase,
	}
}

func (o outputJSON) decode() (model.Outpoint, *model.UnspentOutput, error) {
	txID, err := chainhash.NewHashFromStr(o.TxID)
	if err != nil {
		return model.Outpoint{}, nil, errors.NewInvalidArgumentError("invalid txid %q", o.TxID, err)
	}

	script, err := hex.DecodeString(o.LockingScript)
	if err != nil {
		return model.Outpoint{}, nil, errors.NewInvalidArgumentError("invalid locking script for %s:%d", o.TxID, o.Vout, err)
	}

	return model.NewOutpoint(*txID, o.Vout), &model.UnspentOutput{
		Satoshis:      o.Satoshis,
		LockingScript: script,
		Height:        o.Height,
		IsCoinbase:    o.Coinbase,
	}, nil
}

// coinsJSON is the fetch result for one txid. Outputs is nil when the store has no unspent output
// for it.
type coinsJSON struct {
	TxID    string       `json:"txid"`
	Outputs []outputJSON `json:"outputs"`
}

func newCoinsJSON(txID chainhash.Hash, coins *model.Coins) coinsJSON {
	c := coinsJSON{TxID: txID.String()}

	if coins == nil {
		return c
	}

	for _, idx := range coins.Indexes() {
		c.Outputs = append(c.Outputs, newOutputJSON(model.NewOutpoint(txID, idx), coins.Outputs[idx]))
	}

	return c
}

type resultJSON struct {
	Block      string  `json:"block"`
	State      string  `json:"state"`
	Height     uint32  `json:"height"`
	FailedRule string  `json:"failedRule,omitempty"`
	Error      string  `json:"error,omitempty"`
	FetchedIDs int     `json:"fetchedIds"`
	DurationMS float64 `json:"durationMs"`
}

func newResultJSON(r *blockvalidation.ValidationResult) resultJSON {
	res := resultJSON{
		Block:      r.BlockHash.String(),
		State:      string(r.State),
		Height:     r.Height,
		FailedRule: r.FailedRule,
		FetchedIDs: r.FetchedIDs,
		DurationMS: float64(r.Duration.Microseconds()) / 1000,
	}

	if r.Err != nil {
		res.Error = r.Err.Error()
	}

	return res
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
