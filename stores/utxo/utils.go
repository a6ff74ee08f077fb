package utxo

import (
	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// UniqueTxIDs returns txIDs without duplicates, keeping the first occurrence order.
func UniqueTxIDs(txIDs []chainhash.Hash) []chainhash.Hash {
	seen := make(map[chainhash.Hash]struct{}, len(txIDs))
	unique := make([]chainhash.Hash, 0, len(txIDs))

	for _, txID := range txIDs {
		if _, ok := seen[txID]; ok {
			continue
		}

		seen[txID] = struct{}{}

		unique = append(unique, txID)
	}

	return unique
}

// ValidateCommit rejects commit arguments no backend can apply: an outpoint spent twice, or an
// added output that is nil.
func ValidateCommit(spent []model.Outpoint, added map[model.Outpoint]*model.UnspentOutput) error {
	seen := make(map[model.Outpoint]struct{}, len(spent))

	for _, op := range spent {
		if _, ok := seen[op]; ok {
			return errors.NewStorageError("outpoint %s is spent twice in the same commit", op)
		}

		seen[op] = struct{}{}
	}

	for op, out := range added {
		if out == nil {
			return errors.NewStorageError("added output %s is nil", op)
		}
	}

	return nil
}

// ChunkTxIDs splits txIDs into slices of at most size ids.
func ChunkTxIDs(txIDs []chainhash.Hash, size int) [][]chainhash.Hash {
	if size <= 0 {
		size = max(len(txIDs), 1)
	}

	chunks := make([][]chainhash.Hash, 0, (len(txIDs)+size-1)/size)

	for start := 0; start < len(txIDs); start += size {
		end := min(start+size, len(txIDs))
		chunks = append(chunks, txIDs[start:end])
	}

	return chunks
}
