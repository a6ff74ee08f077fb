package blockvalidation

import (
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
	"github.com/bsv-blockchain/go-wire"
)

// bip34ImpliesBIP30Limit is the first mainnet height at which a coinbase of an early block could
// repeat a txid despite BIP34, so BIP30 has to be enforced again from here on.
const bip34ImpliesBIP30Limit = 1983702

// bip30Exceptions are the two mainnet blocks that contain a transaction duplicating the txid of an
// earlier one that was still unspent.
var bip30Exceptions = map[uint32]string{
	91842: "00000000000a4d0a398161ffc163c503763b1f4360639393e0e4c8e300e0caec",
	91880: "00000000000743f190a18c5577a3c2d2a1f610ae9601ac046a38084ccb7cd721",
}

// Flags selects which consensus rules apply to one block.
type Flags struct {
	// EnforceBIP30 rejects a transaction whose txid still has unspent outputs, and makes the coin
	// view load the block's own txids to check it.
	EnforceBIP30 bool

	// EnforceBIP34 requires the coinbase to start with the height of its block.
	EnforceBIP34 bool

	// CoinbaseMaturity is the number of blocks a coinbase output has to wait before it is spendable.
	CoinbaseMaturity uint32
}

// DeploymentFlags returns the historically correct flags for the block with the given hash at
// height. BIP30 is enforced everywhere except at the two mainnet exception blocks and, on mainnet
// only, while BIP34 makes duplicate coinbases impossible. The BIP34 window is bounded by a mainnet
// height, so other networks keep enforcing BIP30 throughout.
func DeploymentFlags(params *chaincfg.Params, height uint32, hash *chainhash.Hash) Flags {
	flags := Flags{
		EnforceBIP30:     true,
		EnforceBIP34:     params.BIP0034Height > 0 && height >= uint32(params.BIP0034Height), //nolint:gosec
		CoinbaseMaturity: uint32(params.CoinbaseMaturity),
	}

	if params.Net != wire.MainNet {
		return flags
	}

	if exception, ok := bip30Exceptions[height]; ok && hash != nil && hash.String() == exception {
		flags.EnforceBIP30 = false
	}

	if params.BIP0034Height > 0 && height >= uint32(params.BIP0034Height) && height < bip34ImpliesBIP30Limit { //nolint:gosec
		flags.EnforceBIP30 = false
	}

	return flags
}
