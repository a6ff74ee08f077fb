package model

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
	"github.com/bsv-blockchain/go-wire"
)

// initialSubsidy is 50 BTC in satoshis
const initialSubsidy uint64 = 50 * 100_000_000

type Block struct {
	Header       *BlockHeader
	Transactions []*bt.Tx

	// local
	hash *chainhash.Hash
}

func NewBlock(header *BlockHeader, txs []*bt.Tx) *Block {
	return &Block{
		Header:       header,
		Transactions: txs,
	}
}

func NewBlockFromBytes(blockBytes []byte) (*Block, error) {
	return NewBlockFromReader(bytes.NewReader(blockBytes))
}

// NewBlockFromReader reads a block in wire form: the 80 byte header, the transaction count as a
// varint and then the transactions.
func NewBlockFromReader(r io.Reader) (*Block, error) {
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReaderSize(r, 1024*1024)
	}

	headerBytes := make([]byte, BlockHeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.NewBlockInvalidError("error reading block header", err)
	}

	header, err := NewBlockHeaderFromBytes(headerBytes)
	if err != nil {
		return nil, err
	}

	txCount, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, errors.NewBlockInvalidError("error reading transaction count", err)
	}

	block := &Block{
		Header:       header,
		Transactions: make([]*bt.Tx, 0, min(txCount, 1_000_000)),
	}

	for i := uint64(0); i < txCount; i++ {
		tx := bt.NewTx()
		if _, err = tx.ReadFrom(r); err != nil {
			return nil, errors.NewBlockInvalidError("error reading transaction %d of %d", i, txCount, err)
		}

		block.Transactions = append(block.Transactions, tx)
	}

	return block, nil
}

func (b *Block) Hash() *chainhash.Hash {
	if b.hash != nil {
		return b.hash
	}

	b.hash = b.Header.Hash()

	return b.hash
}

func (b *Block) String() string {
	return b.Hash().String()
}

// CoinbaseTx returns the first transaction when it is a coinbase, nil otherwise.
func (b *Block) CoinbaseTx() *bt.Tx {
	if len(b.Transactions) == 0 || !b.Transactions[0].IsCoinbase() {
		return nil
	}

	return b.Transactions[0]
}

func (b *Block) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(b.Header.Bytes())

	if err := wire.WriteVarInt(buf, 0, uint64(len(b.Transactions))); err != nil {
		return nil, errors.NewProcessingError("error writing transaction count", err)
	}

	for _, tx := range b.Transactions {
		if _, err := buf.Write(tx.Bytes()); err != nil {
			return nil, errors.NewProcessingError("error writing transaction %s", tx.TxID(), err)
		}
	}

	return buf.Bytes(), nil
}

// ExtractCoinbaseHeight attempts to extract the height of the block from the
// scriptSig of a coinbase transaction.  Coinbase's heights are only present in
// blocks of version 2 or later.  This was added as part of BIP0034.
func (b *Block) ExtractCoinbaseHeight() (uint32, error) {
	coinbase := b.CoinbaseTx()
	if coinbase == nil {
		return 0, errors.NewBlockCoinbaseInvalidError("block %s has no coinbase", b.Hash())
	}

	if len(coinbase.Inputs) != 1 || coinbase.Inputs[0].UnlockingScript == nil {
		return 0, errors.NewBlockCoinbaseInvalidError("coinbase of block %s must have exactly one input", b.Hash())
	}

	sigScript := *coinbase.Inputs[0].UnlockingScript
	if len(sigScript) < 1 {
		return 0, errors.NewBlockCoinbaseInvalidError("the coinbase signature script must start with the length of the serialized block height")
	}

	// Detect the case when the block height is a small integer encoded with
	// as single byte.
	opcode := sigScript[0]
	if opcode == bscript.Op0 {
		return 0, nil
	}

	if opcode >= bscript.Op1 && opcode <= bscript.Op16 {
		return uint32(opcode - (bscript.Op1 - 1)), nil
	}

	// Otherwise, the opcode is the length of the following bytes which
	// encode in the block height.
	serializedLen := int(sigScript[0])
	if serializedLen > 8 || len(sigScript[1:]) < serializedLen {
		return 0, errors.NewBlockCoinbaseInvalidError("the coinbase signature script must start with the serialized block height")
	}

	serializedHeightBytes := make([]byte, 8)
	copy(serializedHeightBytes, sigScript[1:serializedLen+1])
	serializedHeight := binary.LittleEndian.Uint64(serializedHeightBytes)

	return uint32(serializedHeight), nil //nolint:gosec
}

// GetBlockSubsidyForHeight returns the coinbase subsidy at height: 50 BTC, halved every
// SubsidyReductionInterval blocks and zero after 64 halvings.
func GetBlockSubsidyForHeight(height uint32, params *chaincfg.Params) uint64 {
	if params == nil || params.SubsidyReductionInterval <= 0 {
		return initialSubsidy
	}

	halvings := height / uint32(params.SubsidyReductionInterval) //nolint:gosec
	if halvings >= 64 {
		return 0
	}

	return initialSubsidy >> halvings
}
