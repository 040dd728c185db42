// Definition of transaction

package core

import (
	"bytes"
	"encoding/gob"
	"log"

	"github.com/holiman/uint256"
)

// Transaction is an unsigned bundle of functions, executed in the order they
// appear; a function that fails does not undo the effects of the ones before
// it. Ported from original_source/chain/src/transaction.rs.
type Transaction struct {
	From Address
	To   Address

	ShardID   int
	Nonce     Nonce
	Functions []Function

	GasPremium *GasPrice
	FeeCap     *GasPrice
	GasLimit   *Gas

	Hash TxHash
}

// NewTransaction builds a transaction and derives its hash from
// (from, shard_id, nonce). GasLimit defaults to the maximum representable
// value, mirroring the original's Gas::MAX default — the simulator never
// enforces a per-transaction gas limit distinct from the block gas limit, so
// this is a vestigial field kept for shape-compatibility with
// original_source.
func NewTransaction(from, to Address, shardID int, functions []Function, gasPremium, feeCap *GasPrice, nonce Nonce) *Transaction {
	return &Transaction{
		From:       from,
		To:         to,
		ShardID:    shardID,
		Functions:  functions,
		GasPremium: gasPremium,
		FeeCap:     feeCap,
		GasLimit:   new(uint256.Int).SetAllOne(),
		Nonce:      nonce,
		Hash:       GenerateTransactionHash(from, shardID, nonce),
	}
}

// GenerateTransactionHash derives a 64-bit hash from (from, shard_id, nonce).
// Callers must guarantee that triple is unique; nothing here checks it.
//
// The algorithm is a u64 variant of sdbm, fed the little-endian byte
// encoding of the three fields in turn. This is not a cryptographic hash —
// it exists purely to give transactions a cheap, deterministic identity, so
// it is reproduced byte-for-byte from
// original_source/chain/src/transaction.rs rather than swapped for a
// library hash, which would change every hash value and break any test
// vector derived from the original.
func GenerateTransactionHash(from Address, shardID int, nonce Nonce) TxHash {
	var raw [24]byte
	convertBytes(uint64(from), raw[0:8])
	convertBytes(uint64(shardID), raw[8:16])
	convertBytes(nonce, raw[16:24])

	var hash uint64
	for _, b := range raw {
		next := uint64(b)
		next += hash << 6
		next += hash << 16
		next -= hash
		hash = next
	}
	return hash
}

// convertBytes writes x's little-endian byte representation into dst, which
// must have length 8.
func convertBytes(x uint64, dst []byte) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(x % 256)
		x /= 256
	}
}

// Equal reports whether two transactions share a hash. Mirrors the
// original's PartialEq impl, which compares hashes rather than full
// structural equality.
func (tx *Transaction) Equal(other *Transaction) bool {
	return tx.Hash == other.Hash
}

// Encode serializes the transaction for mempool persistence or cross-process
// transfer.
func (tx *Transaction) Encode() []byte {
	var buff bytes.Buffer
	enc := gob.NewEncoder(&buff)
	if err := enc.Encode(tx); err != nil {
		log.Panic(err)
	}
	return buff.Bytes()
}

// DecodeTx reverses Encode.
func DecodeTx(data []byte) *Transaction {
	var tx Transaction
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&tx); err != nil {
		log.Panic(err)
	}
	return &tx
}

// TotalGas sums the gas cost of every function in the transaction.
func (tx *Transaction) TotalGas() *Gas {
	total := new(uint256.Int)
	for _, f := range tx.Functions {
		total = new(uint256.Int).Add(total, f.Gas())
	}
	return total
}
