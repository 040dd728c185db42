// Package core implements the per-shard chain engine: the function/transaction
// model, receipts, shard state, the mempool, and slot processing.
package core

import "github.com/holiman/uint256"

// Address is a dense integer identifier in [0, N), per the spec's usize
// address space — distinct from the teacher's hex-string Address, which
// models real Ethereum accounts and needs hashing to land on a shard; this
// simulator's addresses are already dense integers, so shard assignment is a
// direct modulo (see utils.ShardForAddress).
type Address = int

// Slot and Epoch are logical tick counters; there is no wall clock.
type Slot = uint64
type Epoch = uint64

// Nonce gates transaction execution per address per shard.
type Nonce = uint64

// TxHash is the sdbm-style 64-bit transaction hash (see Transaction.Hash).
type TxHash = uint64

// Wei, Gas and GasPrice stand in for the spec's u128: fixed-width 256-bit
// integers (wider than strictly required, but the narrowest fixed-width type
// with ecosystem support) so that the base-fee controller's floor-division
// order is exact and does not silently overflow a machine word.
type Wei = uint256.Int
type Gas = uint256.Int
type GasPrice = uint256.Int
