// Package utils holds small deterministic address-mapping helpers shared by
// the chain engine and the user-graph loaders.
package utils

import (
	"crypto/sha256"
	"encoding/binary"
)

// Address is a dense simulator address, an index into the user graph's
// node slice.
type Address = int

// ShardForAddress returns addr's home shard under the simulator's direct
// assignment rule: shard_id = addr mod numShards. Ported from
// original_source/fee-analysis/src/user_graph.rs::print_statistics, which
// computes "addr % SHARD_NUM" inline when reporting which shard an address
// belongs to; this is the same rule lifted into a named function so the
// rest of the module does not repeat the modulo.
func ShardForAddress(addr Address, numShards int) int {
	if numShards <= 0 {
		return 0
	}
	return addr % numShards
}

// IsCrossShard reports whether sender and recipient currently live on
// different shards.
func IsCrossShard(sender, recipient Address, numShards int) bool {
	if numShards <= 1 {
		return false
	}
	return ShardForAddress(sender, numShards) != ShardForAddress(recipient, numShards)
}

// FingerprintHexAddress returns a stable 64-bit fingerprint of a raw hex
// account address string, derived from a SHA-256 digest truncated to its
// first 8 bytes. It is never used to assign shard IDs or dense addresses —
// historical CSV ingestion assigns dense addresses by first-seen order, per
// original_source/fee-analysis/src/user_graph.rs::update_map_between_eth1_addr_and_shargrila_addr
// — but it gives the CSV ingester a cheap, collision-resistant way to log
// which raw address a dense ID came from without retaining the full string
// in memory for the lifetime of the run.
func FingerprintHexAddress(hexAddr string) uint64 {
	digest := sha256.Sum256([]byte(hexAddr))
	return binary.BigEndian.Uint64(digest[:8])
}
