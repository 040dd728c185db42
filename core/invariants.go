package core

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// CheckSingleOwnership verifies that every address owned by some shard (as
// a live account) is owned by exactly one shard, and is never simultaneously
// present as a moving account anywhere else. It returns the first violation
// found, or nil if the chain is consistent.
//
// A dense bitset is enough here because addresses are themselves dense
// integers in [0, addressSpace); this is a direct check, not a probabilistic
// one, so a Bloom filter would be the wrong tool even though it is the more
// common bitset.BitSet use case in the example corpus.
func CheckSingleOwnership(chain *ShardedBlockchain, addressSpace int) error {
	seen := bitset.New(uint(addressSpace))

	for _, shard := range chain.Shards {
		shard.mu.Lock()
		for addr := range shard.accounts {
			if addr < 0 || addr >= addressSpace {
				shard.mu.Unlock()
				return fmt.Errorf("core: address %d out of declared address space [0,%d)", addr, addressSpace)
			}
			idx := uint(addr)
			if seen.Test(idx) {
				shard.mu.Unlock()
				return fmt.Errorf("core: address %d owned by more than one shard", addr)
			}
			seen.Set(idx)
		}
		shard.mu.Unlock()
	}

	moving := bitset.New(uint(addressSpace))
	for _, shard := range chain.Shards {
		shard.mu.Lock()
		for addr := range shard.movingAccounts {
			idx := uint(addr)
			if seen.Test(idx) {
				shard.mu.Unlock()
				return fmt.Errorf("core: address %d is both live and mid-migration", addr)
			}
			if moving.Test(idx) {
				shard.mu.Unlock()
				return fmt.Errorf("core: address %d is mid-migration on more than one shard", addr)
			}
			moving.Set(idx)
		}
		shard.mu.Unlock()
	}

	return nil
}
