package core

import (
	"sync"

	"github.com/shargri-la/shargri-la/params"
)

// ShardedBlockchain owns every shard and the global address-to-shard index.
// Ported from original_source/chain/src/sharded_blockchain.rs.
type ShardedBlockchain struct {
	mu sync.Mutex

	Slot  Slot
	Epoch Epoch

	Shards []*Shard

	addrToShardID map[Address]int

	// AccountNum is kept for statistics only; it is never read by the chain
	// engine itself.
	AccountNum int
}

const genesisSlot Slot = 0
const genesisEpoch Epoch = 0

// NewShardedBlockchain allocates params.ShardNum shards, each starting at
// the genesis base fee.
func NewShardedBlockchain() *ShardedBlockchain {
	shards := make([]*Shard, params.ShardNum)
	for i := range shards {
		shards[i] = NewShard(i)
	}
	return &ShardedBlockchain{
		Slot:          genesisSlot,
		Epoch:         genesisEpoch,
		Shards:        shards,
		addrToShardID: make(map[Address]int),
	}
}

// ProcessSlots advances the chain up to (but not including) slot, closing
// every slot along the way and rolling the epoch counter at epoch
// boundaries.
func (b *ShardedBlockchain) ProcessSlots(slot Slot) {
	b.mu.Lock()
	current := b.Slot
	b.mu.Unlock()

	if current > slot {
		panic("core: cannot process slots backward")
	}

	for current < slot {
		b.ProcessSlot()
		b.mu.Lock()
		current = b.Slot
		if (current+1)%uint64(params.SlotsPerEpoch) == 0 {
			b.Epoch++
		}
		b.Slot++
		current = b.Slot
		b.mu.Unlock()
	}
}

// ProcessSlot closes the current slot on every shard concurrently. Shards
// are fully independent during block production — they only interact
// through receipts carried by transactions the caller submits — so fanning
// the work out across goroutines is safe and keeps wall-clock time flat as
// params.ShardNum grows.
func (b *ShardedBlockchain) ProcessSlot() {
	var wg sync.WaitGroup
	for _, shard := range b.Shards {
		shard := shard
		wg.Add(1)
		go func() {
			defer wg.Done()
			shard.ProcessSlot()
		}()
	}
	wg.Wait()
}

// RegisterAddress assigns addr to shardID in the global index. Used at
// genesis setup, when the caller already knows which shard will own the
// address.
func (b *ShardedBlockchain) RegisterAddress(addr Address, shardID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrToShardID[addr] = shardID
}

// ShardIDOf returns the shard the global index currently believes owns
// addr.
func (b *ShardedBlockchain) ShardIDOf(addr Address) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.addrToShardID[addr]
	return id, ok
}

// UpdateAddrToShardID refreshes the index entry for addr if it has moved:
// if the shard the index currently points to no longer holds the account
// (live or moving), every shard is scanned to find its new home. Ported from
// original_source/chain/src/sharded_blockchain.rs::update_addr_to_shard_id.
func (b *ShardedBlockchain) UpdateAddrToShardID(addr Address) {
	b.mu.Lock()
	shardID, ok := b.addrToShardID[addr]
	b.mu.Unlock()
	if !ok {
		panic(ErrAddressUnindexed)
	}

	shard := b.Shards[shardID]
	if _, ok := shard.GetAccount(addr); ok {
		return
	}
	if _, ok := shard.GetMovingAccount(addr); ok {
		return
	}

	for _, s := range b.Shards {
		if _, ok := s.GetAccount(addr); ok {
			b.mu.Lock()
			b.addrToShardID[addr] = s.ID
			b.mu.Unlock()
			return
		}
		if _, ok := s.GetMovingAccount(addr); ok {
			b.mu.Lock()
			b.addrToShardID[addr] = s.ID
			b.mu.Unlock()
			return
		}
	}
}

// GetAccount returns the account at addr and whether it is currently live
// (true) or mid-migration (false). Panics if addr is unindexed or the index
// points nowhere useful, mirroring the reference implementation's
// .expect()/unreachable! pair.
func (b *ShardedBlockchain) GetAccount(addr Address) (bool, *Account) {
	b.mu.Lock()
	shardID, ok := b.addrToShardID[addr]
	b.mu.Unlock()
	if !ok {
		panic(ErrAddressUnindexed)
	}

	shard := b.Shards[shardID]
	if account, ok := shard.GetAccount(addr); ok {
		return true, account
	}
	if account, ok := shard.GetMovingAccount(addr); ok {
		return false, account
	}
	panic(ErrAccountNotFound)
}
