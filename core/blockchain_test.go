package core

import (
	"testing"

	"github.com/shargri-la/shargri-la/params"
)

func TestNewShardedBlockchainAllocatesEveryShard(t *testing.T) {
	b := NewShardedBlockchain()
	if len(b.Shards) != params.ShardNum {
		t.Fatalf("len(Shards) = %d, want %d", len(b.Shards), params.ShardNum)
	}
	for i, shard := range b.Shards {
		if shard.ID != i {
			t.Errorf("Shards[%d].ID = %d, want %d", i, shard.ID, i)
		}
	}
	if b.Slot != genesisSlot || b.Epoch != genesisEpoch {
		t.Errorf("genesis Slot/Epoch = %d/%d, want %d/%d", b.Slot, b.Epoch, genesisSlot, genesisEpoch)
	}
}

func TestRegisterAddressAndShardIDOf(t *testing.T) {
	b := NewShardedBlockchain()
	b.RegisterAddress(5, 3)

	id, ok := b.ShardIDOf(5)
	if !ok {
		t.Fatalf("ShardIDOf(5) ok = false, want true")
	}
	if id != 3 {
		t.Errorf("ShardIDOf(5) = %d, want 3", id)
	}

	if _, ok := b.ShardIDOf(999); ok {
		t.Errorf("ShardIDOf(999) ok = true, want false for an unregistered address")
	}
}

func TestProcessSlotsAdvancesSlotAndEpoch(t *testing.T) {
	b := NewShardedBlockchain()
	target := Slot(params.SlotsPerEpoch)
	b.ProcessSlots(target)

	if b.Slot != target {
		t.Errorf("Slot = %d, want %d", b.Slot, target)
	}
	if b.Epoch != 1 {
		t.Errorf("Epoch = %d, want 1 after crossing a full epoch boundary", b.Epoch)
	}
}

func TestProcessSlotsPanicsGoingBackward(t *testing.T) {
	b := NewShardedBlockchain()
	b.ProcessSlots(5)

	defer func() {
		if recover() == nil {
			t.Errorf("ProcessSlots to an earlier slot should panic")
		}
	}()
	b.ProcessSlots(2)
}

func TestGetAccountReturnsLiveAccount(t *testing.T) {
	b := NewShardedBlockchain()
	a := NewAccount(1, 0)
	b.Shards[0].PutAccount(a)
	b.RegisterAddress(1, 0)

	live, got := b.GetAccount(1)
	if !live {
		t.Errorf("GetAccount(1) live = false, want true")
	}
	if got.Addr != 1 {
		t.Errorf("GetAccount(1).Addr = %d, want 1", got.Addr)
	}
}

func TestGetAccountPanicsForUnindexedAddress(t *testing.T) {
	b := NewShardedBlockchain()
	defer func() {
		if recover() == nil {
			t.Errorf("GetAccount on an unindexed address should panic")
		}
	}()
	b.GetAccount(123)
}

func TestUpdateAddrToShardIDFindsMovedAccount(t *testing.T) {
	b := NewShardedBlockchain()
	a := NewAccount(1, 0)
	b.Shards[0].PutAccount(a)
	b.RegisterAddress(1, 0)

	// Simulate the account having migrated out of shard 0's live table and
	// into shard 1's live table without updating the global index.
	b.Shards[0].RemoveAccount(1)
	moved := *a
	moved.ShardID = 1
	b.Shards[1].PutAccount(&moved)

	b.UpdateAddrToShardID(1)

	id, ok := b.ShardIDOf(1)
	if !ok || id != 1 {
		t.Errorf("ShardIDOf(1) = %d, %v, want 1, true after UpdateAddrToShardID", id, ok)
	}
}

func BenchmarkProcessSlot(b *testing.B) {
	chain := NewShardedBlockchain()
	bench := b
	bench.ResetTimer()
	for i := 0; i < bench.N; i++ {
		chain.ProcessSlot()
	}
}
