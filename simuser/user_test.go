package simuser

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/randsrc"
	"github.com/shargri-la/shargri-la/usergraph"
)

// buildTwoUserChain wires a minimal blockchain + graph with exactly one
// edge, 0 -> 1, so a switching strategy has exactly one candidate shard
// worth moving to (account 1's home shard).
func buildTwoUserChain(t *testing.T) (*core.ShardedBlockchain, *usergraph.Graph) {
	t.Helper()

	chain := core.NewShardedBlockchain()
	shardNum := len(chain.Shards)

	account0 := core.NewAccount(0, 0)
	chain.RegisterAddress(0, 0)
	chain.Shards[0].PutAccount(account0)

	account1 := core.NewAccount(1, 1)
	chain.RegisterAddress(1, 1)
	chain.Shards[1].PutAccount(account1)

	graph := usergraph.New()
	graph.Nodes = make([]usergraph.Node, 2)
	graph.Edges = make([]map[core.Address]*usergraph.Edge, shardNum)
	for i := range graph.Edges {
		graph.Edges[i] = make(map[core.Address]*usergraph.Edge)
	}
	graph.Edges[0][1] = &usergraph.Edge{
		From: 0, To: 1,
		FeeCap:                    uint256.NewInt(2_000_000_000),
		TransferProbabilityInSlot: 1.0,
	}

	return chain, graph
}

func TestPickLowFeeShardAndMovementCapNonSwitcherStaysPut(t *testing.T) {
	chain, graph := buildTwoUserChain(t)
	stream := randsrc.New(1)
	user := New(0, NonSwitcher, len(chain.Shards))

	shardID, feeCap := user.PickLowFeeShardAndMovementCap(chain, graph, stream)
	if shardID != 0 {
		t.Errorf("NonSwitcher shardID = %d, want 0 (stays on its own shard)", shardID)
	}
	if feeCap != nil {
		t.Errorf("NonSwitcher should never propose a migration, got feeCap = %v", feeCap)
	}
}

func TestPickLowFeeShardAndMovementCapMinimumPicksCheapestShard(t *testing.T) {
	chain, graph := buildTwoUserChain(t)
	stream := randsrc.New(1)
	user := New(0, Minimum, len(chain.Shards))

	shardID, feeCap := user.PickLowFeeShardAndMovementCap(chain, graph, stream)
	if shardID != 1 {
		t.Errorf("Minimum shardID = %d, want 1 (the shard its only counterparty lives on)", shardID)
	}
	if feeCap == nil || feeCap.Sign() <= 0 {
		t.Errorf("Minimum should propose a positive fee cap for the migration, got %v", feeCap)
	}
}

func TestPickLowFeeShardAndMovementCapWeightedRandomStaysInRange(t *testing.T) {
	chain, graph := buildTwoUserChain(t)
	stream := randsrc.New(1)
	user := New(0, WeightedRandom, len(chain.Shards))

	shardID, _ := user.PickLowFeeShardAndMovementCap(chain, graph, stream)
	if shardID < 0 || shardID >= len(chain.Shards) {
		t.Errorf("WeightedRandom shardID = %d, out of range [0, %d)", shardID, len(chain.Shards))
	}
}

func TestPickLowFeeShardAndMovementCapDecreasingMinimumStaysInRange(t *testing.T) {
	chain, graph := buildTwoUserChain(t)
	stream := randsrc.New(1)
	user := New(0, DecreasingMinimum, len(chain.Shards))

	shardID, _ := user.PickLowFeeShardAndMovementCap(chain, graph, stream)
	if shardID < 0 || shardID >= len(chain.Shards) {
		t.Errorf("DecreasingMinimum shardID = %d, out of range [0, %d)", shardID, len(chain.Shards))
	}
}

func TestSortAscendingOrdersByReductionThenShardID(t *testing.T) {
	entries := []reductionEntry{
		{reduction: uint256.NewInt(5), shardID: 2},
		{reduction: uint256.NewInt(5), shardID: 1},
		{reduction: uint256.NewInt(1), shardID: 9},
	}
	sortAscending(entries)

	want := []int{9, 1, 2}
	for i, w := range want {
		if entries[i].shardID != w {
			t.Errorf("position %d: shardID = %d, want %d", i, entries[i].shardID, w)
		}
	}
}

func BenchmarkPickLowFeeShardAndMovementCap(b *testing.B) {
	chain := core.NewShardedBlockchain()
	account0 := core.NewAccount(0, 0)
	chain.RegisterAddress(0, 0)
	chain.Shards[0].PutAccount(account0)
	account1 := core.NewAccount(1, 1)
	chain.RegisterAddress(1, 1)
	chain.Shards[1].PutAccount(account1)

	graph := usergraph.New()
	graph.Nodes = make([]usergraph.Node, 2)
	graph.Edges = make([]map[core.Address]*usergraph.Edge, len(chain.Shards))
	for i := range graph.Edges {
		graph.Edges[i] = make(map[core.Address]*usergraph.Edge)
	}
	graph.Edges[0][1] = &usergraph.Edge{From: 0, To: 1, FeeCap: uint256.NewInt(2_000_000_000), TransferProbabilityInSlot: 1.0}

	stream := randsrc.New(1)
	user := New(0, Minimum, len(chain.Shards))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		user.PickLowFeeShardAndMovementCap(chain, graph, stream)
	}
}
