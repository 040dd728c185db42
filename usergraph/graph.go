// Package usergraph builds the weighted transfer graph that drives a
// simulation run, either synthetically or from historical CSV data.
package usergraph

import (
	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/randsrc"
)

// Edge is a directed, weighted transfer relationship between two addresses.
// Ported from original_source/fee-analysis/src/user_graph.rs::UserGraphEdge.
type Edge struct {
	From                      core.Address
	To                        core.Address
	FeeCap                    *core.GasPrice
	TransferProbabilityInSlot float64
}

// Node tracks per-address degree statistics, used only for reporting.
type Node struct {
	AccountAddr core.Address
	InDegree    int
	OutDegree   int
}

// Graph is the full set of nodes and directed edges the simulation draws
// transfers from. Ported from
// original_source/fee-analysis/src/user_graph.rs::UserGraph.
type Graph struct {
	Nodes []Node
	Edges []map[core.Address]*Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// GetEdge returns the edge (from, to). Panics if it does not exist, mirroring
// the reference implementation's unreachable! on a missing edge — callers
// are expected to only query edges they know were constructed.
func (g *Graph) GetEdge(from, to core.Address) *Edge {
	edge, ok := g.Edges[from][to]
	if !ok {
		panic("usergraph: no such edge")
	}
	return edge
}

// NewRandomGraph generates a synthetic transfer graph over userNum
// addresses. Each address draws a random number of outgoing edges (capped at
// params.MaxTargetUserNum), optionally biased to target a single "popular"
// address, and the resulting probabilities are normalized so the expected
// total transaction volume across the whole graph matches
// params.GlobalTransactionNum. Ported from
// original_source/fee-analysis/src/user_graph.rs::new_random.
func NewRandomGraph(userNum int, popularUserExists, popularUserIsSwitcher bool, stream *randsrc.Stream) *Graph {
	g := New()
	maxTargetUserNum := params.MaxTargetUserNum
	if userNum < maxTargetUserNum {
		maxTargetUserNum = userNum
	}

	g.Nodes = make([]Node, userNum)
	for addr := 0; addr < userNum; addr++ {
		g.Nodes[addr] = Node{AccountAddr: addr}
	}
	g.Edges = make([]map[core.Address]*Edge, userNum)
	for i := range g.Edges {
		g.Edges[i] = make(map[core.Address]*Edge)
	}

	var numberOfTransactions uint64

	for from := 0; from < userNum; from++ {
		targetUserNum := int(stream.Uint32()) % (maxTargetUserNum + 1)

		transferToPopularUser := false
		if popularUserExists {
			if popularUserIsSwitcher && from == params.PopularUserAddress {
				transferToPopularUser = true
			} else {
				threshold := uint32(params.PercentageUsersTransferringToPopularUser * float64(^uint32(0)))
				if stream.Uint32() < threshold {
					transferToPopularUser = true
				}
			}
		}

		for i := 0; i < targetUserNum; i++ {
			var to int
			if i == 0 && transferToPopularUser {
				to = params.PopularUserAddress
			} else {
				to = int(stream.Uint32()) % userNum
			}
			if from == to {
				continue
			}

			yetNormalized := stream.Uint32() % 100
			feeCapRaw := stream.Uint64() % uint64(params.MaxFeeCap)
			feeCap := uint256.NewInt(feeCapRaw)

			if old, exists := g.Edges[from][to]; exists {
				// A repeated target replaces the earlier edge, so its weight
				// leaves the total and the degrees are not counted twice.
				numberOfTransactions -= uint64(old.TransferProbabilityInSlot)
			} else {
				g.Nodes[from].OutDegree++
				g.Nodes[to].InDegree++
			}
			g.Edges[from][to] = &Edge{
				From:                      from,
				To:                        to,
				FeeCap:                    feeCap,
				TransferProbabilityInSlot: float64(yetNormalized),
			}
			numberOfTransactions += uint64(yetNormalized)
		}
	}

	if numberOfTransactions == 0 {
		return g
	}
	for _, edges := range g.Edges {
		for _, edge := range edges {
			edge.TransferProbabilityInSlot = edge.TransferProbabilityInSlot / float64(numberOfTransactions) * params.GlobalTransactionNum
		}
	}
	return g
}
