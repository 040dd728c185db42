// Package ingest loads a synthetic user graph from historical Ethereum
// transaction logs exported from BigQuery's public dataset, in the same CSV
// shape the teacher's ethcsv package parses.
package ingest

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/usergraph"
	"github.com/shargri-la/shargri-la/utils"
)

// columns gives the BigQuery Ethereum export's header names this loader
// actually reads; every other column in the export is ignored. Matches
// original_source/fee-analysis/src/transaction_record.rs::TransactionRecord.
const (
	colNonce         = "nonce"
	colFromAddress   = "from_address"
	colToAddress     = "to_address"
	colGasPrice      = "gas_price"
	colReceiptStatus = "receipt_status"
	colBlockNumber   = "block_number"
)

type aggregatedEdge struct {
	from, to core.Address
	count    uint64
	gasPrice uint64
}

// FromHistoricalCSV builds a Graph from a BigQuery Ethereum CSV export at
// path, interning raw hex addresses into dense simulator addresses in
// first-seen order. It stops reading at the first successful row seen after
// at least userNum distinct addresses have been assigned; the row that
// crosses the limit interns both of its addresses, so the graph can hold
// userNum+1 nodes. Ported from
// original_source/fee-analysis/src/user_graph.rs::new_from_eth1_data.
func FromHistoricalCSV(path string, userNum int) (*usergraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ingest: opening %q", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "ingest: reading header row")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	eth1ToAddr := make(map[string]core.Address)
	addrToEth1 := make(map[core.Address]string)
	edges := make(map[[2]core.Address]*aggregatedEdge)

	blockNumbers := make(map[uint64]struct{})
	var numberOfTransactions uint64

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "ingest: reading row")
		}

		status, err := strconv.ParseUint(record[col[colReceiptStatus]], 10, 64)
		if err != nil {
			continue
		}
		if status == 0 {
			continue
		}

		if len(eth1ToAddr) >= userNum {
			break
		}

		fromHex := record[col[colFromAddress]]
		toHex := record[col[colToAddress]]

		internAddress(fromHex, eth1ToAddr, addrToEth1)
		internAddress(toHex, eth1ToAddr, addrToEth1)

		blockNum, err := strconv.ParseUint(record[col[colBlockNumber]], 10, 64)
		if err == nil {
			blockNumbers[blockNum] = struct{}{}
		}

		gasPrice, err := strconv.ParseUint(record[col[colGasPrice]], 10, 64)
		if err != nil {
			gasPrice = 0
		}

		from := eth1ToAddr[fromHex]
		to := eth1ToAddr[toHex]

		key := [2]core.Address{from, to}
		edge, ok := edges[key]
		if !ok {
			edge = &aggregatedEdge{from: from, to: to}
			edges[key] = edge
		}
		edge.count++
		edge.gasPrice += gasPrice

		numberOfTransactions++
	}

	g := usergraph.New()
	currentUserNum := len(eth1ToAddr)
	g.Nodes = make([]usergraph.Node, currentUserNum)
	for addr := 0; addr < currentUserNum; addr++ {
		g.Nodes[addr] = usergraph.Node{AccountAddr: addr}
	}
	g.Edges = make([]map[core.Address]*usergraph.Edge, currentUserNum)
	for i := range g.Edges {
		g.Edges[i] = make(map[core.Address]*usergraph.Edge)
	}

	if numberOfTransactions == 0 {
		return g, nil
	}

	for _, edge := range edges {
		avgGasPrice := edge.gasPrice / edge.count
		transactionRatio := float64(edge.count) / float64(numberOfTransactions)
		probability := transactionRatio * params.GlobalTransactionNum

		g.Edges[edge.from][edge.to] = &usergraph.Edge{
			From:                      edge.from,
			To:                        edge.to,
			FeeCap:                    uint256.NewInt(avgGasPrice),
			TransferProbabilityInSlot: probability,
		}
		g.Nodes[edge.from].OutDegree++
		g.Nodes[edge.to].InDegree++
	}

	logStatistics(g, numberOfTransactions, len(blockNumbers), addrToEth1)
	return g, nil
}

func internAddress(eth1Addr string, eth1ToAddr map[string]core.Address, addrToEth1 map[core.Address]string) {
	if _, ok := eth1ToAddr[eth1Addr]; ok {
		return
	}
	next := core.Address(len(eth1ToAddr))
	eth1ToAddr[eth1Addr] = next
	addrToEth1[next] = eth1Addr
}

// logStatistics prints the same summary the reference implementation prints
// to stdout after ingestion: account/transaction/block counts plus the
// top-5 addresses by in- and out-degree. FingerprintHexAddress stands in for
// printing the raw ETH1 hex string, so logs never retain full third-party
// addresses longer than needed to print them once.
type rankedAddr struct {
	addr   core.Address
	degree int
}

func logStatistics(g *usergraph.Graph, numberOfTransactions uint64, blockCount int, addrToEth1 map[core.Address]string) {
	log.Printf("ingest: accounts=%d transactions=%d blocks=%d", len(g.Nodes), numberOfTransactions, blockCount)

	byOut := make([]rankedAddr, len(g.Nodes))
	byIn := make([]rankedAddr, len(g.Nodes))
	for i, n := range g.Nodes {
		byOut[i] = rankedAddr{addr: n.AccountAddr, degree: n.OutDegree}
		byIn[i] = rankedAddr{addr: n.AccountAddr, degree: n.InDegree}
	}
	sortDescending(byOut)
	sortDescending(byIn)

	top := 5
	if len(byOut) < top {
		top = len(byOut)
	}
	for i := 0; i < top; i++ {
		r := byOut[i]
		log.Printf("ingest: out-degree rank %d addr=%d eth1=0x%x degree=%d shard=%d",
			i, r.addr, utils.FingerprintHexAddress(addrToEth1[r.addr]), r.degree, utils.ShardForAddress(r.addr, params.ShardNum))
	}
	for i := 0; i < top; i++ {
		r := byIn[i]
		log.Printf("ingest: in-degree rank %d addr=%d eth1=0x%x degree=%d shard=%d",
			i, r.addr, utils.FingerprintHexAddress(addrToEth1[r.addr]), r.degree, utils.ShardForAddress(r.addr, params.ShardNum))
	}
}

func sortDescending(rs []rankedAddr) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].degree > rs[j-1].degree; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}
