// Package environment ties the sharded chain, the user graph, and the
// simulated users together: it deploys accounts, drives transaction
// generation each slot, and feeds the result into the chain engine.
package environment

import (
	"fmt"
	"log"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/crossshard"
	"github.com/shargri-la/shargri-la/fees/basefee"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/randsrc"
	"github.com/shargri-la/shargri-la/simuser"
	"github.com/shargri-la/shargri-la/usergraph"
	"github.com/shargri-la/shargri-la/usergraph/ingest"
)

// pendingTx pairs a transaction with the receipt it carries into the
// shard's mempool, if any.
type pendingTx struct {
	tx      *core.Transaction
	receipt *core.Receipt
}

// SetupOptions configures Environment.Setup, mirroring the CLI flags
// original_source/fee-analysis/src/main.rs passes to Environment::setup.
type SetupOptions struct {
	UserNum                       int
	PercentageOfMinimum           float64
	PercentageOfWeightedRandom    float64
	PercentageOfDecreasingMinimum float64
	PopularUserExists             bool
	PopularUserIsSwitcher         bool
	// BigQueryCSV, if non-empty, loads the user graph from a historical
	// Ethereum CSV export instead of generating one randomly.
	BigQueryCSV string
}

// Environment is the sharded chain plus the user graph and user population
// driving it. Ported from original_source/fee-analysis/src/environment.rs.
type Environment struct {
	Blockchain *core.ShardedBlockchain
	UserGraph  *usergraph.Graph
	Users      []*simuser.User

	// UserNumMem and MempoolTxMem record, per processed slot, a snapshot of
	// each shard's account count and mempool length — used only for
	// reporting, never read back by the simulation itself.
	UserNumMem   [][]int
	MempoolTxMem [][]int

	// Migrations tracks in-flight account moves for latency reporting; the
	// chain engine itself enforces correctness independently via
	// core.Shard's used_receipts guard.
	Migrations *crossshard.Ledger

	// BaseFees smooths the per-shard base-fee series for reporting; the
	// chain engine itself only ever reads the instantaneous value.
	BaseFees *basefee.Tracker

	stream *randsrc.Stream
}

// New returns an environment with a freshly allocated, empty chain.
func New(stream *randsrc.Stream) *Environment {
	return &Environment{
		Blockchain: core.NewShardedBlockchain(),
		UserGraph:  usergraph.New(),
		Migrations: crossshard.NewLedger(),
		BaseFees:   basefee.NewTracker(16),
		stream:     stream,
	}
}

// Setup builds the user graph (synthetic or from a historical CSV export),
// deploys one account per graph node, and assigns each user a strategy
// based on the requested strategy-population percentages. Ported from
// original_source/fee-analysis/src/environment.rs::setup.
func (e *Environment) Setup(opts SetupOptions) error {
	log.Println("environment: setup starting")

	if opts.BigQueryCSV != "" {
		graph, err := ingest.FromHistoricalCSV(opts.BigQueryCSV, opts.UserNum)
		if err != nil {
			return fmt.Errorf("environment: loading historical csv: %w", err)
		}
		e.UserGraph = graph
	} else {
		e.UserGraph = usergraph.NewRandomGraph(opts.UserNum, opts.PopularUserExists, opts.PopularUserIsSwitcher, e.stream)
	}

	shardNum := len(e.Blockchain.Shards)
	nodeCount := len(e.UserGraph.Nodes)

	for addr := 0; addr < nodeCount; addr++ {
		e.deployAccount(addr, shardNum)

		if opts.PopularUserExists && addr == params.PopularUserAddress {
			if opts.PopularUserIsSwitcher {
				e.Users = append(e.Users, simuser.New(addr, simuser.Minimum, shardNum))
			} else {
				e.Users = append(e.Users, simuser.New(addr, simuser.NonSwitcher, shardNum))
			}
			continue
		}

		fraction := float64(addr) / float64(nodeCount)
		switch {
		case fraction < opts.PercentageOfMinimum:
			e.Users = append(e.Users, simuser.New(addr, simuser.Minimum, shardNum))
		case fraction < opts.PercentageOfMinimum+opts.PercentageOfWeightedRandom:
			e.Users = append(e.Users, simuser.New(addr, simuser.WeightedRandom, shardNum))
		case fraction < opts.PercentageOfMinimum+opts.PercentageOfWeightedRandom+opts.PercentageOfDecreasingMinimum:
			e.Users = append(e.Users, simuser.New(addr, simuser.DecreasingMinimum, shardNum))
		default:
			e.Users = append(e.Users, simuser.New(addr, simuser.NonSwitcher, shardNum))
		}
	}

	log.Println("environment: setup complete")
	return nil
}

// deployAccount creates addr's account on its direct-modulo home shard and
// registers it in the global index.
func (e *Environment) deployAccount(addr core.Address, shardNum int) {
	shardID := addr % shardNum
	account := core.NewAccount(addr, shardID)
	e.Blockchain.AccountNum++
	e.Blockchain.RegisterAddress(addr, shardID)
	e.Blockchain.Shards[shardID].PutAccount(account)
}

// Process advances the simulation by exactly one slot: it generates every
// user's transactions for the slot, broadcasts them into the right shard
// mempools, closes the slot on the chain, and records statistics. Ported
// from original_source/fee-analysis/src/environment.rs::process.
func (e *Environment) Process() {
	transactions := e.generateTransactionsPerSlot()
	e.broadcastTransactionsPerSlot(transactions)
	e.Blockchain.ProcessSlots(e.Blockchain.Slot + 1)

	accountNum := make([]int, len(e.Blockchain.Shards))
	mempoolTxNum := make([]int, len(e.Blockchain.Shards))
	for i, shard := range e.Blockchain.Shards {
		accountNum[i] = shard.AccountsLen()
		mempoolTxNum[i] = shard.MempoolLen()
		e.BaseFees.OnBlockFinalized(shard.ID, shard.GetBaseFee())
	}
	e.UserNumMem = append(e.UserNumMem, accountNum)
	e.MempoolTxMem = append(e.MempoolTxMem, mempoolTxNum)

	e.printStatistics()
}

// printStatistics logs a compact per-shard summary, capped at the first ten
// shards, mirroring original_source/fee-analysis/src/environment.rs::print_statistics.
func (e *Environment) printStatistics() {
	debugShardNum := 10
	if debugShardNum > len(e.Blockchain.Shards) {
		debugShardNum = len(e.Blockchain.Shards)
	}

	mempool := make([]int, debugShardNum)
	gasUsed := make([]string, debugShardNum)
	active := make([]int, debugShardNum)
	switching := make([]int, debugShardNum)
	baseFeeGwei := make([]float64, debugShardNum)
	avgBaseFeeGwei := make([]float64, debugShardNum)

	for i := 0; i < debugShardNum; i++ {
		shard := e.Blockchain.Shards[i]
		mempool[i] = shard.MempoolLen()
		gasUsed[i] = shard.LastBlock().GasUsed.String()
		active[i] = shard.AccountsLen()
		switching[i] = shard.MovingAccountsLen()
		baseFee := new(big.Float).SetInt(shard.GetBaseFee().ToBig())
		gwei, _ := new(big.Float).Quo(baseFee, big.NewFloat(1_000_000_000)).Float64()
		baseFeeGwei[i] = gwei
		avgBaseFee := new(big.Float).SetInt(e.BaseFees.GetAvgBaseFee(shard.ID).ToBig())
		avgGwei, _ := new(big.Float).Quo(avgBaseFee, big.NewFloat(1_000_000_000)).Float64()
		avgBaseFeeGwei[i] = avgGwei
	}

	log.Printf("environment: mempool=%v gas_used=%v active_users=%v switching_users=%v base_fee_gwei=%v avg_base_fee_gwei=%v",
		mempool, gasUsed, active, switching, baseFeeGwei, avgBaseFeeGwei)
}

func (e *Environment) getUserNextShardIDsAndReduction() []nextShard {
	next := make([]nextShard, len(e.Users))
	for i, user := range e.Users {
		shardID, feeCap := user.PickLowFeeShardAndMovementCap(e.Blockchain, e.UserGraph, e.stream)
		next[i] = nextShard{shardID: shardID, feeCap: feeCap}
	}
	return next
}

type nextShard struct {
	shardID int
	feeCap  *core.GasPrice
}

func (e *Environment) determineFeeCap(from, to core.Address) *core.GasPrice {
	return e.UserGraph.GetEdge(from, to).FeeCap
}

func (e *Environment) broadcastTransactionsPerSlot(transactions []pendingTx) {
	for _, p := range transactions {
		e.Blockchain.Shards[p.tx.ShardID].PushTransaction(p.tx, p.receipt)
	}
}

// generateTransactionsPerSlot builds every transaction every user wants to
// submit this slot: pending sends unblocked by a just-confirmed
// predecessor, shard-migration transactions, and ordinary/cross-shard
// transfers. Ported from
// original_source/fee-analysis/src/environment.rs::generate_transactions_per_slot.
func (e *Environment) generateTransactionsPerSlot() []pendingTx {
	var transactions []pendingTx

	precomputed := e.getUserNextShardIDsAndReduction()

	for from, edges := range e.UserGraph.Edges {
		executedHashes := make(map[core.TxHash]struct{})
		type movedAccount struct {
			addr    core.Address
			shardID int
		}
		var moved []movedAccount

		for _, unconfirmed := range e.Users[from].UnconfirmedInShard {
			for _, entry := range unconfirmed {
				lastBlock := e.Blockchain.Shards[entry.Tx.ShardID].LastBlock()
				for _, executed := range lastBlock.ExecutedTransactions {
					if entry.Tx.Hash != executed.Hash {
						continue
					}
					executedHashes[entry.Tx.Hash] = struct{}{}
					if len(executed.Functions) > 0 && executed.Functions[0].FType == core.ApplyCrossTransferAll {
						moved = append(moved, movedAccount{addr: executed.From, shardID: executed.ShardID})
					}
				}
			}
		}

		for _, m := range moved {
			for _, shard := range e.Blockchain.Shards {
				shard.RemoveAccountIfNotOwner(m.addr, m.shardID)
			}
			e.Blockchain.UpdateAddrToShardID(m.addr)
			e.Migrations.SettleByAddr(m.addr, e.Blockchain.Slot)
		}

		for shardID := range e.Users[from].UnconfirmedInShard {
			kept := e.Users[from].UnconfirmedInShard[shardID][:0]
			for _, entry := range e.Users[from].UnconfirmedInShard[shardID] {
				if _, done := executedHashes[entry.Tx.Hash]; !done {
					kept = append(kept, entry)
				}
			}
			e.Users[from].UnconfirmedInShard[shardID] = kept
		}

		transactions = append(transactions, e.getPendingTransactionsPerSlot(from)...)
		transactions = append(transactions, e.generateMovementTransactionsPerSlot(from, precomputed)...)
		transactions = append(transactions, e.generateTransferTransactionsPerSlot(from, edges)...)
	}

	log.Printf("environment: transactions this slot: %d", len(transactions))
	return transactions
}

func (e *Environment) getPendingTransactionsPerSlot(from core.Address) []pendingTx {
	var transactions []pendingTx
	user := e.Users[from]

	for shardID := 0; shardID < len(e.Blockchain.Shards); shardID++ {
		if len(user.UnconfirmedInShard[shardID]) != 0 || len(user.UnsentInShard[shardID]) == 0 {
			continue
		}

		pending := user.UnsentInShard[shardID][0]

		if pending.Tx.FeeCap.Cmp(e.Blockchain.Shards[shardID].GetBaseFee()) <= 0 {
			continue
		}
		user.UnsentInShard[shardID] = user.UnsentInShard[shardID][1:]

		tx := pending.Tx
		tx.Nonce = user.NonceInShard[shardID]

		_, account := e.Blockchain.GetAccount(from)
		if account == nil {
			continue
		}
		receipt, ok := e.Blockchain.Shards[account.ShardID].GetReceipt(pending.PrevHash)
		if !ok || !receipt.Status {
			continue
		}

		transactions = append(transactions, pendingTx{tx: tx, receipt: receipt})
		user.UnconfirmedInShard[shardID] = append(user.UnconfirmedInShard[shardID], simuser.ConfirmedTx{
			Slot: e.Blockchain.Slot, Tx: tx, Receipt: receipt,
		})
		user.NonceInShard[shardID]++
	}
	return transactions
}

func (e *Environment) generateMovementTransactionsPerSlot(from core.Address, next []nextShard) []pendingTx {
	var transactions []pendingTx

	threshold := ^uint32(0) / uint32(params.AverageShardSwitchInterval)
	if e.stream.Uint32() > threshold || e.Blockchain.Slot <= core.Slot(params.InitialSetupSlots) {
		return transactions
	}

	shardF, ok := e.Blockchain.ShardIDOf(from)
	if !ok {
		return transactions
	}
	shardT := next[from].shardID
	feeCap := next[from].feeCap
	if feeCap == nil {
		return transactions
	}

	user := e.Users[from]
	if shardF == shardT ||
		len(user.UnconfirmedInShard[shardF]) != 0 ||
		len(user.UnconfirmedInShard[shardT]) != 0 {
		return transactions
	}

	if feeCap.Cmp(e.Blockchain.Shards[shardF].GetBaseFee()) <= 0 ||
		feeCap.Cmp(e.Blockchain.Shards[shardT].GetBaseFee()) <= 0 {
		return transactions
	}

	gasPremium := uint256.NewInt(uint64(params.DefaultGasPremium))
	nonce := user.NonceInShard[shardF]

	createTx := core.NewTransaction(from, from, shardF, []core.Function{{
		Source: from, Target: from, FType: core.CreateCrossTransferAll,
	}}, gasPremium, feeCap, nonce)

	transactions = append(transactions, pendingTx{tx: createTx, receipt: nil})
	user.UnconfirmedInShard[shardF] = append(user.UnconfirmedInShard[shardF], simuser.ConfirmedTx{
		Slot: e.Blockchain.Slot, Tx: createTx, Receipt: nil,
	})
	user.NonceInShard[shardF]++

	applyTx := core.NewTransaction(from, from, shardT, []core.Function{{
		Source: from, Target: from, FType: core.ApplyCrossTransferAll, Calldata: fmt.Sprint(shardF),
	}}, gasPremium, feeCap, params.DummyNonce)

	user.UnsentInShard[shardT] = append(user.UnsentInShard[shardT], simuser.PendingSend{
		Tx: applyTx, PrevHash: createTx.Hash,
	})

	if err := e.Migrations.Open(&crossshard.Migration{
		TxHash: createTx.Hash, Addr: from, ShardFrom: shardF, ShardTo: shardT, StartSlot: e.Blockchain.Slot,
	}); err != nil {
		log.Printf("environment: %v", err)
	}

	return transactions
}

func (e *Environment) generateTransferTransactionsPerSlot(from core.Address, edges map[core.Address]*usergraph.Edge) []pendingTx {
	var transactions []pendingTx

	shuffleTo := make([]core.Address, 0, len(edges))
	for to := range edges {
		shuffleTo = append(shuffleTo, to)
	}
	e.stream.Shuffle(len(shuffleTo), func(i, j int) { shuffleTo[i], shuffleTo[j] = shuffleTo[j], shuffleTo[i] })

	gasPremium := uint256.NewInt(uint64(params.DefaultGasPremium))
	user := e.Users[from]

	for _, to := range shuffleTo {
		edge := edges[to]

		p := float64(e.stream.Uint32()) / float64(^uint32(0))
		if p > edge.TransferProbabilityInSlot {
			continue
		}

		shardF, okF := e.Blockchain.ShardIDOf(from)
		shardT, okT := e.Blockchain.ShardIDOf(to)
		if !okF || !okT {
			continue
		}

		if len(user.UnconfirmedInShard[shardF]) != 0 || len(user.UnconfirmedInShard[shardT]) != 0 {
			continue
		}

		if shardF == shardT {
			feeCap := e.determineFeeCap(from, to)
			if feeCap.Cmp(e.Blockchain.Shards[shardF].GetBaseFee()) <= 0 {
				continue
			}
			nonce := user.NonceInShard[shardF]
			tx := core.NewTransaction(from, to, shardF, []core.Function{{
				Source: from, Target: to, FType: core.Transfer,
			}}, gasPremium, feeCap, nonce)

			transactions = append(transactions, pendingTx{tx: tx, receipt: nil})
			user.UnconfirmedInShard[shardF] = append(user.UnconfirmedInShard[shardF], simuser.ConfirmedTx{
				Slot: e.Blockchain.Slot, Tx: tx, Receipt: nil,
			})
			user.NonceInShard[shardF]++
			continue
		}

		baseFeeCap := e.determineFeeCap(from, to)
		numerator := new(uint256.Int).Mul(baseFeeCap, uint256.NewInt(uint64(params.GasTransfer)))
		denom := uint256.NewInt(uint64(params.GasCreateCrossTransfer + params.GasApplyCrossTransfer))
		feeCap := new(uint256.Int).Div(numerator, denom)

		if feeCap.Cmp(e.Blockchain.Shards[shardF].GetBaseFee()) <= 0 ||
			feeCap.Cmp(e.Blockchain.Shards[shardT].GetBaseFee()) <= 0 {
			continue
		}

		nonce := user.NonceInShard[shardF]
		createTx := core.NewTransaction(from, to, shardF, []core.Function{{
			Source: from, Target: from, FType: core.CreateCrossTransfer,
		}}, gasPremium, feeCap, nonce)

		transactions = append(transactions, pendingTx{tx: createTx, receipt: nil})
		user.UnconfirmedInShard[shardF] = append(user.UnconfirmedInShard[shardF], simuser.ConfirmedTx{
			Slot: e.Blockchain.Slot, Tx: createTx, Receipt: nil,
		})
		user.NonceInShard[shardF]++

		applyTx := core.NewTransaction(from, to, shardT, []core.Function{{
			Source: from, Target: to, FType: core.ApplyCrossTransfer,
		}}, gasPremium, feeCap, params.DummyNonce)

		user.UnsentInShard[shardT] = append(user.UnsentInShard[shardT], simuser.PendingSend{
			Tx: applyTx, PrevHash: createTx.Hash,
		})
	}

	return transactions
}
