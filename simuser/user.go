// Package simuser implements simulated chain users: their accounts, their
// per-shard transaction queues, and the shard-switching strategies that
// decide when a user should migrate to chase a lower fee.
package simuser

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/core"
	"github.com/shargri-la/shargri-la/params"
	"github.com/shargri-la/shargri-la/randsrc"
	"github.com/shargri-la/shargri-la/usergraph"
)

// PendingSend is a transaction queued to be submitted once the user's
// previously sent create transaction on another shard (identified by
// PrevHash) has confirmed with a successful receipt.
type PendingSend struct {
	Tx       *core.Transaction
	PrevHash core.TxHash
}

// ConfirmedTx pairs a transaction+receipt the user is waiting to see
// executed with the slot it was submitted in.
type ConfirmedTx struct {
	Slot    core.Slot
	Tx      *core.Transaction
	Receipt *core.Receipt
}

// User owns exactly one account and decides, each slot, whether to migrate
// it to a cheaper shard. Ported from original_source/fee-analysis/src/user.rs.
type User struct {
	AccountAddr core.Address
	UserType    StrategyType

	// UnconfirmedInShard holds, per shard, the transactions this user has
	// submitted but not yet seen confirmed on-chain.
	UnconfirmedInShard [][]ConfirmedTx
	// UnsentInShard holds, per shard, transactions waiting for their
	// predecessor to confirm before they can be sent.
	UnsentInShard [][]PendingSend
	// NonceInShard is this user's next nonce to use on each shard.
	NonceInShard []core.Nonce
}

// New returns a user controlling one account, with empty per-shard queues.
func New(accountAddr core.Address, userType StrategyType, shardNum int) *User {
	return &User{
		AccountAddr:        accountAddr,
		UserType:           userType,
		UnconfirmedInShard: make([][]ConfirmedTx, shardNum),
		UnsentInShard:      make([][]PendingSend, shardNum),
		NonceInShard:       make([]core.Nonce, shardNum),
	}
}

// reductionEntry pairs a candidate shard with the Wei-denominated fee
// reduction switching to it would yield, relative to staying put.
type reductionEntry struct {
	reduction *uint256.Int
	shardID   int
}

// weiFromFloat multiplies gas (an exact integer, carried into a big.Float
// with at least 64 bits of precision) by a probability/fee float and
// truncates back to an integer Wei amount, mirroring the reference
// implementation's "(probability * (gas * price) as f64) as Wei" cast chain.
func weiFromFloat(gas *core.Gas, probability float64) *uint256.Int {
	gasFloat := new(big.Float).SetInt(gas.ToBig())
	product := new(big.Float).Mul(gasFloat, big.NewFloat(probability))
	result, _ := product.Int(nil)
	if result.Sign() < 0 {
		result.SetInt64(0)
	}
	out, overflow := uint256.FromBig(result)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return out
}

// PickLowFeeShardAndMovementCap estimates which shard offers the cheapest
// expected fees for this user's transfer pattern and, for switcher
// strategies, decides whether the reduction is worth a migration. Returns
// the chosen shard ID and, when a migration is proposed, the fee cap the
// CreateCrossTransferAll/ApplyCrossTransferAll pair should bid. Ported from
// original_source/fee-analysis/src/user.rs::pick_low_fee_shard_id_and_movement_fee_cap.
func (u *User) PickLowFeeShardAndMovementCap(chain *core.ShardedBlockchain, graph *usergraph.Graph, stream *randsrc.Stream) (int, *core.GasPrice) {
	_, account := chain.GetAccount(u.AccountAddr)

	shardNum := len(chain.Shards)
	expectedFeesPerSlot := make([]*uint256.Int, shardNum)

	gasTransfer := uint256.NewInt(uint64(params.GasTransfer))
	gasCreateCrossTransfer := uint256.NewInt(uint64(params.GasCreateCrossTransfer))
	gasApplyCrossTransfer := uint256.NewInt(uint64(params.GasApplyCrossTransfer))
	gasCreateCrossTransferAll := uint256.NewInt(uint64(params.GasCreateCrossTransferAll))
	gasApplyCrossTransferAll := uint256.NewInt(uint64(params.GasApplyCrossTransferAll))

	for shardIDF := 0; shardIDF < shardNum; shardIDF++ {
		expectedFee := new(uint256.Int)

		for to, edge := range graph.Edges[u.AccountAddr] {
			_, accountT := safeGetAccount(chain, to)
			if accountT == nil {
				continue
			}
			shardIDT := accountT.ShardID

			var gasPriceF, gasPriceT *core.GasPrice
			if chain.Slot < core.Slot(params.InitialSetupSlots) {
				gasPriceF = edge.FeeCap
				gasPriceT = edge.FeeCap
			} else {
				gasPriceF = chain.Shards[shardIDF].GetBaseFee()
				gasPriceT = chain.Shards[shardIDT].GetBaseFee()
			}

			var fee *uint256.Int
			if shardIDF == shardIDT {
				gas := new(uint256.Int).Mul(gasTransfer, gasPriceF)
				fee = weiFromFloat(gas, edge.TransferProbabilityInSlot)
			} else {
				crossGas := new(uint256.Int).Mul(gasApplyCrossTransfer, gasPriceF)
				crossGas = new(uint256.Int).Add(crossGas, new(uint256.Int).Mul(gasCreateCrossTransfer, gasPriceT))
				fee = weiFromFloat(crossGas, edge.TransferProbabilityInSlot)
			}

			expectedFee = new(uint256.Int).Add(expectedFee, fee)
		}

		expectedFee = new(uint256.Int).Mul(expectedFee, uint256.NewInt(uint64(params.AverageShardSwitchInterval)))

		if account.ShardID != shardIDF {
			gasPriceF := chain.Shards[account.ShardID].GetBaseFee()
			gasPriceT := chain.Shards[shardIDF].GetBaseFee()
			migrationFee := new(uint256.Int).Mul(gasCreateCrossTransferAll, gasPriceF)
			migrationFee = new(uint256.Int).Add(migrationFee, new(uint256.Int).Mul(gasApplyCrossTransferAll, gasPriceT))
			expectedFee = new(uint256.Int).Add(expectedFee, migrationFee)
		}

		expectedFeesPerSlot[shardIDF] = expectedFee
	}

	var candidates []reductionEntry
	baseline := expectedFeesPerSlot[account.ShardID]
	for shardID, fee := range expectedFeesPerSlot {
		if baseline.Cmp(fee) < 0 {
			continue
		}
		reduction := new(uint256.Int).Sub(baseline, fee)
		candidates = append(candidates, reductionEntry{reduction: reduction, shardID: shardID})
	}
	sortAscending(candidates)

	if u.UserType == NonSwitcher {
		return account.ShardID, nil
	}

	totalReduction := new(uint256.Int)
	for _, c := range candidates {
		totalReduction = new(uint256.Int).Add(totalReduction, c.reduction)
	}
	if totalReduction.IsZero() {
		return account.ShardID, nil
	}

	migrationGasDivisor := new(uint256.Int).Add(gasApplyCrossTransferAll, gasCreateCrossTransferAll)

	switch u.UserType {
	case WeightedRandom:
		threshold := float64(stream.Uint32()) / float64(^uint32(0))
		cumulative := new(uint256.Int)
		totalF := new(big.Float).SetInt(totalReduction.ToBig())
		for _, c := range candidates {
			cumulative = new(uint256.Int).Add(cumulative, c.reduction)
			cumulativeF := new(big.Float).SetInt(cumulative.ToBig())
			ratio, _ := new(big.Float).Quo(cumulativeF, totalF).Float64()
			if ratio > threshold {
				if c.shardID == account.ShardID {
					return c.shardID, nil
				}
				feeCap := new(uint256.Int).Div(c.reduction, migrationGasDivisor)
				return c.shardID, feeCap
			}
		}

	case Minimum:
		best := candidates[len(candidates)-1]
		if best.shardID == account.ShardID {
			return best.shardID, nil
		}
		feeCap := new(uint256.Int).Div(best.reduction, migrationGasDivisor)
		return best.shardID, feeCap

	case DecreasingMinimum:
		for i := len(candidates) - 1; i >= 0; i-- {
			c := candidates[i]
			if c.shardID == account.ShardID {
				return c.shardID, nil
			}
			shard := chain.Shards[c.shardID]
			statesLen := len(shard.States)
			if statesLen < 2 {
				break
			}
			if shard.States[statesLen-2].BaseFee.Cmp(shard.States[statesLen-1].BaseFee) < 0 {
				continue
			}
			feeCap := new(uint256.Int).Div(c.reduction, migrationGasDivisor)
			return c.shardID, feeCap
		}
	}

	return account.ShardID, nil
}

// safeGetAccount wraps ShardedBlockchain.GetAccount, converting its
// panic-on-unindexed-address behavior into a (nil, false) result: the edge
// target may be an address the user graph knows about but the chain has
// never assigned, in which case the reference implementation's
// account_t.is_none() branch simply skips it.
func safeGetAccount(chain *core.ShardedBlockchain, addr core.Address) (ok bool, account *core.Account) {
	defer func() {
		if r := recover(); r != nil {
			ok, account = false, nil
		}
	}()
	live, a := chain.GetAccount(addr)
	return live, a
}

// sortAscending orders candidates by (reduction, shardID), matching Rust's
// default tuple ordering for Vec<(u128, usize)>.
func sortAscending(entries []reductionEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if less(b, a) {
				entries[j-1], entries[j] = entries[j], entries[j-1]
			} else {
				break
			}
		}
	}
}

func less(a, b reductionEntry) bool {
	c := a.reduction.Cmp(b.reduction)
	if c != 0 {
		return c < 0
	}
	return a.shardID < b.shardID
}
