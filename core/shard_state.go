package core

import (
	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/params"
)

// ShardState holds a shard's base fee for one slot and the receipts produced
// by the slot that led to it, keyed by transaction hash. Ported from
// original_source/chain/src/shard_state.rs.
type ShardState struct {
	BaseFee  *GasPrice
	Receipts map[TxHash]*Receipt
}

// NewShardState starts a shard at the given base fee with an empty receipt
// table.
func NewShardState(baseFee *GasPrice) *ShardState {
	return &ShardState{
		BaseFee:  baseFee,
		Receipts: make(map[TxHash]*Receipt),
	}
}

// ComputeUpdatedBaseFee implements the EIP-1559-style controller: the base
// fee moves toward equilibrium by at most 1/BASE_FEE_MAX_CHANGE_DENOMINATOR
// per slot, in the direction of the gap between blockGasUsed and the
// per-shard gas target. The division order (multiply by the gap, then
// divide by the target, then divide by the denominator) must match
// original_source/chain/src/shard_state.rs::compute_updated_gasprice
// exactly — reordering the divisions changes the rounding and desyncs the
// result from the reference trajectory.
func ComputeUpdatedBaseFee(prevBaseFee *GasPrice, blockGasUsed *Gas) *GasPrice {
	target := uint256.NewInt(uint64(params.BlockGasTarget))
	denom := uint256.NewInt(uint64(params.BaseFeeMaxChangeDenom))
	maxGasPrice := uint256.NewInt(uint64(params.MaxGasPrice))

	if blockGasUsed.Cmp(target) > 0 {
		gap := new(uint256.Int).Sub(blockGasUsed, target)
		delta := new(uint256.Int).Mul(prevBaseFee, gap)
		delta.Div(delta, target)
		delta.Div(delta, denom)

		updated := new(uint256.Int).Add(prevBaseFee, delta)
		if updated.Cmp(maxGasPrice) > 0 {
			return maxGasPrice
		}
		return updated
	}

	gap := new(uint256.Int).Sub(target, blockGasUsed)
	delta := new(uint256.Int).Mul(prevBaseFee, gap)
	delta.Div(delta, target)
	delta.Div(delta, denom)

	// MIN_GASPRICE is 0 in the original, so max(prevBaseFee, 0+delta) reduces
	// to max(prevBaseFee, delta).
	floor := prevBaseFee
	if delta.Cmp(floor) > 0 {
		floor = delta
	}
	return new(uint256.Int).Sub(floor, delta)
}
