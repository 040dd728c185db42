// Package params holds the simulation's tunable constants and the optional
// JSON overlay file used to adjust them without a rebuild.
package params

// Core chain constants, ported from original_source/chain/src/parameters/poc_fee.rs.
var (
	ShardNum                     = 64
	SlotsPerEpoch          int64 = 32
	BlockGasTarget         int64 = 10_000_000
	BlockGasLimit          int64 = 2 * BlockGasTarget
	InitialBaseFee         int64 = 1_000_000_000
	BaseFeeMaxChangeDenom  int64 = 8
	MaxGasPrice            int64 = 16_384_000_000_000 // 1.6384e13
	MempoolTransactionNum         = 10_000
	AverageShardSwitchInterval   = 100
	InitialSetupSlots      int64 = 10
	RandSeed               int64 = 1337
)

// Fixed per-function gas costs. The ..All variants cost the same as their
// non-All counterparts (original_source/chain/src/function.rs).
const (
	GasTransfer              int64 = 21_000
	GasCreateCrossTransfer   int64 = 31_785
	GasApplyCrossTransfer    int64 = 52_820
	GasCreateCrossTransferAll int64 = GasCreateCrossTransfer
	GasApplyCrossTransferAll  int64 = GasApplyCrossTransfer
)

// Fee-analysis-level constants, ported from
// original_source/fee-analysis/src/parameters.rs.
var (
	DefaultEndSlot  = 100
	DefaultUserNum  = 10_000
	DefaultGasPremium  int64 = 1_000_000_000

	TransactionOccupancy = 2.0

	GlobalGasTarget              = int64(ShardNum) * BlockGasTarget
	AverageGasPerTransaction     = (GasCreateCrossTransfer + GasApplyCrossTransfer) / 2
	GlobalTransactionGasPerSlot  = TransactionOccupancy * float64(GlobalGasTarget)
	GlobalTransactionNum         = GlobalTransactionGasPerSlot / float64(AverageGasPerTransaction)

	MaxFeeCap      int64 = InitialBaseFee * 200
	MaxTargetUserNum    = 15

	PopularUserAddress                              = 0
	PercentageUsersTransferringToPopularUser = 0.1

	DummyNonce uint64 = 1337

	DefaultPercentageOfMinimum          = 0.0
	DefaultPercentageOfWeightedRandom   = 0.0
	DefaultPercentageOfDecreasingMinimum = 0.0
)

// Output file names, mirroring original_source/fee-analysis/src/parameters.rs.
const (
	OutputBaseFeeCSV       = "base_fee.csv"
	OutputActiveUserNumCSV = "active_user_num.csv"
	OutputUsersCSV         = "users.csv"
	OutputFunctionNumCSV   = "function_num.csv"
	OutputMempoolCSV       = "mempool.csv"
)
