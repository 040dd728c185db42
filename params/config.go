package params

import (
	"encoding/json"
	"log"
	"os"
)

// configOverlay mirrors a subset of the package-level vars in constants.go. Any field
// left at its zero value in the JSON file is ignored, so a config file only
// needs to mention the constants it wants to change.
type configOverlay struct {
	ShardNum                   int   `json:"shard_num"`
	SlotsPerEpoch              int64 `json:"slots_per_epoch"`
	BlockGasTarget             int64 `json:"block_gas_target"`
	InitialBaseFee             int64 `json:"initial_base_fee"`
	BaseFeeMaxChangeDenom      int64 `json:"base_fee_max_change_denominator"`
	MaxGasPrice                int64 `json:"max_gas_price"`
	MempoolTransactionNum      int   `json:"mempool_transaction_num"`
	AverageShardSwitchInterval int   `json:"average_shard_switching_interval"`
	InitialSetupSlots          int64 `json:"initial_setup_slots"`
	RandSeed                   int64 `json:"rand_seed"`
}

// ReadConfigFile overlays constants from a JSON file onto the package
// defaults. Mirrors the teacher's params.ReadConfigFile: read the whole file,
// unmarshal into a staging struct, then copy non-zero fields over the package
// vars. A missing or malformed file is fatal, matching the teacher's own
// practice of treating config loading as a startup precondition rather than a
// recoverable error.
func ReadConfigFile(path string) {
	if path == "" {
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("params: cannot read config file %q: %v", path, err)
	}
	var overlay configOverlay
	if err := json.Unmarshal(content, &overlay); err != nil {
		log.Fatalf("params: cannot parse config file %q: %v", path, err)
	}
	applyOverlay(overlay)
}

func applyOverlay(o configOverlay) {
	if o.ShardNum != 0 {
		ShardNum = o.ShardNum
	}
	if o.SlotsPerEpoch != 0 {
		SlotsPerEpoch = o.SlotsPerEpoch
	}
	if o.BlockGasTarget != 0 {
		BlockGasTarget = o.BlockGasTarget
		BlockGasLimit = 2 * BlockGasTarget
	}
	if o.InitialBaseFee != 0 {
		InitialBaseFee = o.InitialBaseFee
	}
	if o.BaseFeeMaxChangeDenom != 0 {
		BaseFeeMaxChangeDenom = o.BaseFeeMaxChangeDenom
	}
	if o.MaxGasPrice != 0 {
		MaxGasPrice = o.MaxGasPrice
	}
	if o.MempoolTransactionNum != 0 {
		MempoolTransactionNum = o.MempoolTransactionNum
	}
	if o.AverageShardSwitchInterval != 0 {
		AverageShardSwitchInterval = o.AverageShardSwitchInterval
	}
	if o.InitialSetupSlots != 0 {
		InitialSetupSlots = o.InitialSetupSlots
	}
	if o.RandSeed != 0 {
		RandSeed = o.RandSeed
	}
}
