package simuser

// StrategyType is a user's shard-switching policy. Ported from
// original_source/fee-analysis/src/user.rs::StrategyType.
type StrategyType int

const (
	// NonSwitcher never migrates; it always stays on its genesis shard.
	NonSwitcher StrategyType = iota
	// WeightedRandom picks among fee-reducing shards with probability
	// proportional to the fee reduction each one offers.
	WeightedRandom
	// Minimum always migrates to the single best fee-reducing shard.
	Minimum
	// DecreasingMinimum migrates to the best fee-reducing shard whose base
	// fee did not just increase, skipping over ones that look like they are
	// trending up.
	DecreasingMinimum
)

func (t StrategyType) String() string {
	switch t {
	case NonSwitcher:
		return "NonSwitcher"
	case WeightedRandom:
		return "WeightedRandom"
	case Minimum:
		return "Minimum"
	case DecreasingMinimum:
		return "DecreasingMinimum"
	default:
		return "Unknown"
	}
}

// IsSwitcher reports whether this strategy ever migrates shards.
func (t StrategyType) IsSwitcher() bool {
	return t != NonSwitcher
}
