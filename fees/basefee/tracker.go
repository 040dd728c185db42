// Package basefee maintains a per-shard sliding window of base fees for
// reporting: the raw base-fee series is noisy slot to slot, so the console
// reporters show a rolling average next to the instantaneous value. The CSV
// reports write the instantaneous per-slot base fee only. Adapted from the teacher's fees/expectation package, which tracked
// a sliding window of intra-shard-transaction fees for the same purpose;
// here the window holds base fees instead of per-block ITX averages.
package basefee

import (
	"sort"
	"sync"

	"github.com/holiman/uint256"

	"github.com/shargri-la/shargri-la/core"
)

// Tracker maintains a sliding window of base fees per shard and the current
// rolling average over that window.
type Tracker struct {
	WindowSize int

	mu      sync.RWMutex
	windows map[int][]*core.GasPrice
	count   map[int]int
	avg     map[int]*core.GasPrice
}

// NewTracker returns a tracker with the given window size in slots. A
// non-positive size falls back to 16, matching the teacher's default.
func NewTracker(windowSize int) *Tracker {
	if windowSize <= 0 {
		windowSize = 16
	}
	return &Tracker{
		WindowSize: windowSize,
		windows:    make(map[int][]*core.GasPrice),
		count:      make(map[int]int),
		avg:        make(map[int]*core.GasPrice),
	}
}

// OnBlockFinalized records shardID's base fee as of the block just closed
// and recomputes its rolling average.
func (t *Tracker) OnBlockFinalized(shardID int, baseFee *core.GasPrice) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.windows[shardID]; !exists {
		t.windows[shardID] = make([]*core.GasPrice, 0, t.WindowSize)
		t.avg[shardID] = new(uint256.Int)
	}

	sample := new(uint256.Int)
	if baseFee != nil {
		sample.Set(baseFee)
	}
	t.windows[shardID] = append(t.windows[shardID], sample)
	if len(t.windows[shardID]) > t.WindowSize {
		t.windows[shardID] = t.windows[shardID][len(t.windows[shardID])-t.WindowSize:]
	}
	t.count[shardID]++

	t.recomputeAvg(shardID)
}

// trimExtremes drops the extreme samples from a sorted-ascending fee window,
// removing roughly percentile% from each end. Used to keep a handful of
// spiking slots (a sudden burst of demand, a migration storm) from
// dominating the reported average. Requires at least 4 samples to trim
// anything meaningfully.
func trimExtremes(fees []*core.GasPrice, percentile int) []*core.GasPrice {
	if len(fees) < 4 {
		return fees
	}

	sorted := make([]*core.GasPrice, len(fees))
	copy(sorted, fees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })

	n := len(sorted)
	trim := (n * percentile) / 100
	if trim*2 >= n {
		trim = (n - 1) / 2
	}
	return sorted[trim : n-trim]
}

// recomputeAvg recalculates shardID's rolling average over its trimmed
// window. Must be called with the lock held.
func (t *Tracker) recomputeAvg(shardID int) {
	window := trimExtremes(t.windows[shardID], 10)
	if len(window) == 0 {
		t.avg[shardID] = new(uint256.Int)
		return
	}

	sum := new(uint256.Int)
	for _, fee := range window {
		sum = new(uint256.Int).Add(sum, fee)
	}
	t.avg[shardID] = new(uint256.Int).Div(sum, uint256.NewInt(uint64(len(window))))
}

// GetAvgBaseFee returns the current rolling average base fee for a shard, or
// zero if no blocks have been recorded for it yet.
func (t *Tracker) GetAvgBaseFee(shardID int) *core.GasPrice {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if avg, ok := t.avg[shardID]; ok {
		return new(uint256.Int).Set(avg)
	}
	return new(uint256.Int)
}

// GetAllAvgBaseFees returns a snapshot of every shard's rolling average,
// keyed by shard ID.
func (t *Tracker) GetAllAvgBaseFees() map[int]*core.GasPrice {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[int]*core.GasPrice, len(t.avg))
	for shardID, avg := range t.avg {
		out[shardID] = new(uint256.Int).Set(avg)
	}
	return out
}

// GetBlockCount reports how many blocks have been recorded for a shard.
func (t *Tracker) GetBlockCount(shardID int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count[shardID]
}

// Reset clears all tracking data for a single shard.
func (t *Tracker) Reset(shardID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.windows, shardID)
	delete(t.count, shardID)
	delete(t.avg, shardID)
}

// ResetAll clears every shard's tracking data.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.windows = make(map[int][]*core.GasPrice)
	t.count = make(map[int]int)
	t.avg = make(map[int]*core.GasPrice)
}
