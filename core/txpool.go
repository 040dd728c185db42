package core

import (
	"sort"
	"sync"

	"github.com/holiman/uint256"
)

// PendingTx pairs a transaction with the receipt it carries, if any. Only
// the apply side of a cross-shard pair (ApplyCrossTransfer,
// ApplyCrossTransferAll) carries the receipt of its create transaction;
// every other transaction leaves it nil.
type PendingTx struct {
	Tx      *Transaction
	Receipt *Receipt
}

// TxPool is a per-shard mempool, kept sorted by effective priority. It
// mirrors the teacher's mutex-guarded PriorityTxPool, restructured as a
// slice rather than a heap: the slot algorithm (§4.1) needs a full re-sort
// and cursor-based prefix drop each slot, not incremental push/pop.
type TxPool struct {
	mu      sync.Mutex
	pending []PendingTx
}

// NewTxPool returns an empty pool.
func NewTxPool() *TxPool {
	return &TxPool{}
}

// Push appends a pending transaction to the pool. It does not sort; callers
// must call SortByPriority before relying on ordering.
func (p *TxPool) Push(tx *Transaction, receipt *Receipt) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, PendingTx{Tx: tx, Receipt: receipt})
}

// effectivePriority is min(fee_cap, gas_premium + base_fee), the total gas
// price a transaction bids at the current base fee, capped by its fee cap.
func effectivePriority(tx *Transaction, baseFee *GasPrice) *GasPrice {
	bid := new(uint256.Int).Add(tx.GasPremium, baseFee)
	if bid.Cmp(tx.FeeCap) > 0 {
		return tx.FeeCap
	}
	return bid
}

// SortByPriority orders the pool by descending effective priority, given the
// shard's current base fee. Ties keep their relative order (stable sort),
// matching Rust's sort_by on a Vec, which is also stable.
func (p *TxPool) SortByPriority(baseFee *GasPrice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sort.SliceStable(p.pending, func(i, j int) bool {
		pi := effectivePriority(p.pending[i].Tx, baseFee)
		pj := effectivePriority(p.pending[j].Tx, baseFee)
		return pi.Cmp(pj) > 0
	})
}

// Snapshot returns a copy of the pool's current contents, safe to iterate
// without holding the lock.
func (p *TxPool) Snapshot() []PendingTx {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PendingTx, len(p.pending))
	copy(out, p.pending)
	return out
}

// DropExecutedPrefix removes the first n entries, keeping the rest.
func (p *TxPool) DropExecutedPrefix(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n >= len(p.pending) {
		p.pending = nil
		return
	}
	p.pending = append([]PendingTx(nil), p.pending[n:]...)
}

// Truncate keeps only the first maxLen entries, discarding the rest. Called
// after the post-execution re-sort, per §4.1's
// "remove transactions in excess of MEMPOOL_TRANSACTION_NUM" step.
func (p *TxPool) Truncate(maxLen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) > maxLen {
		p.pending = p.pending[:maxLen]
	}
}

// Len reports the number of pending transactions.
func (p *TxPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
