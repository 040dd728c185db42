// Package crossshard tracks in-flight account migrations: the window
// between a CreateCrossTransferAll committing on the source shard and the
// matching ApplyCrossTransferAll committing on the destination.
package crossshard

import (
	"fmt"
	"sync"

	"github.com/shargri-la/shargri-la/core"
)

// Migration is one account's in-flight move from ShardFrom to ShardTo,
// keyed by the hash of the CreateCrossTransferAll transaction that started
// it.
type Migration struct {
	TxHash    core.TxHash
	Addr      core.Address
	ShardFrom int
	ShardTo   int
	StartSlot core.Slot
}

// Ledger is a bookkeeping layer over the chain's own used_receipts guard:
// core.Shard enforces that a receipt is never applied twice, but nothing in
// the chain engine itself tracks how many migrations are currently
// in-flight or how long they take to settle. Ledger fills that gap for
// reporting. Adapted from the teacher's pending-reward ledger shape
// (PairID-keyed map, Add/Settle/IsPending accessors guarded by a RWMutex),
// repurposed from proposer-reward settlement to migration-latency tracking.
type Ledger struct {
	mu        sync.RWMutex
	pending   map[core.TxHash]*Migration
	byAddr    map[core.Address]core.TxHash
	settled   map[core.TxHash]core.Slot
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		pending: make(map[core.TxHash]*Migration),
		byAddr:  make(map[core.Address]core.TxHash),
		settled: make(map[core.TxHash]core.Slot),
	}
}

// Open records a migration as started. Returns an error if txHash is
// already tracked, pending or settled.
func (l *Ledger) Open(m *Migration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.settled[m.TxHash]; ok {
		return fmt.Errorf("crossshard: migration %d already settled", m.TxHash)
	}
	if _, ok := l.pending[m.TxHash]; ok {
		return fmt.Errorf("crossshard: migration %d already open", m.TxHash)
	}
	l.pending[m.TxHash] = m
	l.byAddr[m.Addr] = m.TxHash
	return nil
}

// SettleByAddr settles whichever migration is open for addr, if any. It is
// a no-op (returning ok=false) if addr has no open migration, for example
// when an earlier call already settled it.
func (l *Ledger) SettleByAddr(addr core.Address, settledSlot core.Slot) (latency core.Slot, ok bool) {
	l.mu.Lock()
	txHash, tracked := l.byAddr[addr]
	l.mu.Unlock()
	if !tracked {
		return 0, false
	}
	latency, err := l.Settle(txHash, settledSlot)
	if err != nil {
		return 0, false
	}
	l.mu.Lock()
	delete(l.byAddr, addr)
	l.mu.Unlock()
	return latency, true
}

// Settle marks a migration as complete as of settledSlot, moving it out of
// the pending set. Returns the migration's latency in slots.
func (l *Ledger) Settle(txHash core.TxHash, settledSlot core.Slot) (core.Slot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.pending[txHash]
	if !ok {
		return 0, fmt.Errorf("crossshard: migration %d not pending", txHash)
	}
	delete(l.pending, txHash)
	l.settled[txHash] = settledSlot
	return settledSlot - m.StartSlot, nil
}

// IsPending reports whether txHash is still awaiting settlement.
func (l *Ledger) IsPending(txHash core.TxHash) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.pending[txHash]
	return ok
}

// PendingCount reports how many migrations are currently in flight.
func (l *Ledger) PendingCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.pending)
}

// SettledCount reports how many migrations have completed.
func (l *Ledger) SettledCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.settled)
}

// Snapshot returns a copy of every currently pending migration.
func (l *Ledger) Snapshot() []*Migration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Migration, 0, len(l.pending))
	for _, m := range l.pending {
		cp := *m
		out = append(out, &cp)
	}
	return out
}
