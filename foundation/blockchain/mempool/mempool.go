// Package mempool maintains the pool of transactions waiting to be mined.
package mempool

import (
	"github.com/powledger/powledger/foundation/blockchain/database"
)

// Mempool represents an ordered cache of pending transactions. Entries are
// tracked by pointer so the exact entries handed to a miner can be removed
// without touching equal transactions submitted in the meantime.
//
// A Mempool is not safe for concurrent use. It is owned by the state
// goroutine that serializes every access.
type Mempool struct {
	pool []*database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	return len(mp.pool)
}

// Add appends the transaction to the pool and returns the entry that
// identifies it.
func (mp *Mempool) Add(tx database.Tx) *database.Tx {
	entry := &tx
	mp.pool = append(mp.pool, entry)

	return entry
}

// Copy returns the pending transactions in submission order.
func (mp *Mempool) Copy() []database.Tx {
	cpy := make([]database.Tx, len(mp.pool))
	for i, entry := range mp.pool {
		cpy[i] = *entry
	}

	return cpy
}

// Snapshot returns the current entries. The returned slice is owned by the
// caller and stays valid when the pool changes.
func (mp *Mempool) Snapshot() []*database.Tx {
	return append([]*database.Tx(nil), mp.pool...)
}

// DropInvalid removes every entry that fails validation and returns the
// number of entries removed.
func (mp *Mempool) DropInvalid(ev func(v string, args ...any)) int {
	return mp.filter(func(entry *database.Tx) bool {
		if err := entry.Validate(); err != nil {
			if ev != nil {
				ev("mempool: DropInvalid: tx[%s]: %s", entry, err)
			}
			return false
		}
		return true
	})
}

// RemoveEntries removes the specified entries by identity and returns the
// number of entries removed.
func (mp *Mempool) RemoveEntries(entries []*database.Tx) int {
	remove := make(map[*database.Tx]struct{}, len(entries))
	for _, entry := range entries {
		remove[entry] = struct{}{}
	}

	return mp.filter(func(entry *database.Tx) bool {
		_, found := remove[entry]
		return !found
	})
}

// RemoveContained removes every entry whose value is part of the block and
// returns the number of entries removed.
func (mp *Mempool) RemoveContained(block database.Block) int {
	return mp.filter(func(entry *database.Tx) bool {
		return !block.Contains(*entry)
	})
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.pool = nil
}

// =============================================================================

// filter keeps the entries the function accepts and returns the number of
// entries removed.
func (mp *Mempool) filter(keep func(entry *database.Tx) bool) int {
	kept := mp.pool[:0]
	for _, entry := range mp.pool {
		if keep(entry) {
			kept = append(kept, entry)
		}
	}

	removed := len(mp.pool) - len(kept)

	for i := len(kept); i < len(mp.pool); i++ {
		mp.pool[i] = nil
	}
	mp.pool = kept

	return removed
}
