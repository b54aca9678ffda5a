// Package ledger serializes access to the record store the way a
// chain applies transactions: one block at a time, one transaction at
// a time, each all-or-nothing relative to the others.
package ledger

import (
	"sync"
	"sync/atomic"

	"linkbio/pkg/store"
)

// Call is one state-changing operation against the store, invoked with
// the sending identity. It returns the operation's success value (an
// id, or true for pure mutations) or a typed store error.
type Call func(s *store.Store, sender store.Principal) (any, error)

// Tx pairs a call with the identity submitting it.
type Tx struct {
	Sender store.Principal
	Call   Call
}

// Receipt is the outcome of one applied transaction. Height is the
// block the transaction executed in, captured under the ledger lock so
// it is stable no matter what other blocks land afterwards.
type Receipt struct {
	Value  any
	Height uint64
	Err    error
}

// Ledger owns the store and the block height. All mutation goes
// through Apply or Submit, which hold the lock for the whole block, so
// no transaction ever observes a partially-applied effect of another.
type Ledger struct {
	mu     sync.Mutex
	store  *store.Store
	height atomic.Uint64
}

// GenesisHeight is the height before any block is applied. The first
// applied block executes at GenesisHeight+1.
const GenesisHeight = 1

// New builds a ledger whose store stamps records with the ledger's
// current height. admin is the identity allowed to verify profiles.
func New(admin store.Principal, opts ...store.Option) *Ledger {
	l := &Ledger{}
	l.height.Store(GenesisHeight)
	l.store = store.New(l.Height, admin, opts...)
	return l
}

// Height returns the current block height.
func (l *Ledger) Height() uint64 {
	return l.height.Load()
}

// Apply mines one block: it advances the height, then applies each
// transaction strictly in submission order. The first transaction to
// claim a contested resource wins; later ones observe the new state
// and fail.
func (l *Ledger) Apply(batch []Tx) []Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.height.Add(1)
	return l.apply(batch)
}

// ApplyAt replays one block at an explicit height, restoring the clock
// to the journaled value before applying. Live blocks whose every
// transaction failed advance the height without leaving journal
// entries, so replayed heights are not contiguous.
func (l *Ledger) ApplyAt(height uint64, batch []Tx) []Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.height.Store(height)
	return l.apply(batch)
}

func (l *Ledger) apply(batch []Tx) []Receipt {
	height := l.height.Load()
	receipts := make([]Receipt, len(batch))
	for i, tx := range batch {
		v, err := tx.Call(l.store, tx.Sender)
		receipts[i] = Receipt{Value: v, Height: height, Err: err}
	}
	return receipts
}

// Submit applies a single-transaction block and returns its receipt.
func (l *Ledger) Submit(sender store.Principal, call Call) Receipt {
	return l.Apply([]Tx{{Sender: sender, Call: call}})[0]
}

// Read runs a read-only function against the store under the lock.
// Queries never mutate state.
func (l *Ledger) Read(fn func(s *store.Store)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.store)
}
