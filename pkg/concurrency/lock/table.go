package lock

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/diisilva/deadlock-simulation/pkg/concurrency/transaction"
	"github.com/diisilva/deadlock-simulation/pkg/logging"
)

// Outcome is the result of a lock request.
type Outcome int

const (
	// Granted means the requester now holds the lock.
	Granted Outcome = iota
	// MustWait means the requester was enqueued and must call Await.
	MustWait
	// MustDie means the requester must abort its current attempt.
	MustDie
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "GRANTED"
	case MustWait:
		return "MUST_WAIT"
	default:
		return "MUST_DIE"
	}
}

// waiter is one blocked transaction on a resource. Its wake channel holds at
// most one token; Release deposits a token for exactly one chosen waiter and
// the waiter re-checks the resource state after consuming it.
type waiter struct {
	id   int
	ts   transaction.Timestamp
	wake chan struct{}
}

// resource is the exclusive-lock state of one named resource. All fields
// except name are guarded by mu; two distinct resources never contend on
// each other's mutex.
type resource struct {
	name string

	mu       sync.Mutex
	holder   int // transaction id, 0 when free
	holderTS transaction.Timestamp
	waiters  map[int]*waiter
	arrival  []int // waiter ids in arrival order, kept for display only
}

func newResource(name string) *resource {
	return &resource{
		name:    name,
		waiters: make(map[int]*waiter),
	}
}

func (r *resource) grantLocked(txn *transaction.Transaction) {
	r.holder = txn.ID
	r.holderTS = txn.TS
	txn.AddHeld(r.name)
}

func (r *resource) addWaiterLocked(txn *transaction.Transaction) *waiter {
	if w, ok := r.waiters[txn.ID]; ok {
		return w
	}
	w := &waiter{id: txn.ID, ts: txn.TS, wake: make(chan struct{}, 1)}
	r.waiters[txn.ID] = w
	r.arrival = append(r.arrival, txn.ID)
	return w
}

func (r *resource) removeWaiterLocked(id int) {
	if _, ok := r.waiters[id]; !ok {
		return
	}
	delete(r.waiters, id)
	for i, other := range r.arrival {
		if other == id {
			r.arrival = append(r.arrival[:i], r.arrival[i+1:]...)
			break
		}
	}
}

// wakeDoomedLocked deposits a wake token for every waiter that is not
// strictly older than the new holder. Such a waiter can never be granted
// while this holder lives, so it must run its re-check and die; leaving it
// parked would let it wait on an older holder, and a deadlock cycle could
// close around it. Called every time a new holder is installed.
func (r *resource) wakeDoomedLocked() {
	for _, w := range r.waiters {
		if Decide(w.ts, r.holderTS) == Die {
			select {
			case w.wake <- struct{}{}:
			default:
			}
		}
	}
}

// oldestWaiterLocked selects the waiter with the smallest timestamp. The scan
// is explicit: admission order is age, not arrival.
func (r *resource) oldestWaiterLocked() *waiter {
	var oldest *waiter
	for _, w := range r.waiters {
		if oldest == nil || w.ts.Older(oldest.ts) {
			oldest = w
		}
	}
	return oldest
}

// Table is the per-resource exclusive lock state shared by all workers of one
// simulation. Conflicting requests are arbitrated with the wait-die rule, so
// no deadlock cycle can form and a waiting transaction is never starved.
type Table struct {
	mu        sync.RWMutex
	resources map[string]*resource
	log       *slog.Logger
}

// NewTable creates a lock table over the given resource names.
func NewTable(names ...string) *Table {
	t := &Table{
		resources: make(map[string]*resource, len(names)),
		log:       logging.With("component", "lock-table"),
	}
	for _, name := range names {
		t.resources[name] = newResource(name)
	}
	return t
}

// lookup returns the named resource, creating it on first use. Scripts only
// touch the names the table was built with; creation here covers caller bugs
// without crashing a worker.
func (t *Table) lookup(name string) *resource {
	t.mu.RLock()
	r, ok := t.resources[name]
	t.mu.RUnlock()
	if ok {
		return r
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.resources[name]; ok {
		return r
	}
	t.log.Warn("request for unknown resource", "resource", name)
	r = newResource(name)
	t.resources[name] = r
	return r
}

// Acquire attempts to take the exclusive lock on the named resource.
//
//   - free resource: the lock is granted immediately.
//   - re-entrant request: granted without any state change.
//   - held by another transaction: the wait-die arbitrator decides. WAIT
//     enqueues the requester, which must then block in Await; DIE leaves the
//     wait set untouched and the requester aborts its attempt.
func (t *Table) Acquire(name string, txn *transaction.Transaction) Outcome {
	r := t.lookup(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.holder == 0 {
		r.grantLocked(txn)
		r.wakeDoomedLocked()
		return Granted
	}
	if r.holder == txn.ID {
		return Granted
	}
	if Decide(txn.TS, r.holderTS) == Wait {
		r.addWaiterLocked(txn)
		return MustWait
	}
	return MustDie
}

// Await blocks until a transaction that received MustWait is granted the lock
// or must die. The check runs once on entry and again on every wake, under the
// resource's critical section, so a holder that changed between Acquire and
// Await is re-arbitrated: a third party that took the lock in between forces
// another wait or, if that party is older, a die. Wakes arrive from a Release
// that selects this waiter or from a new holder that dooms it.
func (t *Table) Await(name string, txn *transaction.Transaction) Outcome {
	r := t.lookup(name)

	r.mu.Lock()
	w, ok := r.waiters[txn.ID]
	if !ok {
		// Caller bug: Await without a preceding MustWait. Enqueue anyway so
		// the loop below behaves like a regular wait.
		t.log.Warn("await without enqueued request",
			"resource", name, "txn", txn.ID)
		w = r.addWaiterLocked(txn)
	}

	for {
		if r.holder == 0 {
			r.removeWaiterLocked(txn.ID)
			r.grantLocked(txn)
			r.wakeDoomedLocked()
			r.mu.Unlock()
			return Granted
		}
		if r.holder == txn.ID {
			r.removeWaiterLocked(txn.ID)
			r.mu.Unlock()
			return Granted
		}
		if Decide(txn.TS, r.holderTS) == Die {
			r.removeWaiterLocked(txn.ID)
			r.mu.Unlock()
			return MustDie
		}
		r.mu.Unlock()
		<-w.wake
		r.mu.Lock()
	}
}

// Release clears the holder and wakes the oldest waiter, if any. A release by
// a transaction that does not hold the lock indicates a caller bug and is a
// logged no-op.
func (t *Table) Release(name string, txn *transaction.Transaction) {
	r := t.lookup(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.holder != txn.ID {
		t.log.Warn("release by non-holder",
			"resource", name, "txn", txn.ID, "holder", r.holder)
		return
	}

	r.holder = 0
	r.holderTS = 0
	txn.RemoveHeld(name)

	if w := r.oldestWaiterLocked(); w != nil {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

// Snapshot is a read-only view of one resource for display.
type Snapshot struct {
	Name     string
	Holder   int // 0 when free
	HolderTS transaction.Timestamp
	Waiting  []int // waiter ids in arrival order
}

// Snapshots returns the current state of every resource, sorted by name.
func (t *Table) Snapshots() []Snapshot {
	t.mu.RLock()
	resources := make([]*resource, 0, len(t.resources))
	for _, r := range t.resources {
		resources = append(resources, r)
	}
	t.mu.RUnlock()

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].name < resources[j].name
	})

	out := make([]Snapshot, 0, len(resources))
	for _, r := range resources {
		r.mu.Lock()
		s := Snapshot{
			Name:     r.name,
			Holder:   r.holder,
			HolderTS: r.holderTS,
			Waiting:  append([]int(nil), r.arrival...),
		}
		r.mu.Unlock()
		out = append(out, s)
	}
	return out
}
