package sim

import (
	"fmt"
	"time"

	"github.com/diisilva/deadlock-simulation/pkg/concurrency/lock"
	"github.com/diisilva/deadlock-simulation/pkg/concurrency/transaction"
	"github.com/diisilva/deadlock-simulation/pkg/events"
)

// machine drives one transaction attempt through the fixed operation script:
//
//	started → acquire(first) → read(first) → acquire(second) → read(second)
//	→ write → release both → committed
//
// A randomized delay runs before each operation. Every state transition emits
// exactly one event; events of one transaction are always in script order.
type machine struct {
	table   *lock.Table
	emitter events.Emitter
	delay   func()
}

// runAttempt executes one attempt and reports whether it committed. An
// aborted attempt has released all its locks by the time this returns.
func (m *machine) runAttempt(txn *transaction.Transaction, first, second string) bool {
	m.emit(txn, events.Started, "",
		"%s entered execution (ts=%d)", txn.Name(), txn.TS)

	m.delay()
	if !m.acquireStep(txn, first) {
		return false
	}
	m.emit(txn, events.Read, first, "%s read %s", txn.Name(), first)

	m.delay()
	if !m.acquireStep(txn, second) {
		return false
	}
	m.emit(txn, events.Read, second, "%s read %s", txn.Name(), second)

	m.delay()
	m.emit(txn, events.Write, "",
		"%s wrote %s and %s", txn.Name(), first, second)

	m.release(txn, first)
	m.release(txn, second)

	txn.State = transaction.Committed
	m.emit(txn, events.Committed, "", "%s committed", txn.Name())
	return true
}

// acquireStep handles the three-way outcome of one lock acquisition. On
// MUST_DIE the attempt is aborted: held locks are released and the terminal
// aborted event is emitted.
func (m *machine) acquireStep(txn *transaction.Transaction, res string) bool {
	out := m.table.Acquire(res, txn)

	if out == lock.MustWait {
		txn.State = transaction.Waiting
		m.emit(txn, events.Waiting, res,
			"%s waiting for lock(%s)", txn.Name(), res)
		out = m.table.Await(res, txn)
	}

	switch out {
	case lock.Granted:
		txn.State = transaction.Active
		m.emit(txn, events.LockAcquired, res,
			"%s acquired lock(%s)", txn.Name(), res)
		return true
	default:
		m.abort(txn)
		return false
	}
}

func (m *machine) abort(txn *transaction.Transaction) {
	// Release in a stable order so waiters on either resource are woken.
	for _, res := range []string{ResourceX, ResourceY} {
		if txn.Holds(res) {
			m.release(txn, res)
		}
	}
	txn.State = transaction.Aborted
	m.emit(txn, events.Aborted, "",
		"%s died (wait-die), restarting with a fresh timestamp", txn.Name())
}

func (m *machine) release(txn *transaction.Transaction, res string) {
	m.table.Release(res, txn)
	m.emit(txn, events.LockReleased, res,
		"%s released lock(%s)", txn.Name(), res)
}

func (m *machine) emit(txn *transaction.Transaction, kind events.Kind, res, format string, args ...any) {
	m.emitter.Emit(events.Event{
		Kind:     kind,
		Txn:      txn.ID,
		Attempt:  txn.Attempt,
		TS:       txn.TS,
		Resource: res,
		Wall:     time.Now(),
		Message:  fmt.Sprintf(format, args...),
	})
}
