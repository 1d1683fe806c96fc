package transaction

import "fmt"

// State is the lifecycle state of a single transaction attempt.
type State int

const (
	Active State = iota
	Waiting
	Aborted
	Committed
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Waiting:
		return "WAITING"
	case Aborted:
		return "ABORTED"
	case Committed:
		return "COMMITTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transaction is one attempt of a logical transaction. The ID is the stable
// identity assigned at first creation; every restart produces a new Transaction
// value with the same ID, an incremented Attempt and a fresh timestamp.
type Transaction struct {
	ID      int
	Attempt int
	TS      Timestamp
	State   State

	held map[string]struct{}
}

func New(id, attempt int, ts Timestamp) *Transaction {
	return &Transaction{
		ID:      id,
		Attempt: attempt,
		TS:      ts,
		State:   Active,
		held:    make(map[string]struct{}),
	}
}

// Name returns the display name of the logical transaction, e.g. "T3".
func (t *Transaction) Name() string {
	return fmt.Sprintf("T%d", t.ID)
}

// Holds reports whether this attempt currently owns the named resource's lock.
// Only the owning worker mutates the held set, so no locking is needed here;
// the lock table's per-resource holder field is the authoritative shared view.
func (t *Transaction) Holds(resource string) bool {
	_, ok := t.held[resource]
	return ok
}

func (t *Transaction) AddHeld(resource string) {
	t.held[resource] = struct{}{}
}

func (t *Transaction) RemoveHeld(resource string) {
	delete(t.held, resource)
}

// HeldCount returns the number of locks this attempt owns.
func (t *Transaction) HeldCount() int {
	return len(t.held)
}
