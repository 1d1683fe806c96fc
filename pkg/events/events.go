// Package events carries the engine's state-transition stream out to external
// collaborators. The engine emits one Event per transition, fire-and-forget;
// subscribers that fall behind lose events rather than slowing the engine down.
package events

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/diisilva/deadlock-simulation/pkg/concurrency/transaction"
)

// Kind identifies the state transition an Event describes.
type Kind string

const (
	Started      Kind = "started"
	LockAcquired Kind = "lock_acquired"
	Waiting      Kind = "waiting"
	LockReleased Kind = "lock_released"
	Read         Kind = "read"
	Write        Kind = "write"
	Committed    Kind = "committed"
	Aborted      Kind = "aborted"

	// Done is the run-completion signal, emitted exactly once after every
	// transaction has committed. It carries no transaction or resource.
	Done Kind = "done"
)

// Event is a single state transition. Events from the same transaction are
// emitted in order; events from different transactions interleave arbitrarily.
type Event struct {
	Kind     Kind
	Txn      int // logical transaction id, 0 for run-level events
	Attempt  int
	TS       transaction.Timestamp
	Resource string // empty when the transition involves no resource
	Wall     time.Time
	Message  string
}

// Emitter is the narrow interface the engine calls on every state transition.
// Implementations must not block the caller.
type Emitter interface {
	Emit(Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Emit(Event) {}

// Combine fans each event out to all given emitters, in order.
func Combine(emitters ...Emitter) Emitter {
	return multi(emitters)
}

type multi []Emitter

func (m multi) Emit(e Event) {
	for _, em := range m {
		em.Emit(e)
	}
}

// Bus fans events out to channel subscribers without ever blocking the
// emitting worker. A subscriber whose buffer is full loses the event; the
// number of lost events is tracked in Dropped.
type Bus struct {
	mu      sync.Mutex
	subs    []chan Event
	closed  bool
	dropped atomic.Int64
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber with the given buffer size and returns
// its receive channel. The channel is closed by Close.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Inc()
		}
	}
}

// Dropped returns how many events were lost to full subscriber buffers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels. Further emits are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// Recorder keeps every emitted event in order of emission. Intended for tests
// and for post-run analysis of the stream.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByTxn returns the recorded events of one transaction, in emission order.
func (r *Recorder) ByTxn(txn int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Txn == txn {
			out = append(out, e)
		}
	}
	return out
}

// Kinds returns the event-kind sequence of one transaction.
func (r *Recorder) Kinds(txn int) []Kind {
	var out []Kind
	for _, e := range r.ByTxn(txn) {
		out = append(out, e.Kind)
	}
	return out
}
