package events

import (
	"sync"
	"time"
)

// Requirement is one of the seven satisfaction predicates the simulation is
// judged against. Each is derivable purely from the event stream.
type Requirement int

const (
	ReqSimulated    Requirement = iota // at least one transaction started
	ReqLockControl                     // at least one lock was acquired
	ReqConflict                        // a transaction died rather than deadlock
	ReqConcurrency                     // more than one transaction ran at once
	ReqResolution                      // an aborted transaction later committed
	ReqRandomDelays                    // inter-operation delays varied
	ReqDetailedLogs                    // every event carried a human message

	NumRequirements
)

func (r Requirement) String() string {
	switch r {
	case ReqSimulated:
		return "Concurrent transactions simulated"
	case ReqLockControl:
		return "Lock-based access control"
	case ReqConflict:
		return "Deadlock risk identified (wait-die abort)"
	case ReqConcurrency:
		return "Multiple workers ran concurrently"
	case ReqResolution:
		return "Conflict resolved by restart"
	case ReqRandomDelays:
		return "Randomized inter-operation delays"
	case ReqDetailedLogs:
		return "Detailed event logging"
	default:
		return "unknown requirement"
	}
}

// Metrics are run statistics accumulated from the stream, matching the panel
// of the reference simulation: abort and commit totals and the average time
// transactions spent blocked between a waiting event and the following grant.
type Metrics struct {
	Aborts      int
	Commits     int
	Waits       int
	AvgWait     time.Duration
	EventCounts map[Kind]int
}

// Tracker derives the requirement predicates and run metrics from the event
// stream. It implements Emitter so it can be combined with other subscribers;
// it never inspects engine internals.
type Tracker struct {
	mu    sync.Mutex
	flags [NumRequirements]bool

	open         map[int]bool // started but not yet committed/aborted
	everAborted  map[int]bool
	lastWall     map[int]time.Time
	firstGap     map[int]time.Duration
	waitingSince map[int]time.Time

	counts      map[Kind]int
	totalWait   time.Duration
	waitSamples int
	sawEmpty    bool
}

func NewTracker() *Tracker {
	return &Tracker{
		open:         make(map[int]bool),
		everAborted:  make(map[int]bool),
		lastWall:     make(map[int]time.Time),
		firstGap:     make(map[int]time.Duration),
		waitingSince: make(map[int]time.Time),
		counts:       make(map[Kind]int),
	}
}

func (t *Tracker) Emit(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[e.Kind]++
	if e.Message == "" && e.Kind != Done {
		t.sawEmpty = true
	}

	if e.Kind == Done {
		return
	}

	// Concurrency: any event from txn B while txn A is still in flight.
	for other, inFlight := range t.open {
		if inFlight && other != e.Txn {
			t.flags[ReqConcurrency] = true
			break
		}
	}

	t.observeGap(e)

	switch e.Kind {
	case Started:
		t.flags[ReqSimulated] = true
		t.open[e.Txn] = true
	case LockAcquired:
		t.flags[ReqLockControl] = true
		if since, ok := t.waitingSince[e.Txn]; ok {
			t.totalWait += e.Wall.Sub(since)
			t.waitSamples++
			delete(t.waitingSince, e.Txn)
		}
	case Waiting:
		t.waitingSince[e.Txn] = e.Wall
	case Aborted:
		t.flags[ReqConflict] = true
		t.everAborted[e.Txn] = true
		delete(t.open, e.Txn)
		delete(t.waitingSince, e.Txn)
		delete(t.lastWall, e.Txn)
	case Committed:
		if t.everAborted[e.Txn] {
			t.flags[ReqResolution] = true
		}
		delete(t.open, e.Txn)
		delete(t.lastWall, e.Txn)
	}
}

// observeGap marks ReqRandomDelays once two different positive gaps between
// consecutive events of the same transaction have been seen.
func (t *Tracker) observeGap(e Event) {
	if last, ok := t.lastWall[e.Txn]; ok {
		gap := e.Wall.Sub(last)
		if gap > 0 {
			first, seen := t.firstGap[e.Txn]
			switch {
			case !seen:
				t.firstGap[e.Txn] = gap
			case gap != first:
				t.flags[ReqRandomDelays] = true
			}
		}
	}
	t.lastWall[e.Txn] = e.Wall
}

// Satisfied reports whether the given requirement has been met so far.
func (t *Tracker) Satisfied(r Requirement) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r == ReqDetailedLogs {
		return len(t.counts) > 0 && !t.sawEmpty
	}
	return t.flags[r]
}

// Flags returns the current value of all seven predicates, indexed by
// Requirement.
func (t *Tracker) Flags() [NumRequirements]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.flags
	out[ReqDetailedLogs] = len(t.counts) > 0 && !t.sawEmpty
	return out
}

// Snapshot returns the accumulated run metrics.
func (t *Tracker) Snapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := Metrics{
		Aborts:      t.counts[Aborted],
		Commits:     t.counts[Committed],
		Waits:       t.counts[Waiting],
		EventCounts: make(map[Kind]int, len(t.counts)),
	}
	for k, n := range t.counts {
		m.EventCounts[k] = n
	}
	if t.waitSamples > 0 {
		m.AvgWait = t.totalWait / time.Duration(t.waitSamples)
	}
	return m
}
