package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func emitAt(tr *Tracker, kind Kind, txn int, wall time.Time) {
	tr.Emit(Event{Kind: kind, Txn: txn, Wall: wall, Message: "msg"})
}

func TestTrackerStartsAllUnsatisfied(t *testing.T) {
	tr := NewTracker()
	for r := Requirement(0); r < NumRequirements; r++ {
		require.False(t, tr.Satisfied(r), "requirement %v should start unsatisfied", r)
	}
}

func TestTrackerSimulationAndLockControl(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 1, base)
	require.True(t, tr.Satisfied(ReqSimulated))
	require.False(t, tr.Satisfied(ReqLockControl))

	emitAt(tr, LockAcquired, 1, base.Add(time.Millisecond))
	require.True(t, tr.Satisfied(ReqLockControl))
}

func TestTrackerConflictAndResolution(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 2, base)
	emitAt(tr, Aborted, 2, base.Add(time.Millisecond))
	require.True(t, tr.Satisfied(ReqConflict))
	require.False(t, tr.Satisfied(ReqResolution))

	emitAt(tr, Started, 2, base.Add(2*time.Millisecond))
	emitAt(tr, Committed, 2, base.Add(3*time.Millisecond))
	require.True(t, tr.Satisfied(ReqResolution))
}

func TestTrackerResolutionNeedsPriorAbort(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 1, base)
	emitAt(tr, Committed, 1, base.Add(time.Millisecond))
	require.False(t, tr.Satisfied(ReqResolution))
}

func TestTrackerConcurrency(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 1, base)
	require.False(t, tr.Satisfied(ReqConcurrency), "one transaction alone is not concurrency")

	emitAt(tr, Started, 2, base.Add(time.Millisecond))
	require.True(t, tr.Satisfied(ReqConcurrency))
}

func TestTrackerNoConcurrencyWhenSerial(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 1, base)
	emitAt(tr, Committed, 1, base.Add(time.Millisecond))
	emitAt(tr, Started, 2, base.Add(2*time.Millisecond))
	emitAt(tr, Committed, 2, base.Add(3*time.Millisecond))

	require.False(t, tr.Satisfied(ReqConcurrency))
}

func TestTrackerRandomDelays(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 1, base)
	emitAt(tr, LockAcquired, 1, base.Add(10*time.Millisecond))
	require.False(t, tr.Satisfied(ReqRandomDelays), "a single gap proves nothing")

	// Same gap again: still indistinguishable from a fixed delay.
	emitAt(tr, Read, 1, base.Add(20*time.Millisecond))
	require.False(t, tr.Satisfied(ReqRandomDelays))

	// A different gap marks the delays as varied.
	emitAt(tr, Write, 1, base.Add(45*time.Millisecond))
	require.True(t, tr.Satisfied(ReqRandomDelays))
}

func TestTrackerDetailedLogs(t *testing.T) {
	tr := NewTracker()
	require.False(t, tr.Satisfied(ReqDetailedLogs), "no events yet")

	emitAt(tr, Started, 1, time.Now())
	require.True(t, tr.Satisfied(ReqDetailedLogs))

	tr.Emit(Event{Kind: Read, Txn: 1, Wall: time.Now()}) // no message
	require.False(t, tr.Satisfied(ReqDetailedLogs))
}

func TestTrackerMetrics(t *testing.T) {
	tr := NewTracker()
	base := time.Now()

	emitAt(tr, Started, 1, base)
	emitAt(tr, Waiting, 1, base.Add(10*time.Millisecond))
	emitAt(tr, LockAcquired, 1, base.Add(40*time.Millisecond))
	emitAt(tr, Committed, 1, base.Add(50*time.Millisecond))

	emitAt(tr, Started, 2, base)
	emitAt(tr, Aborted, 2, base.Add(5*time.Millisecond))

	m := tr.Snapshot()
	require.Equal(t, 1, m.Aborts)
	require.Equal(t, 1, m.Commits)
	require.Equal(t, 1, m.Waits)
	require.Equal(t, 30*time.Millisecond, m.AvgWait)
	require.Equal(t, 2, m.EventCounts[Started])
}

func TestTrackerIgnoresDoneForPredicates(t *testing.T) {
	tr := NewTracker()
	tr.Emit(Event{Kind: Done, Wall: time.Now(), Message: "all transactions committed"})

	require.False(t, tr.Satisfied(ReqSimulated))
	require.False(t, tr.Satisfied(ReqConcurrency))
}

func TestRequirementStrings(t *testing.T) {
	seen := map[string]bool{}
	for r := Requirement(0); r < NumRequirements; r++ {
		s := r.String()
		require.NotEmpty(t, s)
		require.False(t, seen[s], "duplicate requirement description %q", s)
		seen[s] = true
	}
}
