package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Emit(Event{Kind: Started, Txn: 1, Message: "T1 entered execution"})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case e := <-ch:
			require.Equal(t, Started, e.Kind)
			require.Equal(t, 1, e.Txn)
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBusNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			bus.Emit(Event{Kind: Read, Txn: 1})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full subscriber")
	}

	require.EqualValues(t, 9, bus.Dropped())
}

func TestBusCloseClosesChannels(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(1)
	bus.Close()

	_, open := <-ch
	require.False(t, open, "subscriber channel should be closed")

	// Emitting after close must be a no-op, not a panic.
	bus.Emit(Event{Kind: Started})
}

func TestCombineFansOutInOrder(t *testing.T) {
	first := NewRecorder()
	second := NewRecorder()
	em := Combine(first, second)

	em.Emit(Event{Kind: Write, Txn: 2})

	require.Len(t, first.Events(), 1)
	require.Len(t, second.Events(), 1)
}

func TestRecorderByTxnAndKinds(t *testing.T) {
	rec := NewRecorder()
	rec.Emit(Event{Kind: Started, Txn: 1})
	rec.Emit(Event{Kind: Started, Txn: 2})
	rec.Emit(Event{Kind: LockAcquired, Txn: 1, Resource: "X"})
	rec.Emit(Event{Kind: Committed, Txn: 1})

	require.Len(t, rec.Events(), 4)
	require.Equal(t, []Kind{Started, LockAcquired, Committed}, rec.Kinds(1))
	require.Equal(t, []Kind{Started}, rec.Kinds(2))
}
