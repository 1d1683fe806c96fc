package transaction

import (
	"sync"
	"testing"
)

func TestOracleStartsAtZero(t *testing.T) {
	o := NewOracle()

	if ts := o.Next(); ts != 0 {
		t.Fatalf("first timestamp = %d, want 0", ts)
	}
}

func TestOracleStrictlyIncreasing(t *testing.T) {
	o := NewOracle()

	prev := o.Next()
	for i := 0; i < 1000; i++ {
		ts := o.Next()
		if ts <= prev {
			t.Fatalf("timestamp %d not greater than previous %d", ts, prev)
		}
		prev = ts
	}
}

func TestOracleConcurrentUniqueness(t *testing.T) {
	o := NewOracle()

	const workers = 8
	const perWorker = 500

	results := make([][]Timestamp, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results[w] = append(results[w], o.Next())
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[Timestamp]bool)
	for _, batch := range results {
		for _, ts := range batch {
			if seen[ts] {
				t.Fatalf("timestamp %d issued twice", ts)
			}
			seen[ts] = true
		}
	}

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique timestamps, got %d", workers*perWorker, len(seen))
	}
}

func TestOraclesAreIndependent(t *testing.T) {
	a := NewOracle()
	b := NewOracle()

	a.Next()
	a.Next()

	if ts := b.Next(); ts != 0 {
		t.Errorf("second oracle first timestamp = %d, want 0", ts)
	}
}

func TestTimestampOlder(t *testing.T) {
	if !Timestamp(1).Older(2) {
		t.Error("expected 1 to be older than 2")
	}
	if Timestamp(2).Older(1) {
		t.Error("expected 2 not to be older than 1")
	}
	if Timestamp(3).Older(3) {
		t.Error("a timestamp must not be older than itself")
	}
}
