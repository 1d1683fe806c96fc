package lock

import (
	"testing"

	"github.com/diisilva/deadlock-simulation/pkg/concurrency/transaction"
)

func TestDecideOlderRequesterWaits(t *testing.T) {
	if d := Decide(1, 5); d != Wait {
		t.Errorf("Decide(1, 5) = %v, want WAIT", d)
	}
	if d := Decide(0, 1); d != Wait {
		t.Errorf("Decide(0, 1) = %v, want WAIT", d)
	}
}

func TestDecideYoungerRequesterDies(t *testing.T) {
	if d := Decide(5, 1); d != Die {
		t.Errorf("Decide(5, 1) = %v, want DIE", d)
	}
}

func TestDecideEqualAgeDies(t *testing.T) {
	// The oracle never issues ties, but the rule must still be total.
	if d := Decide(3, 3); d != Die {
		t.Errorf("Decide(3, 3) = %v, want DIE", d)
	}
}

func TestDecideSoundness(t *testing.T) {
	for requester := transaction.Timestamp(0); requester < 10; requester++ {
		for holder := transaction.Timestamp(0); holder < 10; holder++ {
			d := Decide(requester, holder)
			if requester < holder && d != Wait {
				t.Errorf("Decide(%d, %d) = %v, want WAIT", requester, holder, d)
			}
			if requester >= holder && d != Die {
				t.Errorf("Decide(%d, %d) = %v, want DIE", requester, holder, d)
			}
		}
	}
}

func TestDecisionString(t *testing.T) {
	if Wait.String() != "WAIT" {
		t.Errorf("Wait.String() = %q", Wait.String())
	}
	if Die.String() != "DIE" {
		t.Errorf("Die.String() = %q", Die.String())
	}
}
