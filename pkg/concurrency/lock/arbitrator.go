package lock

import "github.com/diisilva/deadlock-simulation/pkg/concurrency/transaction"

// Decision is the arbitrator's verdict on a conflicting lock request.
type Decision int

const (
	// Wait lets the requester block until the holder releases the lock.
	Wait Decision = iota
	// Die tells the requester to abort its current attempt and restart with
	// a fresh timestamp.
	Die
)

func (d Decision) String() string {
	if d == Wait {
		return "WAIT"
	}
	return "DIE"
}

// Decide applies the wait-die rule: a strictly older requester waits for the
// younger holder; a same-age-or-younger requester dies. A deadlock cycle would
// need every member to be older than the next, which a total order rules out,
// so no cycle can ever form.
func Decide(requester, holder transaction.Timestamp) Decision {
	if requester.Older(holder) {
		return Wait
	}
	return Die
}
