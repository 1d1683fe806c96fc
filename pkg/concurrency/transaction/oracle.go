package transaction

import "go.uber.org/atomic"

// Timestamp is a logical age marker. Smaller means older. The oracle never
// returns the same value twice, so timestamps form a total order with no ties.
type Timestamp int64

// Older reports whether ts was issued strictly before other.
func (ts Timestamp) Older(other Timestamp) bool {
	return ts < other
}

// Oracle issues strictly increasing timestamps, one per transaction creation
// or restart. It is safe for concurrent use and owned by whoever created it,
// so independent simulations never share counter state.
type Oracle struct {
	counter atomic.Int64
}

func NewOracle() *Oracle {
	return &Oracle{}
}

// Next returns a timestamp strictly greater than every previously returned
// value. The first call returns 0.
func (o *Oracle) Next() Timestamp {
	return Timestamp(o.counter.Inc() - 1)
}
