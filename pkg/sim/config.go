package sim

import (
	"time"

	"github.com/cockroachdb/errors"
)

// The two contended resources. Every transaction's script touches both.
const (
	ResourceX = "X"
	ResourceY = "Y"
)

// Config is the external configuration of a simulation run. Invalid values
// are rejected before any worker starts.
type Config struct {
	// Transactions is the number of logical transactions to run.
	Transactions int
	// Seed feeds the deterministic delay generators. The same seed, count
	// and delay bounds reproduce the same delay sequences per transaction.
	Seed int64
	// MinDelay and MaxDelay bound the randomized inter-operation delay,
	// in seconds.
	MinDelay float64
	MaxDelay float64
	// ForceContention makes even-numbered transactions acquire Y before X
	// while odd-numbered ones acquire X before Y, manufacturing circular
	// wait conditions on demand.
	ForceContention bool
}

// DefaultConfig mirrors the reference simulation's defaults.
func DefaultConfig() Config {
	return Config{
		Transactions: 4,
		Seed:         42,
		MinDelay:     0.1,
		MaxDelay:     0.5,
	}
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c Config) Validate() error {
	if c.Transactions < 1 {
		return errors.Newf("transaction count must be at least 1, got %d", c.Transactions)
	}
	if c.MinDelay < 0 {
		return errors.Newf("minimum delay must not be negative, got %g", c.MinDelay)
	}
	if c.MaxDelay < c.MinDelay {
		return errors.Newf("maximum delay %g is below minimum delay %g", c.MaxDelay, c.MinDelay)
	}
	return nil
}

func (c Config) delayBounds() (min, max time.Duration) {
	return time.Duration(c.MinDelay * float64(time.Second)),
		time.Duration(c.MaxDelay * float64(time.Second))
}
