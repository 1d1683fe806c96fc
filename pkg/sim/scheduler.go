package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/diisilva/deadlock-simulation/pkg/concurrency/lock"
	"github.com/diisilva/deadlock-simulation/pkg/concurrency/transaction"
	"github.com/diisilva/deadlock-simulation/pkg/events"
	"github.com/diisilva/deadlock-simulation/pkg/logging"
)

// DelayFunc produces the next inter-operation delay for one transaction. The
// rng is that transaction's private sub-generator, seeded from (seed + index),
// so the delay sequence of a transaction never depends on how the workers
// interleave.
type DelayFunc func(txnID int, rng *rand.Rand) time.Duration

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelayFunc replaces the uniform random delay draw, mainly for tests that
// need exact control over the schedule.
func WithDelayFunc(fn DelayFunc) Option {
	return func(s *Scheduler) { s.delayFn = fn }
}

// Scheduler runs one worker goroutine per transaction, injects the randomized
// delays, and restarts aborted attempts with fresh timestamps until every
// transaction has committed.
type Scheduler struct {
	cfg     Config
	oracle  *transaction.Oracle
	table   *lock.Table
	emitter events.Emitter
	delayFn DelayFunc
	runID   uuid.UUID

	aborts atomic.Int64
}

// New validates the configuration and assembles a scheduler. Each scheduler
// owns its oracle and lock table, so independent simulations never share
// state.
func New(cfg Config, emitter events.Emitter, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if emitter == nil {
		emitter = events.Nop{}
	}

	s := &Scheduler{
		cfg:     cfg,
		oracle:  transaction.NewOracle(),
		table:   lock.NewTable(ResourceX, ResourceY),
		emitter: emitter,
		runID:   uuid.New(),
	}
	min, max := cfg.delayBounds()
	s.delayFn = func(_ int, rng *rand.Rand) time.Duration {
		if max <= min {
			return min
		}
		return min + time.Duration(rng.Float64()*float64(max-min))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Table exposes the lock table for read-only snapshots (resource display).
func (s *Scheduler) Table() *lock.Table {
	return s.table
}

// Aborts returns how many attempts have died so far in this run.
func (s *Scheduler) Aborts() int64 {
	return s.aborts.Load()
}

// Run drives every transaction to COMMITTED and then emits the single run
// completion event. It returns once all workers have finished or the context
// is cancelled between attempts.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logging.With("run", s.runID.String())
	log.Info("simulation starting",
		"transactions", s.cfg.Transactions,
		"seed", s.cfg.Seed,
		"force_contention", s.cfg.ForceContention)
	start := time.Now()

	// Initial timestamps are minted in index order before any worker starts,
	// so the starting age order is the index order regardless of goroutine
	// scheduling. Restart timestamps are minted by the workers themselves.
	initial := make([]transaction.Timestamp, s.cfg.Transactions)
	for i := range initial {
		initial[i] = s.oracle.Next()
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= s.cfg.Transactions; i++ {
		id, ts := i, initial[i-1]
		g.Go(func() error {
			return s.runTransaction(ctx, id, ts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.emitter.Emit(events.Event{
		Kind:    events.Done,
		Wall:    time.Now(),
		Message: "all transactions committed",
	})
	log.Info("simulation finished",
		"elapsed", time.Since(start),
		"aborts", s.aborts.Load())
	return nil
}

// runTransaction is the restart loop of one logical transaction: it re-invokes
// the script machine with a replacement Transaction value after every abort,
// never recursing, until an attempt commits.
func (s *Scheduler) runTransaction(ctx context.Context, id int, ts transaction.Timestamp) error {
	rng := rand.New(rand.NewSource(s.cfg.Seed + int64(id)))
	m := &machine{
		table:   s.table,
		emitter: s.emitter,
		delay: func() {
			if d := s.delayFn(id, rng); d > 0 {
				time.Sleep(d)
			}
		},
	}
	first, second := s.scriptOrder(id)
	log := logging.With("run", s.runID.String(), "txn", id)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		txn := transaction.New(id, attempt, ts)
		log.Debug("attempt starting", "attempt", attempt, "ts", int64(ts))
		if m.runAttempt(txn, first, second) {
			log.Debug("committed", "attempt", attempt)
			return nil
		}

		s.aborts.Inc()
		m.delay()
		ts = s.oracle.Next()
	}
}

// scriptOrder returns the acquisition order for one transaction. In forced
// contention mode even ids go Y then X while odd ids go X then Y, creating
// opposite lock orders on demand.
func (s *Scheduler) scriptOrder(id int) (first, second string) {
	if s.cfg.ForceContention && id%2 == 0 {
		return ResourceY, ResourceX
	}
	return ResourceX, ResourceY
}
