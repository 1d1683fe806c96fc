// Package lock implements exclusive per-resource locking arbitrated by the
// wait-die timestamp-ordering protocol.
//
// # Overview
//
// Each named resource has at most one holder at a time. When a request
// conflicts with the current holder, the arbitrator compares timestamps:
//
//   - requester strictly older than holder — WAIT. Older transactions may
//     wait for younger ones; no younger transaction can ever force an older
//     one to abort, so the oldest transaction in the system always makes
//     progress.
//   - requester same age or younger — DIE. The requester aborts its attempt
//     instead of waiting, and is restarted with a fresh (younger) timestamp.
//
// A deadlock cycle would require every member to be older than the next,
// which is impossible in a total order, so cycles are prevented rather than
// detected. This replaces wait-for-graph cycle detection entirely: there is
// no graph to maintain and no victim selection.
//
// # Components
//
//   - [Table]  — per-resource holder and wait-set state; the single public
//     entry point via [Table.Acquire], [Table.Await] and [Table.Release].
//   - [Decide] — the stateless wait-die verdict over two timestamps.
//
// # Acquisition Flow
//
// [Table.Acquire] grants a free or re-entrant request immediately. On
// conflict it consults [Decide]: WAIT enqueues the requester and returns
// [MustWait], after which the caller blocks in [Table.Await]; DIE returns
// [MustDie] without touching the wait set.
//
// [Table.Release] clears the holder and wakes exactly one waiter — the one
// with the smallest timestamp, chosen by an explicit scan of the wait set.
// Oldest-first wake keeps the wake step consistent with wait-die's age-based
// starvation-freedom guarantee; plain FIFO would not. The woken worker
// re-checks the resource inside the resource's own critical section and may
// have to wait again, or die, if a third party took the lock in between.
//
// Installing a new holder — whether a fresh acquirer taking a free lock or a
// woken waiter granting itself — re-arbitrates the remaining wait set: every
// waiter that is not strictly older than the new holder is woken so its
// re-check returns [MustDie]. A transaction therefore never sleeps behind a
// holder older than itself, which is exactly the wait relation wait-die
// forbids.
//
// # Concurrency
//
// Every mutation of a resource's holder/wait-set pair happens under that
// resource's own mutex. Distinct resources are mutated concurrently without
// interference. Waiters block on a per-waiter channel holding at most one
// token; there is no polling and no timeout — liveness comes from the DIE
// path, not from timers.
package lock
