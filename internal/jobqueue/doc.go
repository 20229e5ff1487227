// Package jobqueue implements a priority queue drained by a single worker.
//
// The ordering and de-duplication rules are supplied by a Policy:
//
//   - Coalesce merges a newly submitted job into a pending one, so there is
//     at most one pending entry per logical job. Waiters of both submissions
//     share the result.
//   - Priority is evaluated when the worker picks its next job, not at
//     submission. Jobs can therefore overtake each other as the inputs of
//     the priority function change. Ties go to the earlier submission.
//
// Every submission returns a Ticket. Canceling a ticket resolves it with
// ErrCanceled right away; an entry whose tickets are all canceled is skipped
// when it reaches the front, or has its context canceled if it is already
// running.
package jobqueue
