package jobqueue

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCanceled is returned to waiters whose ticket was canceled.
	ErrCanceled = errors.New("job canceled")
	// ErrQueueClosed is returned for jobs that were pending when the queue
	// was closed, or submitted afterwards.
	ErrQueueClosed = errors.New("job queue closed")
)

// IsCanceled reports whether err stems from cancellation rather than from a
// failed job.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Policy orders and merges jobs.
type Policy[J any] interface {
	// Coalesce returns the merged job and true if newJob replaces the
	// pending job existing.
	Coalesce(newJob, existing J) (J, bool)
	// Priority returns the current priority of job; higher runs first.
	Priority(job J) float64
}

// RunFunc executes one job.
type RunFunc[J any] func(ctx context.Context, job J) error

type entry[J any] struct {
	job     J
	seq     uint64
	tickets []*Ticket
	live    int
	cancel  context.CancelFunc
}

// Queue runs jobs one at a time in priority order.
type Queue[J any] struct {
	policy Policy[J]
	run    RunFunc[J]

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*entry[J]
	running *entry[J]
	seq     uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a queue and starts its worker.
func New[J any](policy Policy[J], run RunFunc[J]) *Queue[J] {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue[J]{
		policy: policy,
		run:    run,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Submit queues job, or merges it into a pending job as decided by the
// policy.
func (q *Queue[J]) Submit(job J) *Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()

	t := newTicket()
	if q.closed {
		t.resolve(ErrQueueClosed)
		return t
	}

	for _, e := range q.pending {
		merged, ok := q.policy.Coalesce(job, e.job)
		if !ok {
			continue
		}
		e.job = merged
		q.attach(e, t)
		t.coalesced = true
		return t
	}

	q.seq++
	e := &entry[J]{job: job, seq: q.seq}
	q.attach(e, t)
	q.pending = append(q.pending, e)
	q.cond.Signal()
	return t
}

func (q *Queue[J]) attach(e *entry[J], t *Ticket) {
	e.tickets = append(e.tickets, t)
	e.live++
	t.cancelFn = func() { q.cancelTicket(e, t) }
}

func (q *Queue[J]) cancelTicket(e *entry[J], t *Ticket) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.resolved {
		return
	}
	t.resolve(ErrCanceled)
	e.live--
	if e.live == 0 && e.cancel != nil {
		e.cancel()
	}
}

// Len returns the number of pending jobs, including canceled ones not yet
// skipped.
func (q *Queue[J]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops the worker after the running job, resolving pending tickets
// with ErrQueueClosed. The running job's context is canceled.
func (q *Queue[J]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	q.cancel()
	<-q.done
}

func (q *Queue[J]) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			for _, e := range q.pending {
				q.finishLocked(e, ErrQueueClosed)
			}
			q.pending = nil
			q.mu.Unlock()
			return
		}

		e := q.pickLocked()
		if e == nil {
			q.mu.Unlock()
			continue
		}
		ctx, cancel := context.WithCancel(q.ctx)
		e.cancel = cancel
		q.running = e
		job := e.job
		q.mu.Unlock()

		err := q.run(ctx, job)
		cancel()

		q.mu.Lock()
		q.running = nil
		q.finishLocked(e, err)
		q.mu.Unlock()
	}
}

// pickLocked removes and returns the pending entry with the highest
// priority. Entries without live tickets are dropped on the way.
func (q *Queue[J]) pickLocked() *entry[J] {
	best := -1
	var bestPriority float64

	live := q.pending[:0]
	for _, e := range q.pending {
		if e.live == 0 {
			continue
		}
		live = append(live, e)
	}
	for i := len(live); i < len(q.pending); i++ {
		q.pending[i] = nil
	}
	q.pending = live

	for i, e := range q.pending {
		p := q.policy.Priority(e.job)
		if best < 0 || p > bestPriority || (p == bestPriority && e.seq < q.pending[best].seq) {
			best = i
			bestPriority = p
		}
	}
	if best < 0 {
		return nil
	}

	e := q.pending[best]
	q.pending = append(q.pending[:best], q.pending[best+1:]...)
	return e
}

func (q *Queue[J]) finishLocked(e *entry[J], err error) {
	for _, t := range e.tickets {
		if !t.resolved {
			t.resolve(err)
		}
	}
}
