package jobqueue

import "context"

// Ticket tracks one submission.
type Ticket struct {
	done      chan struct{}
	err       error
	resolved  bool
	coalesced bool
	cancelFn  func()
}

func newTicket() *Ticket {
	return &Ticket{done: make(chan struct{})}
}

// resolve must be called with the queue lock held.
func (t *Ticket) resolve(err error) {
	t.err = err
	t.resolved = true
	close(t.done)
}

// Done is closed when the ticket is resolved.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Err returns the job result once Done is closed.
func (t *Ticket) Err() error {
	<-t.done
	return t.err
}

// Wait blocks until the job finished, the ticket was canceled, or ctx is
// done.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel withdraws this submission. It is a no-op once the ticket is
// resolved.
func (t *Ticket) Cancel() {
	if t.cancelFn != nil {
		t.cancelFn()
	}
}

// Coalesced reports whether the submission was merged into a pending job.
func (t *Ticket) Coalesced() bool {
	return t.coalesced
}
