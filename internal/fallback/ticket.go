package fallback

import (
	"context"
	"sync"
	"time"

	"pollnerd/internal/poll"
)

// Ticket is one outstanding escalation. It resolves at most once: with a
// 0-based option index, or with cancellation.
type Ticket struct {
	ID     string
	SentAt time.Time

	channel     *Channel
	optionCount int

	mu   sync.Mutex
	done chan struct{}
	idx  int
	err  error
}

// Await blocks until the ticket resolves, the timeout elapses, or ctx is
// done. Waiting never holds a goroutine beyond the select; supersession
// cancels cleanly through Cancel or ctx.
func (t *Ticket) Await(ctx context.Context, timeout time.Duration) (int, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.idx, t.err
	case <-timer.C:
		return 0, poll.ErrReplyTimeout
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Cancel withdraws the ticket; a late reply addressed to it is discarded by
// the dispatcher because the ticket is no longer eligible. Idempotent.
func (t *Ticket) Cancel() {
	t.channel.withdraw(t)
	t.complete(0, poll.ErrTicketCancelled)
}

// complete resolves the ticket exactly once.
func (t *Ticket) complete(idx int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.done:
		return
	default:
	}
	t.idx = idx
	t.err = err
	close(t.done)
}
