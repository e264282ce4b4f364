package fallback

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pollnerd/internal/poll"
)

// Channel is the human fallback channel for one recipient. It implements
// poll.Escalator and is shared by every session engine escalating to that
// recipient; the single read cursor is what keeps a reply from being
// consumed twice when sessions overlap.
//
// Known limitation: when two sessions escalate to the same human within a
// short window, a bare numeric reply is inherently ambiguous. The channel
// resolves it against the oldest eligible ticket (first-eligible-wins)
// rather than guessing from content.
type Channel struct {
	store     MessageStore
	sender    Sender
	recipient string
	interval  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	cursor  int64
	tickets []*Ticket // escalation order, awaiting only
	running bool

	closed chan struct{}
	wg     sync.WaitGroup
}

// Options configure a Channel.
type Options struct {
	// Recipient is the phone number or iCloud address escalations go to.
	Recipient string

	// ScanInterval is how often the dispatcher checks for new replies.
	ScanInterval time.Duration
}

// NewChannel creates a fallback channel for one recipient.
func NewChannel(store MessageStore, sender Sender, opts Options, logger *zap.Logger) *Channel {
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = 2 * time.Second
	}
	return &Channel{
		store:     store,
		sender:    sender,
		recipient: opts.Recipient,
		interval:  opts.ScanInterval,
		logger:    logger.Named("fallback"),
		closed:    make(chan struct{}),
	}
}

// Escalate sends the question to the recipient and returns a ticket that
// resolves when a correlated numeric reply arrives.
func (c *Channel) Escalate(ctx context.Context, q *poll.Question, reason poll.EscalationReason) (poll.Ticket, error) {
	if c.recipient == "" {
		return nil, fmt.Errorf("no fallback recipient configured")
	}

	// Baseline the cursor past pre-escalation chatter, but only when no
	// other ticket is outstanding; skipping rows while a ticket waits
	// could swallow its reply.
	latest, err := c.store.LatestRowID(ctx, c.recipient)
	if err != nil {
		c.logger.Warn("could not baseline message cursor", zap.Error(err))
		latest = 0
	}

	t := &Ticket{
		ID:          uuid.NewString(),
		channel:     c,
		optionCount: len(q.Options),
		SentAt:      time.Now(),
		done:        make(chan struct{}),
	}

	if err := c.sender.Send(ctx, c.recipient, composeMessage(q, reason)); err != nil {
		return nil, fmt.Errorf("send escalation: %w", err)
	}

	c.mu.Lock()
	if len(c.tickets) == 0 && latest > c.cursor {
		c.cursor = latest
	}
	c.tickets = append(c.tickets, t)
	if !c.running {
		c.running = true
		c.wg.Add(1)
		go c.dispatch()
	}
	c.mu.Unlock()

	c.logger.Info("escalation sent",
		zap.String("ticket", t.ID),
		zap.String("recipient", c.recipient),
		zap.Stringer("reason", reason),
		zap.Int("options", t.optionCount))
	return t, nil
}

// Close stops the reply dispatcher. Outstanding tickets are cancelled.
func (c *Channel) Close() {
	c.mu.Lock()
	pending := make([]*Ticket, len(c.tickets))
	copy(pending, c.tickets)
	c.mu.Unlock()
	for _, t := range pending {
		t.Cancel()
	}

	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
	c.wg.Wait()
}

// dispatch scans for new replies while tickets are outstanding. It exits
// once the ticket list drains; the next escalation restarts it.
func (c *Channel) dispatch() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
		}

		c.scan()

		c.mu.Lock()
		if len(c.tickets) == 0 {
			c.running = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// scan advances the cursor over new messages exactly once and resolves the
// oldest eligible ticket for each valid numeric reply. Replies that fail to
// parse or fall out of range never resolve anything; the cursor still moves
// so they are not rescanned.
func (c *Channel) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.mu.Lock()
	cursor := c.cursor
	c.mu.Unlock()

	msgs, err := c.store.After(ctx, c.recipient, cursor)
	if err != nil {
		c.logger.Warn("reply scan failed", zap.Error(err))
		return
	}

	for _, m := range msgs {
		c.mu.Lock()
		if m.RowID > c.cursor {
			c.cursor = m.RowID
		}
		if m.FromMe || strings.TrimSpace(m.Text) == "" {
			c.mu.Unlock()
			continue
		}

		n, perr := strconv.Atoi(strings.TrimSpace(m.Text))
		if perr != nil {
			c.mu.Unlock()
			c.logger.Debug("ignoring non-numeric reply", zap.String("text", m.Text))
			continue
		}

		resolved := c.resolveLocked(m, n)
		c.mu.Unlock()

		if resolved != nil {
			c.logger.Info("reply resolved escalation",
				zap.String("ticket", resolved.ID),
				zap.Int("option", n))
		} else {
			c.logger.Debug("reply matched no eligible ticket", zap.Int("option", n))
		}
	}
}

// resolveLocked finds the oldest eligible ticket for the reply and resolves
// it. Eligible: still awaiting, sent before the reply arrived, and the
// number is within the ticket's option range. Caller holds c.mu.
func (c *Channel) resolveLocked(m Message, n int) *Ticket {
	for i, t := range c.tickets {
		if !m.Time.After(t.SentAt) {
			continue
		}
		if n < 1 || n > t.optionCount {
			continue
		}
		c.tickets = append(c.tickets[:i], c.tickets[i+1:]...)
		t.complete(n-1, nil)
		return t
	}
	return nil
}

// withdraw removes a ticket from the awaiting list, if present.
func (c *Channel) withdraw(t *Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.tickets {
		if cur == t {
			c.tickets = append(c.tickets[:i], c.tickets[i+1:]...)
			return
		}
	}
}

func composeMessage(q *poll.Question, reason poll.EscalationReason) string {
	var b strings.Builder
	if reason == poll.ReasonClassifierError {
		b.WriteString("PollEv help! Automated help was unavailable, pick for me.\n")
	} else {
		b.WriteString("PollEv help! Not confident about this one.\n")
	}
	fmt.Fprintf(&b, "Q: %s\n", q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	fmt.Fprintf(&b, "Reply with 1-%d", len(q.Options))
	return b.String()
}
