package poll

import (
	"context"
	"errors"
	"time"

	"pollnerd/internal/classify"
)

// Sentinel errors shared between the engine and its collaborators.
var (
	// ErrInvalidIndex is returned by a Surface when asked to click an
	// option outside the displayed range. Nothing is clicked.
	ErrInvalidIndex = errors.New("option index out of range")

	// ErrReplyTimeout is returned by Ticket.Await when no eligible reply
	// arrived before the deadline.
	ErrReplyTimeout = errors.New("no reply before deadline")

	// ErrTicketCancelled is returned by Ticket.Await when the ticket was
	// cancelled (superseded) while waiting.
	ErrTicketCancelled = errors.New("escalation ticket cancelled")
)

// Surface is one live poll session page. Implementations are exclusively
// owned by a single Engine; they are never shared across sessions.
type Surface interface {
	// Extract returns the currently displayed question, or (nil, nil)
	// when no question is visible or the page is mid-transition. An error
	// means the surface itself is failing, not that the poll is idle.
	Extract(ctx context.Context) (*Question, error)

	// ClickOption records the given 0-based option as the chosen answer.
	// The click is irreversible from the engine's perspective.
	ClickOption(ctx context.Context, index int) error
}

// Classifier recommends an option for a question. An error means no
// recommendation exists and nothing from the result may be submitted.
type Classifier interface {
	Classify(ctx context.Context, question string, options []string) (classify.Classification, error)
}

// EscalationReason distinguishes why a question went to the human channel;
// the outbound wording differs between the two.
type EscalationReason int

const (
	// ReasonLowConfidence: the classifier produced a recommendation but
	// does not trust it.
	ReasonLowConfidence EscalationReason = iota
	// ReasonClassifierError: automated help was unavailable entirely.
	ReasonClassifierError
)

func (r EscalationReason) String() string {
	if r == ReasonClassifierError {
		return "classifier_error"
	}
	return "low_confidence"
}

// Ticket is one outstanding escalation awaiting a human reply.
type Ticket interface {
	// Await blocks until an eligible reply resolves the ticket, the
	// timeout elapses (ErrReplyTimeout), the ticket is cancelled
	// (ErrTicketCancelled), or ctx is done. The returned index is
	// 0-based and already validated against the question's option count.
	Await(ctx context.Context, timeout time.Duration) (int, error)

	// Cancel withdraws the ticket; late replies addressed to it are
	// discarded. Safe to call more than once.
	Cancel()
}

// Escalator sends escalation requests to the human fallback channel.
type Escalator interface {
	Escalate(ctx context.Context, q *Question, reason EscalationReason) (Ticket, error)
}

// Notifier surfaces operator-facing signals outside the reply channel, so
// "needs a number" and "gave up" are distinguishable at a glance.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}
