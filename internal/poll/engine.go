package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pollnerd/internal/classify"
)

// Config holds per-session engine tunables. Intervals are injected rather
// than hard-coded so tests can run the state machine on millisecond ticks.
type Config struct {
	// Session name, used only for logging
	Session string

	// How often the surface is re-checked while idle or waiting
	PollInterval time.Duration

	// Deadline for a human reply to an escalation
	ReplyTimeout time.Duration

	// Consecutive Extract errors tolerated before the surface is
	// declared lost and the engine exits
	MaxExtractFailures int
}

func (c *Config) withDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.ReplyTimeout <= 0 {
		c.ReplyTimeout = 10 * time.Minute
	}
	if c.MaxExtractFailures <= 0 {
		c.MaxExtractFailures = 5
	}
}

// Engine monitors one poll session: it detects new questions, classifies
// them, auto-submits confident recommendations, and escalates the rest to a
// human. Exactly one goroutine runs Run; everything the engine owns
// (questions, outcomes, the surface) is confined to that session.
type Engine struct {
	cfg        Config
	surface    Surface
	classifier Classifier
	escalator  Escalator
	notifier   Notifier
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	outcomes map[string]Outcome
}

// New creates a session engine. notifier may be nil.
func New(cfg Config, surface Surface, classifier Classifier, escalator Escalator, notifier Notifier, logger *zap.Logger) *Engine {
	cfg.withDefaults()
	return &Engine{
		cfg:        cfg,
		surface:    surface,
		classifier: classifier,
		escalator:  escalator,
		notifier:   notifier,
		logger:     logger.Named("engine").With(zap.String("session", cfg.Session)),
		state:      StateIdle,
		outcomes:   make(map[string]Outcome),
	}
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Outcome reports the terminal disposition of a question key, if any.
func (e *Engine) Outcome(key string) (Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.outcomes[key]
	return o, ok
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	prev := e.state
	e.state = s
	e.mu.Unlock()
	if prev != s {
		e.logger.Debug("state transition", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

func (e *Engine) finish(q *Question, o Outcome) {
	e.mu.Lock()
	e.outcomes[q.Key()] = o
	e.mu.Unlock()
}

func (e *Engine) settled(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.outcomes[key]
	return ok
}

// Run drives the monitoring loop until ctx is cancelled or the surface is
// lost. Detection is poll-driven: the loop is the only place a new question
// can enter the state machine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("session engine started",
		zap.Duration("poll_interval", e.cfg.PollInterval),
		zap.Duration("reply_timeout", e.cfg.ReplyTimeout))

	failures := 0
	for {
		q, err := e.surface.Extract(ctx)
		switch {
		case ctx.Err() != nil:
			e.logger.Info("session engine stopped")
			return ctx.Err()
		case err != nil:
			failures++
			if failures >= e.cfg.MaxExtractFailures {
				e.logger.Error("session surface lost", zap.Error(err))
				return fmt.Errorf("session surface lost: %w", err)
			}
			e.logger.Warn("question extraction failed",
				zap.Int("consecutive", failures), zap.Error(err))
		default:
			failures = 0
			if q != nil && !e.settled(q.Key()) {
				e.handle(ctx, q)
			} else {
				e.setState(StateIdle)
			}
		}

		select {
		case <-ctx.Done():
			e.logger.Info("session engine stopped")
			return ctx.Err()
		case <-time.After(e.cfg.PollInterval):
		}
	}
}

// handle resolves q and any question that supersedes it, returning once no
// unresolved question is in flight.
func (e *Engine) handle(ctx context.Context, q *Question) {
	for q != nil && ctx.Err() == nil {
		if e.settled(q.Key()) {
			return
		}
		e.setState(StateDetected)
		e.logger.Info("new question detected",
			zap.String("question", q.Text),
			zap.Strings("options", q.Options))
		q = e.resolve(ctx, q)
	}
}

// resolve runs one question through classification and either submission or
// escalation. It returns the superseding question when the displayed
// question changed mid-flight, nil otherwise.
func (e *Engine) resolve(ctx context.Context, q *Question) *Question {
	e.setState(StateClassifying)
	cls, next, err := e.classifyWatched(ctx, q)
	if next != nil {
		e.logger.Info("question changed during classification, superseding")
		return next
	}
	if ctx.Err() != nil {
		return nil
	}

	switch {
	case err != nil:
		e.logger.Warn("classifier failure, escalating", zap.Error(err))
		return e.escalate(ctx, q, ReasonClassifierError)
	case cls.Tier == classify.TierLow:
		e.logger.Info("low confidence, escalating",
			zap.String("question_type", cls.QuestionType),
			zap.String("reasoning", truncate(cls.Reasoning, 100)))
		return e.escalate(ctx, q, ReasonLowConfidence)
	default:
		e.logger.Info("auto answering",
			zap.String("confidence", string(cls.Tier)),
			zap.Int("option", cls.OptionIndex+1))
		e.setState(StateAutoAnswering)
		e.submit(ctx, q, cls.OptionIndex)
		return nil
	}
}

// classifyWatched calls the classifier while watching the surface; if the
// displayed question changes, the classification is cancelled and the new
// question returned.
func (e *Engine) classifyWatched(ctx context.Context, q *Question) (classify.Classification, *Question, error) {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	changed := e.watchForChange(wctx, cancel, q)

	cls, err := e.classifier.Classify(wctx, q.Text, q.Options)
	cancel()
	if next := <-changed; next != nil {
		return classify.Classification{}, next, nil
	}
	return cls, nil, err
}

// escalate hands q to the human channel and waits for resolution, still
// watching the surface so a changed question cancels the outstanding ticket.
// Returns the superseding question, if any.
func (e *Engine) escalate(ctx context.Context, q *Question, reason EscalationReason) *Question {
	e.setState(StateEscalating)

	ticket, err := e.escalator.Escalate(ctx, q, reason)
	if err != nil {
		e.logger.Error("escalation send failed", zap.Error(err))
		e.finish(q, OutcomeUnresolved)
		e.notify(ctx, "pollnerd: escalation failed",
			fmt.Sprintf("Could not reach the operator for %q; left unanswered.", truncate(q.Text, 60)))
		return nil
	}
	e.logger.Info("escalated to human", zap.Stringer("reason", reason))

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	changed := e.watchForChange(wctx, cancel, q)

	idx, err := ticket.Await(wctx, e.cfg.ReplyTimeout)
	cancel()
	if next := <-changed; next != nil {
		ticket.Cancel()
		e.logger.Info("question changed while awaiting reply, superseding escalation")
		return next
	}

	switch {
	case err == nil:
		e.logger.Info("human reply received", zap.Int("option", idx+1))
		e.submit(ctx, q, idx)
	case ctx.Err() != nil:
		ticket.Cancel()
	case errors.Is(err, ErrReplyTimeout):
		ticket.Cancel()
		e.finish(q, OutcomeUnresolved)
		e.logger.Warn("no reply before deadline, leaving question unanswered")
		e.notify(ctx, "pollnerd: gave up",
			fmt.Sprintf("No reply in time for %q; nothing was submitted.", truncate(q.Text, 60)))
	default:
		ticket.Cancel()
		e.finish(q, OutcomeUnresolved)
		e.logger.Error("escalation wait failed", zap.Error(err))
	}
	return nil
}

// submitClickTimeout bounds one click once the submission decision is made.
// The click runs detached from the session context so a shutdown arriving
// mid-flight cannot abandon it half-done.
const submitClickTimeout = 15 * time.Second

// submit performs the at-most-once answer submission for q. A failed click
// is retried once after re-entering Detected; a second failure is terminal
// for this question. Cancellation stops retries but never an in-flight click.
func (e *Engine) submit(ctx context.Context, q *Question, idx int) {
	if e.settled(q.Key()) {
		e.logger.Warn("duplicate submission suppressed", zap.String("question", truncate(q.Text, 60)))
		return
	}
	if idx < 0 || idx >= len(q.Options) {
		e.logger.Error("refusing out-of-range submission",
			zap.Int("index", idx), zap.Int("options", len(q.Options)))
		e.finish(q, OutcomeUnresolved)
		return
	}

	for attempt := 1; ; attempt++ {
		clickCtx, done := context.WithTimeout(context.WithoutCancel(ctx), submitClickTimeout)
		err := e.surface.ClickOption(clickCtx, idx)
		done()
		if err == nil {
			e.finish(q, OutcomeSubmitted)
			e.setState(StateAnswered)
			e.logger.Info("answer submitted",
				zap.Int("option", idx+1), zap.Int("attempt", attempt))
			return
		}
		if ctx.Err() != nil {
			return
		}
		if attempt >= 2 {
			e.finish(q, OutcomeUnresolved)
			e.logger.Error("submission failed twice, giving up", zap.Error(err))
			e.notify(ctx, "pollnerd: submission failed",
				fmt.Sprintf("Could not click option %d for %q.", idx+1, truncate(q.Text, 60)))
			return
		}

		e.setState(StateDetected)
		e.logger.Warn("submission failed, retrying once", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.cfg.PollInterval):
		}
	}
}

// watchForChange polls the surface until ctx is done. If a different
// question appears it is sent on the returned channel and cancel is invoked
// so the in-flight wait unblocks. A temporarily blank surface is treated as
// a transient, not a change; closed polls are covered by the reply timeout.
// The channel is closed when the watcher exits, so a post-cancel receive
// always terminates.
func (e *Engine) watchForChange(ctx context.Context, cancel context.CancelFunc, q *Question) <-chan *Question {
	out := make(chan *Question, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.cfg.PollInterval):
			}

			cur, err := e.surface.Extract(ctx)
			if err != nil || cur == nil {
				continue
			}
			if !cur.Same(q) {
				out <- cur
				cancel()
				return
			}
		}
	}()
	return out
}

func (e *Engine) notify(ctx context.Context, title, body string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, title, body); err != nil {
		e.logger.Warn("notification failed", zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
