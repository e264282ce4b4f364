package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status is the lifecycle phase of a session handle.
type Status int

const (
	StatusStarting Status = iota
	StatusRunning
	StatusStopping
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Runner executes one monitoring session for a definition. Run blocks until
// the session ends; it returns nil on a clean stop and an error when the
// session was lost. The scheduler owns nothing inside Run.
type Runner interface {
	Run(ctx context.Context, def *SessionDefinition) error
}

// Handle binds a definition to one live session. At most one handle exists
// per definition at a time.
type Handle struct {
	ID  string
	Def *SessionDefinition

	cancel   context.CancelFunc
	stopping time.Time

	mu     sync.Mutex
	status Status
}

// Status returns the handle's current lifecycle phase.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Handle) setStatus(s Status) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

// HandleInfo is a point-in-time view of a live handle.
type HandleInfo struct {
	ID     string
	Name   string
	Status Status
}

// Options tunes the scheduler. Now is injectable for tests; nil means
// time.Now.
type Options struct {
	Interval    time.Duration
	StopGrace   time.Duration
	MaxSessions int
	Now         func() time.Time
}

// Scheduler evaluates definition windows on a fixed tick and starts or
// stops sessions so that exactly the currently-active definitions run.
type Scheduler struct {
	defs      []*SessionDefinition
	runner    Runner
	interval  time.Duration
	stopGrace time.Duration
	max       int
	now       func() time.Time
	logger    *zap.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// New builds a scheduler over the given definitions. Disabled definitions
// are skipped on every tick; rejections are the caller's to report, since
// FromConfig returned the reason.
func New(defs []*SessionDefinition, runner Runner, opts Options, logger *zap.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = 5 * time.Second
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Scheduler{
		defs:      defs,
		runner:    runner,
		interval:  opts.Interval,
		stopGrace: opts.StopGrace,
		max:       opts.MaxSessions,
		now:       opts.Now,
		logger:    logger.Named("scheduler"),
		handles:   make(map[string]*Handle),
	}
	return s
}

// Run drives the tick loop until ctx is cancelled, then stops every live
// session and waits for them to wind down.
func (s *Scheduler) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(s.max)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.evaluate(ctx, &g)
	for {
		select {
		case <-ctx.Done():
			s.stopAll()
			return g.Wait()
		case <-ticker.C:
			s.evaluate(ctx, &g)
		}
	}
}

// Handles returns a snapshot of the live session handles.
func (s *Scheduler) Handles() []HandleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HandleInfo, 0, len(s.handles))
	for _, h := range s.handles {
		out = append(out, HandleInfo{ID: h.ID, Name: h.Def.Name, Status: h.Status()})
	}
	return out
}

// evaluate reconciles live handles against the definitions active right
// now. Called only from the Run goroutine.
func (s *Scheduler) evaluate(ctx context.Context, g *errgroup.Group) {
	now := s.now()
	for _, def := range s.defs {
		active := def.ActiveAt(now)

		s.mu.Lock()
		h := s.handles[def.Name]
		s.mu.Unlock()

		switch {
		case h == nil && active:
			s.start(ctx, g, def)
		case h != nil && !active && h.Status() < StatusStopping:
			s.logger.Info("class window closed, stopping session",
				zap.String("class", def.Name), zap.String("session", h.ID))
			h.stopping = now
			h.setStatus(StatusStopping)
			h.cancel()
		case h != nil && h.Status() == StatusStopping && now.Sub(h.stopping) > s.stopGrace:
			s.logger.Warn("session exceeded stop grace period",
				zap.String("class", def.Name), zap.String("session", h.ID))
		}
	}
}

func (s *Scheduler) start(ctx context.Context, g *errgroup.Group, def *SessionDefinition) {
	sctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ID:     uuid.NewString(),
		Def:    def,
		cancel: cancel,
		status: StatusStarting,
	}

	s.mu.Lock()
	s.handles[def.Name] = h
	s.mu.Unlock()

	started := g.TryGo(func() error {
		h.setStatus(StatusRunning)
		err := s.runner.Run(sctx, def)
		if err != nil && sctx.Err() == nil {
			// A lost session is reported and the handle released, so a
			// later tick inside the window starts a fresh one.
			s.logger.Error("session terminated unexpectedly",
				zap.String("class", def.Name), zap.String("session", h.ID), zap.Error(err))
		}
		h.setStatus(StatusStopped)
		s.release(def.Name)
		cancel()
		return nil
	})
	if !started {
		cancel()
		s.release(def.Name)
		s.logger.Warn("session cap reached, class deferred",
			zap.String("class", def.Name), zap.Int("max_sessions", s.max))
		return
	}

	s.logger.Info("session started",
		zap.String("class", def.Name), zap.String("session", h.ID))
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.handles, name)
	s.mu.Unlock()
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		if h.Status() < StatusStopping {
			h.setStatus(StatusStopping)
		}
		h.cancel()
	}
}
