package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pollnerd/internal/config"
	"pollnerd/internal/poll"
	"pollnerd/internal/schedule"
	"pollnerd/internal/surface"
)

// sessionRunner builds one poll engine per scheduled session. The browser
// page and the engine live exactly as long as the session's context.
type sessionRunner struct {
	browser    *surface.Manager
	state      *surface.State
	classifier poll.Classifier
	escalator  poll.Escalator
	notifier   poll.Notifier
	engineCfg  config.EngineConfig
	replyWait  time.Duration
	logger     *zap.Logger
}

func (r *sessionRunner) Run(ctx context.Context, def *schedule.SessionDefinition) error {
	session, err := r.browser.NewSession(ctx, def, r.state)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			r.logger.Debug("session page close", zap.String("class", def.Name), zap.Error(cerr))
		}
	}()

	engine := poll.New(poll.Config{
		Session:      def.Name,
		PollInterval: r.engineCfg.GetPollInterval(),
		ReplyTimeout: r.replyWait,
	}, session, r.classifier, r.escalator, r.notifier, r.logger)

	return engine.Run(ctx)
}
