package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pollnerd/internal/classify"
	"pollnerd/internal/config"
	"pollnerd/internal/fallback"
	"pollnerd/internal/notify"
	"pollnerd/internal/schedule"
	"pollnerd/internal/surface"
)

// sendTimeout bounds a single osascript invocation.
const sendTimeout = 15 * time.Second

// runMonitor wires everything together and blocks until SIGINT/SIGTERM.
func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Messaging.Recipient == "" {
		return fmt.Errorf("messaging recipient not configured (set POLLNERD_RECIPIENT or messaging.recipient)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defs := buildDefinitions(cfg.Classes, logger)

	state, err := surface.LoadState(cfg.Browser.StatePath)
	if err != nil {
		return fmt.Errorf("no saved login (run `pollnerd login` first): %w", err)
	}

	classifier, err := classify.NewGemmaClassifier(ctx, classify.Options{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.GetTimeout(),
	}, logger)
	if err != nil {
		return err
	}

	store, err := fallback.OpenChatDB(cfg.Messaging.ChatDBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	sender := fallback.NewAppleScriptSender(sendTimeout, logger)
	channel := fallback.NewChannel(store, sender, fallback.Options{
		Recipient:    cfg.Messaging.Recipient,
		ScanInterval: cfg.Messaging.GetPollInterval(),
	}, logger)
	defer channel.Close()

	browser := surface.NewManager(cfg.Browser, logger)
	if err := browser.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := browser.Shutdown(); err != nil {
			logger.Warn("browser shutdown", zap.Error(err))
		}
	}()

	runner := &sessionRunner{
		browser:    browser,
		state:      state,
		classifier: classifier,
		escalator:  channel,
		notifier:   notify.New(logger),
		engineCfg:  cfg.Engine,
		replyWait:  cfg.Messaging.GetReplyTimeout(),
		logger:     logger,
	}

	sched := schedule.New(defs, runner, schedule.Options{
		Interval:    cfg.Engine.GetSchedulerInterval(),
		StopGrace:   cfg.Engine.GetStopGrace(),
		MaxSessions: cfg.Engine.GetMaxSessions(),
	}, logger)

	logger.Info("monitoring started",
		zap.Int("classes", len(defs)),
		zap.String("recipient", cfg.Messaging.Recipient))

	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("monitoring stopped")
	return nil
}

// buildDefinitions converts the class list. Entries with malformed windows
// stay listed but never activate; each rejection is logged once, with the
// reason, before the scheduler takes over.
func buildDefinitions(classes []config.ClassConfig, logger *zap.Logger) []*schedule.SessionDefinition {
	defs := make([]*schedule.SessionDefinition, 0, len(classes))
	for _, cc := range classes {
		def, err := schedule.FromConfig(cc)
		if err != nil {
			logger.Error("class disabled by invalid window", zap.Error(err))
		}
		defs = append(defs, def)
	}
	return defs
}
