// Package surface binds poll sessions to live PollEverywhere pages through
// a shared Chrome instance.
package surface

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"pollnerd/internal/config"
)

// Manager owns the Chrome connection shared by all sessions. Each session
// gets its own incognito context; the manager only hands them out.
type Manager struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewManager builds a manager; the browser is not touched until Start.
func NewManager(cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.Named("browser")}
}

// Start connects to the configured debugger URL, or launches Chrome when
// none is configured. Calling Start on a healthy manager is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.logger.Warn("stale browser connection, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		launch := launcher.New().Headless(m.cfg.Headless)
		if m.cfg.Bin != "" {
			launch = launch.Bin(m.cfg.Bin)
		}
		url, err := launch.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.logger.Info("browser connected", zap.String("control_url", controlURL))
	return nil
}

// Shutdown closes the browser connection. Sessions created from it become
// unusable and their engines terminate on the next surface call.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil
	}
	err := m.browser.Close()
	m.browser = nil
	return err
}

// OpenPage opens a page in the default browser context. The login flow
// uses it; monitored sessions go through NewSession instead.
func (m *Manager) OpenPage(ctx context.Context, url string) (*rod.Page, error) {
	browser, err := m.get()
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return page.Context(ctx), nil
}

func (m *Manager) get() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser == nil {
		return nil, fmt.Errorf("browser not connected")
	}
	return m.browser, nil
}
