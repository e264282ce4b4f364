package config

import "time"

// BrowserConfig configures the Chrome instance backing poll sessions.
type BrowserConfig struct {
	// Connect to an already-running Chrome instead of launching one
	DebuggerURL string `yaml:"debugger_url,omitempty"`

	// Chrome binary override; empty uses the rod launcher's lookup
	Bin string `yaml:"bin,omitempty"`

	Headless            bool   `yaml:"headless"`
	ViewportWidth       int    `yaml:"viewport_width"`
	ViewportHeight      int    `yaml:"viewport_height"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
	BaseURL             string `yaml:"base_url"`

	// Saved login state (cookies + web storage) written by `pollnerd login`
	StatePath string `yaml:"state_path"`
}

// NavigationTimeout returns the page navigation timeout.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// GetViewportWidth returns viewport width.
func (c BrowserConfig) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c BrowserConfig) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 900
	}
	return c.ViewportHeight
}
