// Package config holds all pollnerd configuration, loaded from a YAML file
// with environment overrides. The class list is loaded once at startup; the
// scheduler treats it as read-only for the life of the process.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pollnerd configuration.
type Config struct {
	// Monitored class definitions
	Classes []ClassConfig `yaml:"classes"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser"`

	// LLM classifier configuration
	LLM LLMConfig `yaml:"llm"`

	// Human fallback messaging configuration
	Messaging MessagingConfig `yaml:"messaging"`

	// Poll engine and scheduler tunables
	Engine EngineConfig `yaml:"engine"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the built-in defaults. Paths are rooted under the
// user's pollnerd directory (~/.pollnerd).
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			BaseURL:             "https://pollev.com",
			Headless:            false,
			ViewportWidth:       1280,
			ViewportHeight:      900,
			NavigationTimeoutMs: 30000,
			StatePath:           filepath.Join(DefaultDataDir(), "session_state.json"),
		},
		LLM: LLMConfig{
			Model:   "gemma-3-27b-it",
			Timeout: "60s",
		},
		Messaging: MessagingConfig{
			ChatDBPath:   defaultChatDBPath(),
			PollInterval: "2s",
			ReplyTimeout: "10m",
		},
		Engine: EngineConfig{
			PollInterval:      "2s",
			SchedulerInterval: "10s",
			StopGrace:         "5s",
			MaxSessions:       4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir returns the pollnerd data directory (~/.pollnerd).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pollnerd"
	}
	return filepath.Join(home, ".pollnerd")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// Load reads the config file at path, applying defaults for missing fields
// and environment overrides on top. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("POLLNERD_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if rcpt := os.Getenv("POLLNERD_RECIPIENT"); rcpt != "" {
		c.Messaging.Recipient = rcpt
	}
	if db := os.Getenv("POLLNERD_CHATDB"); db != "" {
		c.Messaging.ChatDBPath = db
	}
}

// Validate checks the configuration for fatal misconfiguration. Per-class
// time window problems are not fatal here; the scheduler reports those and
// keeps the affected class inactive.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or llm.api_key)")
	}
	if len(c.Classes) == 0 {
		return fmt.Errorf("no classes configured")
	}
	seen := make(map[string]bool, len(c.Classes))
	for _, cl := range c.Classes {
		if cl.Name == "" {
			return fmt.Errorf("class with empty name")
		}
		if cl.Section == "" {
			return fmt.Errorf("class %q has no section", cl.Name)
		}
		if seen[cl.Name] {
			return fmt.Errorf("duplicate class name %q", cl.Name)
		}
		seen[cl.Name] = true
	}
	return nil
}

// duration parses a duration string, falling back to def on any error.
func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
