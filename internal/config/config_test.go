package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.Model != "gemma-3-27b-it" {
		t.Errorf("expected Model=gemma-3-27b-it, got %s", cfg.LLM.Model)
	}
	if cfg.Browser.BaseURL != "https://pollev.com" {
		t.Errorf("expected BaseURL=https://pollev.com, got %s", cfg.Browser.BaseURL)
	}
	if got := cfg.Engine.GetPollInterval(); got != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %v", got)
	}
	if got := cfg.Engine.GetMaxSessions(); got != 4 {
		t.Errorf("expected max sessions 4, got %d", got)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("POLLNERD_API_KEY", "")
	t.Setenv("POLLNERD_RECIPIENT", "")
	t.Setenv("POLLNERD_CHATDB", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	cfg.Messaging.Recipient = "+15551234567"
	cfg.Classes = []ClassConfig{
		{Name: "CS101", Section: "profsmith", Latitude: 42.44, Longitude: -76.48, StartTime: "09:05", EndTime: "09:55"},
	}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.APIKey != "test-key" {
		t.Errorf("expected APIKey=test-key, got %s", loaded.LLM.APIKey)
	}
	if loaded.Messaging.Recipient != "+15551234567" {
		t.Errorf("expected recipient round-trip, got %s", loaded.Messaging.Recipient)
	}
	if len(loaded.Classes) != 1 || loaded.Classes[0].Section != "profsmith" {
		t.Errorf("classes did not round-trip: %+v", loaded.Classes)
	}
}

func TestConfig_LoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("POLLNERD_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Model != "gemma-3-27b-it" {
		t.Errorf("expected defaults, got model %s", cfg.LLM.Model)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("POLLNERD_RECIPIENT", "+15550000000")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected APIKey=env-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Messaging.Recipient != "+15550000000" {
		t.Errorf("expected recipient override, got %s", cfg.Messaging.Recipient)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty class list")
	}

	cfg.Classes = []ClassConfig{{Name: "A", Section: "s1"}, {Name: "A", Section: "s2"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for duplicate class name")
	}

	cfg.Classes = []ClassConfig{{Name: "A", Section: "s1"}, {Name: "B", Section: "s2"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestDuration_Fallback(t *testing.T) {
	if got := duration("not-a-duration", 3*time.Second); got != 3*time.Second {
		t.Errorf("expected fallback 3s, got %v", got)
	}
	if got := duration("-5s", time.Second); got != time.Second {
		t.Errorf("expected fallback for negative duration, got %v", got)
	}
	if got := duration("1500ms", time.Second); got != 1500*time.Millisecond {
		t.Errorf("expected parsed 1500ms, got %v", got)
	}
}
