package config

import "time"

// LLMConfig configures the answer classifier.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// GetTimeout returns the classification timeout as a duration.
func (c LLMConfig) GetTimeout() time.Duration {
	return duration(c.Timeout, 60*time.Second)
}
