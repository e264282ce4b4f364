package config

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level"`

	// Development switches to the human-oriented console encoder
	Development bool `yaml:"development"`
}
