package config

// ClassConfig describes one monitored class as written in the config file.
// Times are wall-clock "HH:MM" or "HH:MM:SS" strings; both empty means the
// class is always active. Validation and window semantics live in the
// schedule package.
type ClassConfig struct {
	// Display name, unique across the config
	Name string `yaml:"name"`

	// PollEverywhere presenter section (pollev.com/<section>)
	Section string `yaml:"section"`

	// Spoofed geolocation for attendance checks
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// Optional active window
	StartTime string `yaml:"start_time,omitempty"`
	EndTime   string `yaml:"end_time,omitempty"`
}
