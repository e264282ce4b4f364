package config

import "time"

// EngineConfig holds poll engine and scheduler tunables. Intervals are
// injected into the engine rather than hard-coded so tests can drive the
// state machine with short synthetic ticks.
type EngineConfig struct {
	// How often an idle session re-checks the poll surface
	PollInterval string `yaml:"poll_interval"`

	// How often the scheduler re-evaluates class time windows
	SchedulerInterval string `yaml:"scheduler_interval"`

	// How long a stopping session is given to wind down
	StopGrace string `yaml:"stop_grace"`

	// Upper bound on concurrently monitored sessions
	MaxSessions int `yaml:"max_sessions"`
}

// GetPollInterval returns the surface poll interval as a duration.
func (c EngineConfig) GetPollInterval() time.Duration {
	return duration(c.PollInterval, 2*time.Second)
}

// GetSchedulerInterval returns the scheduler tick as a duration.
func (c EngineConfig) GetSchedulerInterval() time.Duration {
	return duration(c.SchedulerInterval, 10*time.Second)
}

// GetStopGrace returns the session stop grace period as a duration.
func (c EngineConfig) GetStopGrace() time.Duration {
	return duration(c.StopGrace, 5*time.Second)
}

// GetMaxSessions returns the concurrent session cap.
func (c EngineConfig) GetMaxSessions() int {
	if c.MaxSessions <= 0 {
		return 4
	}
	return c.MaxSessions
}
