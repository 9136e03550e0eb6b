// Package config loads the roarm CLI configuration: serial and timeout
// tuning, teaching defaults, and named robot profiles.
package config

// Config is the effective configuration after applying precedence.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Serial   SerialConfig  `mapstructure:"serial"`
	Teach    TeachConfig   `mapstructure:"teach"`
	Robots   []RobotConfig `mapstructure:"robots"`
}

// SerialConfig tunes the wire link.
type SerialConfig struct {
	Baud          int `mapstructure:"baud"`
	TimeoutMS     int `mapstructure:"timeout_ms"`
	MoveTimeoutMS int `mapstructure:"move_timeout_ms"`
}

// TeachConfig holds teaching and replay defaults.
type TeachConfig struct {
	SampleIntervalMS int     `mapstructure:"sample_interval_ms"`
	ReplaySpeed      float64 `mapstructure:"replay_speed"`
}

// RobotConfig is one named arm profile.
type RobotConfig struct {
	Name  string `mapstructure:"name"`
	Port  string `mapstructure:"port"`
	Model string `mapstructure:"model"`
}

// Robot returns the profile with the given name. An empty name selects
// the first profile.
func (c Config) Robot(name string) (RobotConfig, bool) {
	if name == "" {
		if len(c.Robots) == 0 {
			return RobotConfig{}, false
		}
		return c.Robots[0], true
	}
	for _, r := range c.Robots {
		if r.Name == name {
			return r, true
		}
	}
	return RobotConfig{}, false
}
