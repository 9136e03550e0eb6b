package config

import (
	"fmt"

	"github.com/roarm-dev/roarm/pkg/robot"
)

// Validate checks constraints the types cannot express.
func Validate(cfg Config) error {
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be positive, got %d", cfg.Serial.Baud)
	}
	if cfg.Serial.TimeoutMS <= 0 {
		return fmt.Errorf("serial.timeout_ms must be positive, got %d", cfg.Serial.TimeoutMS)
	}
	if cfg.Serial.MoveTimeoutMS <= 0 {
		return fmt.Errorf("serial.move_timeout_ms must be positive, got %d", cfg.Serial.MoveTimeoutMS)
	}
	if cfg.Teach.SampleIntervalMS <= 0 {
		return fmt.Errorf("teach.sample_interval_ms must be positive, got %d", cfg.Teach.SampleIntervalMS)
	}
	if cfg.Teach.ReplaySpeed <= 0 {
		return fmt.Errorf("teach.replay_speed must be positive, got %v", cfg.Teach.ReplaySpeed)
	}

	seen := make(map[string]bool)
	for i, r := range cfg.Robots {
		if r.Name == "" {
			return fmt.Errorf("robots[%d]: name required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("robots[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = true
		if r.Port == "" {
			return fmt.Errorf("robot %q: port required", r.Name)
		}
		if _, err := robot.ParseModel(r.Model); err != nil {
			return fmt.Errorf("robot %q: %w", r.Name, err)
		}
	}
	return nil
}
