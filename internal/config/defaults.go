package config

import "github.com/roarm-dev/roarm/pkg/transport"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Serial: SerialConfig{
			Baud:          transport.DefaultBaud,
			TimeoutMS:     5000,
			MoveTimeoutMS: 8000,
		},
		Teach: TeachConfig{
			SampleIntervalMS: 100,
			ReplaySpeed:      1.0,
		},
	}
}
