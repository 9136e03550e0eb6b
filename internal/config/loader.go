package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath skips discovery and loads exactly this file.
	ConfigPath string
	// FlagOverrides are highest-priority overrides from CLI flags,
	// keyed by dot-notated config path.
	FlagOverrides map[string]any
}

// Load returns the effective configuration after applying precedence:
// defaults < ~/.roarm/config.toml < ./roarm.toml < ROARM_* env < flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.ConfigPath, err)
		}
	} else {
		if err := mergeFile(v, userConfigPath()); err != nil {
			return Config{}, err
		}
		if err := mergeFile(v, "roarm.toml"); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("ROARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range opts.FlagOverrides {
		if val != nil {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("serial.baud", def.Serial.Baud)
	v.SetDefault("serial.timeout_ms", def.Serial.TimeoutMS)
	v.SetDefault("serial.move_timeout_ms", def.Serial.MoveTimeoutMS)
	v.SetDefault("teach.sample_interval_ms", def.Teach.SampleIntervalMS)
	v.SetDefault("teach.replay_speed", def.Teach.ReplaySpeed)
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".roarm", "config.toml")
}

// mergeFile merges an optional config file; a missing file is fine.
func mergeFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}
