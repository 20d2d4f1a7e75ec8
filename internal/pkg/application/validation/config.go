package validation

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v2"
)

// Config bounds every wait in the harness. Delivery timing depends on the
// backend and the network, so none of these are hard synchronization
// barriers, only policy bounds for the verdicts.
type Config struct {
	ResponseTimeLimit   time.Duration
	ResponseTimeTimeout time.Duration

	BurstCount   int
	BurstSpacing time.Duration
	BurstGrace   time.Duration

	InterruptionWindow time.Duration
	ResubscribeGrace   time.Duration

	InterCheckDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		ResponseTimeLimit:   3000 * time.Millisecond,
		ResponseTimeTimeout: 5000 * time.Millisecond,
		BurstCount:          10,
		BurstSpacing:        100 * time.Millisecond,
		BurstGrace:          3000 * time.Millisecond,
		InterruptionWindow:  2000 * time.Millisecond,
		ResubscribeGrace:    2000 * time.Millisecond,
		InterCheckDelay:     500 * time.Millisecond,
	}
}

type configFile struct {
	ResponseTimeLimit   string `yaml:"responseTimeLimit"`
	ResponseTimeTimeout string `yaml:"responseTimeTimeout"`
	BurstCount          int    `yaml:"burstCount"`
	BurstSpacing        string `yaml:"burstSpacing"`
	BurstGrace          string `yaml:"burstGrace"`
	InterruptionWindow  string `yaml:"interruptionWindow"`
	ResubscribeGrace    string `yaml:"resubscribeGrace"`
	InterCheckDelay     string `yaml:"interCheckDelay"`
}

// UnmarshalYAML applies yaml overrides on top of the defaults, so a Config
// embedded in a larger configuration document decodes through the same
// parser as LoadConfiguration. Durations are given in Go syntax ("3s",
// "100ms"); omitted values keep their default.
func (c *Config) UnmarshalYAML(unmarshal func(any) error) error {
	f := configFile{}
	err := unmarshal(&f)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()

	set := func(dst *time.Duration, value, name string) error {
		if value == "" {
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
		*dst = d
		return nil
	}

	for _, e := range []error{
		set(&cfg.ResponseTimeLimit, f.ResponseTimeLimit, "responseTimeLimit"),
		set(&cfg.ResponseTimeTimeout, f.ResponseTimeTimeout, "responseTimeTimeout"),
		set(&cfg.BurstSpacing, f.BurstSpacing, "burstSpacing"),
		set(&cfg.BurstGrace, f.BurstGrace, "burstGrace"),
		set(&cfg.InterruptionWindow, f.InterruptionWindow, "interruptionWindow"),
		set(&cfg.ResubscribeGrace, f.ResubscribeGrace, "resubscribeGrace"),
		set(&cfg.InterCheckDelay, f.InterCheckDelay, "interCheckDelay"),
	} {
		if e != nil {
			return e
		}
	}

	if f.BurstCount > 0 {
		cfg.BurstCount = f.BurstCount
	}

	*c = cfg
	return nil
}

// LoadConfiguration reads yaml overrides on top of the defaults.
func LoadConfiguration(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	b, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}
