package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario = "calm"
	DefaultInterval = 500 * time.Millisecond
	DefaultFPS      = 60
	DefaultQuality  = "auto"
	DefaultTheme    = "cyberpunk"
	DefaultLogLevel = "info"

	// EnvPrefix prefixes every environment override, e.g.
	// QUANTVIZ_FEED_SCENARIO.
	EnvPrefix = "QUANTVIZ"
)

type Config struct {
	Feed    FeedConfig    `yaml:"feed" envconfig:"FEED"`
	Engine  EngineConfig  `yaml:"engine" envconfig:"ENGINE"`
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
}

type FeedConfig struct {
	Scenario string        `yaml:"scenario" envconfig:"SCENARIO"`
	Replay   string        `yaml:"replay,omitempty" envconfig:"REPLAY"`
	Loop     bool          `yaml:"loop" envconfig:"LOOP"`
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	Seed     int64         `yaml:"seed" envconfig:"SEED"`
}

type EngineConfig struct {
	FPS     int    `yaml:"fps" envconfig:"FPS"`
	Quality string `yaml:"quality" envconfig:"QUALITY"`
	Theme   string `yaml:"theme" envconfig:"THEME"`
	Seed    int64  `yaml:"seed" envconfig:"SEED"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Pretty bool   `yaml:"pretty" envconfig:"PRETTY"`
	// File receives log output while the terminal UI owns stdout. Empty
	// discards logs in the UI.
	File string `yaml:"file,omitempty" envconfig:"FILE"`
}

type MetricsConfig struct {
	// Addr serves Prometheus metrics when set, e.g. ":9108".
	Addr string `yaml:"addr,omitempty" envconfig:"ADDR"`
}

func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			Scenario: DefaultScenario,
			Loop:     true,
			Interval: DefaultInterval,
			Seed:     1,
		},
		Engine: EngineConfig{
			FPS:     DefaultFPS,
			Quality: DefaultQuality,
			Theme:   DefaultTheme,
			Seed:    1,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads path, or the defaults when path is empty, then applies
// environment overrides. A .env file in the working directory is read
// first if present.
func Resolve(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	_ = godotenv.Load()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields whose QUANTVIZ_* variables are set.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Feed.Interval <= 0 {
		return fmt.Errorf("config: feed.interval must be positive, got %s", c.Feed.Interval)
	}
	if c.Engine.FPS <= 0 {
		return fmt.Errorf("config: engine.fps must be positive, got %d", c.Engine.FPS)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
