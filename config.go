package maelstrom

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Bounds for the gossip interval.
const (
	MinGossipInterval     = 50 * time.Millisecond
	MaxGossipInterval     = 300 * time.Millisecond
	DefaultGossipInterval = MaxGossipInterval
)

// Config holds settings read from the environment. The binaries take no flags.
type Config struct {
	// How often broadcast nodes gossip their values to neighbors.
	GossipInterval time.Duration `env:"MAELSTROM_GOSSIP_INTERVAL" envDefault:"300ms"`

	// Minimum level written to STDERR.
	LogLevel zapcore.Level `env:"MAELSTROM_LOG_LEVEL" envDefault:"info"`

	// Listen address for the Prometheus endpoint. Empty disables it.
	MetricsAddr string `env:"MAELSTROM_METRICS_ADDR"`
}

// LoadConfig reads the config from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

// ParseConfig reads the config from the given environment variables only.
func ParseConfig(environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return parseConfig(env.Options{Environment: environ})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an error if a setting is out of range.
func (c Config) Validate() error {
	if c.GossipInterval < MinGossipInterval || c.GossipInterval > MaxGossipInterval {
		return fmt.Errorf("gossip interval %s out of range [%s, %s]", c.GossipInterval, MinGossipInterval, MaxGossipInterval)
	}
	return nil
}
