package maelstrom_test

import (
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	maelstrom "github.com/dsglomers/maelstrom"
)

func TestParseConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := maelstrom.ParseConfig(nil)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := cfg.GossipInterval, maelstrom.DefaultGossipInterval; got != want {
			t.Fatalf("interval=%s, want %s", got, want)
		}
		if got, want := cfg.LogLevel, zapcore.InfoLevel; got != want {
			t.Fatalf("level=%s, want %s", got, want)
		}
		if cfg.MetricsAddr != "" {
			t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
		}
	})

	t.Run("Override", func(t *testing.T) {
		cfg, err := maelstrom.ParseConfig(map[string]string{
			"MAELSTROM_GOSSIP_INTERVAL": "50ms",
			"MAELSTROM_LOG_LEVEL":       "debug",
			"MAELSTROM_METRICS_ADDR":    "127.0.0.1:9100",
		})
		if err != nil {
			t.Fatal(err)
		}
		if got, want := cfg.GossipInterval, 50*time.Millisecond; got != want {
			t.Fatalf("interval=%s, want %s", got, want)
		}
		if got, want := cfg.LogLevel, zapcore.DebugLevel; got != want {
			t.Fatalf("level=%s, want %s", got, want)
		}
		if got, want := cfg.MetricsAddr, "127.0.0.1:9100"; got != want {
			t.Fatalf("addr=%s, want %s", got, want)
		}
	})

	for _, tt := range []struct {
		name string
		env  map[string]string
	}{
		{"ErrIntervalTooShort", map[string]string{"MAELSTROM_GOSSIP_INTERVAL": "10ms"}},
		{"ErrIntervalTooLong", map[string]string{"MAELSTROM_GOSSIP_INTERVAL": "1s"}},
		{"ErrInterval", map[string]string{"MAELSTROM_GOSSIP_INTERVAL": "often"}},
		{"ErrLogLevel", map[string]string{"MAELSTROM_LOG_LEVEL": "chatty"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := maelstrom.ParseConfig(tt.env); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
