package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: development
server:
  port: 8080
clickhouse:
  host: localhost
  port: 9000
  database: quantpulse
  user: default
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analytics.Workers != 4 {
		t.Fatalf("default workers: %d", cfg.Analytics.Workers)
	}
	if cfg.Analytics.Regime.Engine != "hmm" || cfg.Analytics.Volatility.Engine != "garch" {
		t.Fatalf("default engines: %s %s", cfg.Analytics.Regime.Engine, cfg.Analytics.Volatility.Engine)
	}
	if cfg.Analytics.Hurst.MeanRevertBelow != 0.45 || cfg.Analytics.Hurst.TrendingAbove != 0.55 {
		t.Fatalf("default hurst bands: %v %v", cfg.Analytics.Hurst.MeanRevertBelow, cfg.Analytics.Hurst.TrendingAbove)
	}
	if cfg.Cache.TTL.Fractal != 5*time.Minute {
		t.Fatalf("default fractal ttl: %v", cfg.Cache.TTL.Fractal)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	body := minimalYAML + `
analytics:
  regime:
    engine: kalman
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected engine validation error")
	}
}

func TestLoadRejectsMissingClickHouseHost(t *testing.T) {
	body := `
environment: development
server:
  port: 8080
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected clickhouse.host error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("REGIME_ENGINE", "BUCKETS")
	t.Setenv("VOLATILITY_ENGINE", "rolling")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analytics.Regime.Engine != "buckets" {
		t.Fatalf("env regime override: %s", cfg.Analytics.Regime.Engine)
	}
	if cfg.Analytics.Volatility.Engine != "rolling" {
		t.Fatalf("env volatility override: %s", cfg.Analytics.Volatility.Engine)
	}
	if cfg.ClickHouse.Host != "ch.internal" {
		t.Fatalf("env host override: %s", cfg.ClickHouse.Host)
	}
}
