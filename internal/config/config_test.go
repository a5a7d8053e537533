package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
traffic_generator:
  model_config:
    model: gbm
    initial_price: 100
monitor:
  symbols: [AAPL]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.Exchange.OrderAddr == "" || cfg.Exchange.StatusAddr == "" {
		t.Error("expected default addresses to be set")
	}
	if cfg.Exchange.PriceHistorySize != 1000 {
		t.Errorf("expected default price history size 1000, got %d", cfg.Exchange.PriceHistorySize)
	}
	if cfg.Monitor.OHLCVIntervalSec != 60 {
		t.Errorf("expected default OHLCV interval 60, got %d", cfg.Monitor.OHLCVIntervalSec)
	}
}

func TestLoadRejectsUnknownModel(t *testing.T) {
	path := writeTempConfig(t, `
traffic_generator:
  model_config:
    model: fractal
    initial_price: 100
monitor:
  symbols: [AAPL]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown model")
	}
}

func TestLoadRejectsMissingSymbols(t *testing.T) {
	path := writeTempConfig(t, `
traffic_generator:
  model_config:
    model: gbm
    initial_price: 100
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an empty monitor symbol list")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestDurationHelpersConvertMilliseconds(t *testing.T) {
	path := writeTempConfig(t, `
exchange:
  request_timeout_ms: 500
traffic_generator:
  step_interval_ms: 250
  model_config:
    model: gbm
    initial_price: 100
monitor:
  poll_interval_ms: 750
  symbols: [AAPL]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RequestTimeout().Milliseconds() != 500 {
		t.Errorf("expected 500ms request timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.StepInterval().Milliseconds() != 250 {
		t.Errorf("expected 250ms step interval, got %v", cfg.StepInterval())
	}
	if cfg.PollInterval().Milliseconds() != 750 {
		t.Errorf("expected 750ms poll interval, got %v", cfg.PollInterval())
	}
}
