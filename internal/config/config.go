// Package config loads the YAML file every cmd/* entrypoint reads at
// startup, grounded on toto1234567890-data-ingestor/src/config: a thin
// wrapper struct populated by gopkg.in/yaml.v3, validated once on load.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ExchangeConfig configures the exchange process's two endpoints and
// its per-symbol price history depth.
type ExchangeConfig struct {
	OrderAddr         string `yaml:"order_addr"`
	StatusAddr        string `yaml:"status_addr"`
	PriceHistorySize  int    `yaml:"price_history_size"`
	RequestTimeoutMs  int    `yaml:"request_timeout_ms"`
	SerializerBackend string `yaml:"serializer"` // "json" or "gob"
}

// ModelConfig configures the traffic generator's chosen price model.
// Fields outside the selected Model are ignored.
type ModelConfig struct {
	Model                       string  `yaml:"model"` // "linear", "gbm", "hawkes"
	InitialPrice                float64 `yaml:"initial_price"`
	Drift                       float64 `yaml:"drift"`
	Volatility                  float64 `yaml:"volatility"`
	DT                          float64 `yaml:"dt"`
	Steps                       int     `yaml:"steps"`
	OrderQuantity               float64 `yaml:"order_quantity"`
	OrdersPerEvent              int     `yaml:"orders_per_event"`
	VolumeMu                    float64 `yaml:"volume_mu"`
	VolumeSigma                 float64 `yaml:"volume_sigma"`
	RegimeSwitchIntervalSeconds float64 `yaml:"regime_switch_interval_seconds"`
	Seed                        int64   `yaml:"seed"` // 0 means seed from the current time
}

// TrafficGeneratorConfig configures the traffic generator process.
type TrafficGeneratorConfig struct {
	Symbol         string      `yaml:"symbol"`
	ClientID       string      `yaml:"client_id"`
	QueueCapacity  int         `yaml:"queue_capacity"`
	StepIntervalMs int         `yaml:"step_interval_ms"`
	Model          ModelConfig `yaml:"model_config"`
}

// MonitorConfig configures the polling monitor process.
type MonitorConfig struct {
	Symbols          []string `yaml:"symbols"`
	PollIntervalMs   int      `yaml:"poll_interval_ms"`
	OHLCVIntervalSec int32    `yaml:"ohlcv_interval_seconds"`
	HistoryDir       string   `yaml:"history_dir"` // empty disables CSV recording
	RequestTimeoutMs int      `yaml:"request_timeout_ms"`
}

// Config is the top-level document loaded from YAML.
type Config struct {
	LogLevel         string                 `yaml:"log_level"`
	Exchange         ExchangeConfig         `yaml:"exchange"`
	TrafficGenerator TrafficGeneratorConfig `yaml:"traffic_generator"`
	Monitor          MonitorConfig          `yaml:"monitor"`
}

// Load reads and parses the YAML file at path, applies defaults for
// zero-valued fields, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Exchange.OrderAddr == "" {
		c.Exchange.OrderAddr = "127.0.0.1:9001"
	}
	if c.Exchange.StatusAddr == "" {
		c.Exchange.StatusAddr = "127.0.0.1:9002"
	}
	if c.Exchange.PriceHistorySize == 0 {
		c.Exchange.PriceHistorySize = 1000
	}
	if c.Exchange.RequestTimeoutMs == 0 {
		c.Exchange.RequestTimeoutMs = 2000
	}
	if c.Exchange.SerializerBackend == "" {
		c.Exchange.SerializerBackend = "json"
	}
	if c.TrafficGenerator.ClientID == "" {
		c.TrafficGenerator.ClientID = "traffic_generator"
	}
	if c.TrafficGenerator.QueueCapacity == 0 {
		c.TrafficGenerator.QueueCapacity = 256
	}
	if c.TrafficGenerator.StepIntervalMs == 0 {
		c.TrafficGenerator.StepIntervalMs = 100
	}
	if c.TrafficGenerator.Model.Model == "" {
		c.TrafficGenerator.Model.Model = "gbm"
	}
	if c.TrafficGenerator.Model.DT == 0 {
		c.TrafficGenerator.Model.DT = 0.01
	}
	if c.TrafficGenerator.Model.Steps == 0 {
		c.TrafficGenerator.Model.Steps = 1000
	}
	if c.TrafficGenerator.Model.OrderQuantity == 0 {
		c.TrafficGenerator.Model.OrderQuantity = 100
	}
	if c.TrafficGenerator.Model.OrdersPerEvent == 0 {
		c.TrafficGenerator.Model.OrdersPerEvent = 5
	}
	if c.Monitor.PollIntervalMs == 0 {
		c.Monitor.PollIntervalMs = 1000
	}
	if c.Monitor.OHLCVIntervalSec == 0 {
		c.Monitor.OHLCVIntervalSec = 60
	}
	if c.Monitor.RequestTimeoutMs == 0 {
		c.Monitor.RequestTimeoutMs = 2000
	}
}

// Validate checks the fields Load cannot safely default.
func (c *Config) Validate() error {
	switch c.TrafficGenerator.Model.Model {
	case "linear", "gbm", "hawkes":
	default:
		return fmt.Errorf("unknown traffic generator model %q", c.TrafficGenerator.Model.Model)
	}
	if c.TrafficGenerator.Model.InitialPrice <= 0 {
		return fmt.Errorf("model_config.initial_price must be positive")
	}
	if len(c.Monitor.Symbols) == 0 {
		return fmt.Errorf("monitor.symbols must list at least one symbol")
	}
	return nil
}

// RequestTimeout returns the exchange's configured request timeout as
// a time.Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Exchange.RequestTimeoutMs) * time.Millisecond
}

// PollInterval returns the monitor's configured poll cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollIntervalMs) * time.Millisecond
}

// StepInterval returns the traffic generator's configured step pacing.
func (c *Config) StepInterval() time.Duration {
	return time.Duration(c.TrafficGenerator.StepIntervalMs) * time.Millisecond
}
