package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		MemorySize int `yaml:"memory_size"`
		TTL        struct {
			Fractal    time.Duration `yaml:"fractal"`
			Risk       time.Duration `yaml:"risk"`
			Volatility time.Duration `yaml:"volatility"`
			Regime     time.Duration `yaml:"regime"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Analytics struct {
		Workers   int           `yaml:"workers"`
		QueueWait time.Duration `yaml:"queue_wait"`
		Hurst     struct {
			MeanRevertBelow float64 `yaml:"mean_revert_below"`
			TrendingAbove   float64 `yaml:"trending_above"`
		} `yaml:"hurst"`
		Volatility struct {
			Engine        string `yaml:"engine"` // garch | rolling
			AllowFallback bool   `yaml:"allow_fallback"`
		} `yaml:"volatility"`
		Regime struct {
			Engine        string `yaml:"engine"` // hmm | buckets
			AllowFallback bool   `yaml:"allow_fallback"`
		} `yaml:"regime"`
	} `yaml:"analytics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("REGIME_ENGINE"); v != "" {
		c.Analytics.Regime.Engine = strings.ToLower(v)
	}
	if v := os.Getenv("VOLATILITY_ENGINE"); v != "" {
		c.Analytics.Volatility.Engine = strings.ToLower(v)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Analytics.Workers <= 0 {
		c.Analytics.Workers = 4
	}
	if c.Analytics.QueueWait <= 0 {
		c.Analytics.QueueWait = 5 * time.Second
	}
	if c.Analytics.Hurst.MeanRevertBelow == 0 {
		c.Analytics.Hurst.MeanRevertBelow = 0.45
	}
	if c.Analytics.Hurst.TrendingAbove == 0 {
		c.Analytics.Hurst.TrendingAbove = 0.55
	}
	if c.Analytics.Volatility.Engine == "" {
		c.Analytics.Volatility.Engine = "garch"
	}
	if c.Analytics.Regime.Engine == "" {
		c.Analytics.Regime.Engine = "hmm"
	}
	if c.Cache.TTL.Fractal <= 0 {
		c.Cache.TTL.Fractal = 5 * time.Minute
	}
	if c.Cache.TTL.Risk <= 0 {
		c.Cache.TTL.Risk = time.Minute
	}
	if c.Cache.TTL.Volatility <= 0 {
		c.Cache.TTL.Volatility = time.Minute
	}
	if c.Cache.TTL.Regime <= 0 {
		c.Cache.TTL.Regime = 5 * time.Minute
	}
	if c.Cache.MemorySize <= 0 {
		c.Cache.MemorySize = 4096
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	switch c.Analytics.Regime.Engine {
	case "hmm", "buckets":
	default:
		return fmt.Errorf("analytics.regime.engine must be 'hmm' or 'buckets', got '%s'", c.Analytics.Regime.Engine)
	}
	switch c.Analytics.Volatility.Engine {
	case "garch", "rolling":
	default:
		return fmt.Errorf("analytics.volatility.engine must be 'garch' or 'rolling', got '%s'", c.Analytics.Volatility.Engine)
	}
	if c.Analytics.Hurst.MeanRevertBelow >= c.Analytics.Hurst.TrendingAbove {
		return fmt.Errorf("analytics.hurst thresholds out of order")
	}
	return nil
}
