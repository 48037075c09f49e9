package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	var cfg AppConfig
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults fills zero values with their defaults.
func ApplyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Customer.Name == "" {
		cfg.Customer.Name = "Mr. Fake"
	}
	if cfg.Customer.City == "" {
		cfg.Customer.City = "New York"
	}

	if cfg.Selection.Count == 0 {
		cfg.Selection.Count = 5
	}
	if cfg.Selection.Policy == "" {
		cfg.Selection.Policy = "partial"
	}

	if cfg.Distance.Provider == "" {
		cfg.Distance.Provider = "simulated"
	}
	if cfg.Distance.Timeout == 0 {
		cfg.Distance.Timeout = 2 * time.Second
	}
	if cfg.Distance.Concurrency == 0 {
		cfg.Distance.Concurrency = 4
	}
	if cfg.Distance.Retry.MaxAttempts == 0 {
		cfg.Distance.Retry.MaxAttempts = 2
	}
	if cfg.Distance.Retry.InitialDelay == 0 {
		cfg.Distance.Retry.InitialDelay = 50 * time.Millisecond
	}
	if cfg.Distance.Retry.MaxDelay == 0 {
		cfg.Distance.Retry.MaxDelay = time.Second
	}
	if cfg.Distance.Breaker.ConsecutiveFailures == 0 {
		cfg.Distance.Breaker.ConsecutiveFailures = 5
	}
	if cfg.Distance.Breaker.Timeout == 0 {
		cfg.Distance.Breaker.Timeout = 30 * time.Second
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}

	if len(cfg.Notify.Sinks) == 0 {
		cfg.Notify.Sinks = []string{"console"}
	}
}
