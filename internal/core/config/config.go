package config

import (
	"time"

	"github.com/vietddude/eventmailer/internal/core/domain"
	redisclient "github.com/vietddude/eventmailer/internal/infra/redis"
	"github.com/vietddude/eventmailer/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
	Customer  domain.Customer    `yaml:"customer"`
	Taxonomy  TaxonomyConfig     `yaml:"taxonomy"`
	Selection SelectionConfig    `yaml:"selection"`
	Distance  DistanceConfig     `yaml:"distance"`
	Cache     CacheConfig        `yaml:"cache"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
	Notify    NotifyConfig       `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// GRPCPort serves distance.v1.DistanceService in serve mode; 0 disables it.
	GRPCPort int `yaml:"grpc_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TaxonomyConfig points at the taxonomy source. An empty path selects the
// embedded sample catalogue.
type TaxonomyConfig struct {
	Path string `yaml:"path"`
}

// SelectionConfig controls the fixed-size strategies.
type SelectionConfig struct {
	Count  int    `yaml:"count"`
	Policy string `yaml:"policy"` // partial, strict
}

// DistanceConfig selects and tunes the distance service.
type DistanceConfig struct {
	Provider    string        `yaml:"provider"` // simulated, http, grpc
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	Seed        uint64        `yaml:"seed"`
	FailureRate float64       `yaml:"failure_rate"`
	Concurrency int           `yaml:"concurrency"`
	Retry       RetryConfig   `yaml:"retry"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

// RetryConfig defines the lookup retry budget.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// BreakerConfig configures the circuit breaker around remote providers.
type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	Timeout             time.Duration `yaml:"timeout"`
}

// CacheConfig selects the distance cache backend.
type CacheConfig struct {
	Backend string        `yaml:"backend"` // memory, redis
	TTL     time.Duration `yaml:"ttl"`
}

// NotifyConfig lists the sinks chosen events are delivered to.
type NotifyConfig struct {
	Sinks []string `yaml:"sinks"` // console, outbox
}
