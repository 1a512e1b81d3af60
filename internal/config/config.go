// Package config provides configuration loading for the discovery service.
package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName     = "discovery"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8090
	defaultMaxResults      = 20
	defaultDBHost          = "localhost"
	defaultDBPort          = "5432"
	defaultDBUser          = "postgres"
	defaultDBName          = "discovery"
	defaultDBSSLMode       = "disable"
	defaultRedisAddress    = "localhost:6379"
	defaultBlacklistTTL    = 24 * time.Hour
	defaultProviderTimeout = 5 * time.Second
	defaultProviderRate    = 1.0
	defaultProviderBurst   = 1
	defaultDailyLimit      = 2000
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
)

// Config holds all configuration for the discovery service.
type Config struct {
	Service   ServiceConfig    `yaml:"service"`
	Database  DatabaseConfig   `yaml:"database"`
	Redis     RedisConfig      `yaml:"redis"`
	Providers []ProviderConfig `yaml:"providers"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	Port       int    `env:"DISCOVERY_PORT" yaml:"port"`
	Debug      bool   `env:"APP_DEBUG"      yaml:"debug"`
	MaxResults int    `yaml:"max_results"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     string `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// RedisConfig holds the blacklist cache configuration.
type RedisConfig struct {
	Address      string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password     string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB           int           `yaml:"db"`
	Enabled      bool          `yaml:"enabled"`
	BlacklistTTL time.Duration `yaml:"blacklist_ttl"`
}

// ProviderConfig holds configuration for one search provider client.
type ProviderConfig struct {
	Name       string        `yaml:"name"`
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Burst      int           `yaml:"burst"`
	DailyLimit int           `yaml:"daily_limit"`
	Enabled    bool          `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultServicePort
	}
	if c.Service.MaxResults == 0 {
		c.Service.MaxResults = defaultMaxResults
	}

	if c.Database.Host == "" {
		c.Database.Host = defaultDBHost
	}
	if c.Database.Port == "" {
		c.Database.Port = defaultDBPort
	}
	if c.Database.User == "" {
		c.Database.User = defaultDBUser
	}
	if c.Database.Database == "" {
		c.Database.Database = defaultDBName
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = defaultDBSSLMode
	}

	if c.Redis.Address == "" {
		c.Redis.Address = defaultRedisAddress
	}
	if c.Redis.BlacklistTTL == 0 {
		c.Redis.BlacklistTTL = defaultBlacklistTTL
	}

	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Timeout == 0 {
			p.Timeout = defaultProviderTimeout
		}
		if p.RatePerSec == 0 {
			p.RatePerSec = defaultProviderRate
		}
		if p.Burst == 0 {
			p.Burst = defaultProviderBurst
		}
		if p.DailyLimit == 0 {
			p.DailyLimit = defaultDailyLimit
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
