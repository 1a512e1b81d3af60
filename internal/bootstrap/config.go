// Package bootstrap wires configuration, storage, providers and the HTTP
// server into a runnable service.
package bootstrap

import (
	"fmt"
	"log"

	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/logger"
)

// LoadConfig loads configuration. Uses defaults if the file doesn't exist.
func LoadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Warning: failed to load config file (%s), using defaults: %v", configPath, err)
		cfg = &config.Config{}
		cfg.SetDefaults()
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return l.With(logger.String("service", cfg.Service.Name)), nil
}
