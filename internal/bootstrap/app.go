package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/northstar-funding/discovery/internal/antispam"
	"github.com/northstar-funding/discovery/internal/api"
	"github.com/northstar-funding/discovery/internal/cache"
	"github.com/northstar-funding/discovery/internal/config"
	"github.com/northstar-funding/discovery/internal/logger"
	"github.com/northstar-funding/discovery/internal/metrics"
	"github.com/northstar-funding/discovery/internal/provider"
	"github.com/northstar-funding/discovery/internal/registry"
	"github.com/northstar-funding/discovery/internal/scoring"
	"github.com/northstar-funding/discovery/internal/search"
)

const defaultHTTPTimeout = 30 * time.Second

// cachedRegistry overlays the Redis skip cache on the registry's gate while
// every other registry operation passes through untouched.
type cachedRegistry struct {
	*registry.Registry
	skip *cache.BlacklistCache
}

func (c *cachedRegistry) ShouldProcess(ctx context.Context, name string) (bool, error) {
	return c.skip.ShouldProcess(ctx, name)
}

// PipelineComponents holds the assembled discovery pipeline.
type PipelineComponents struct {
	DB           *sqlx.DB
	Redis        *redis.Client
	Database     *DatabaseComponents
	Registry     *registry.Registry
	Orchestrator *search.Orchestrator
	Telemetry    *metrics.Provider
}

// NewPipeline assembles providers, detectors, scorer, registry and the
// orchestrator on top of the persistence layer.
func NewPipeline(cfg *config.Config, log logger.Logger) (*PipelineComponents, error) {
	dbComps, err := SetupDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	providers, err := provider.FromConfig(cfg.Providers, log)
	if err != nil {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("setup providers: %w", err)
	}
	if len(providers) == 0 {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("no search providers enabled")
	}
	log.Info("search providers initialized", logger.Int("count", len(providers)))

	reg := registry.New(dbComps.Domains, log)

	var gate search.DomainRegistry = reg
	rdb := SetupRedis(cfg, log)
	if rdb != nil {
		gate = &cachedRegistry{
			Registry: reg,
			skip:     cache.NewBlacklistCache(reg, rdb, cfg.Redis.BlacklistTTL, log),
		}
	}

	telemetry := metrics.NewProvider()

	orch := search.NewOrchestrator(
		providers,
		antispam.NewFilter(log),
		scoring.NewConfidenceScorer(log),
		gate,
		dbComps.Sessions,
		dbComps.Candidates,
		telemetry,
		log,
	)

	return &PipelineComponents{
		DB:           dbComps.DB,
		Redis:        rdb,
		Database:     dbComps,
		Registry:     reg,
		Orchestrator: orch,
		Telemetry:    telemetry,
	}, nil
}

// HTTPComponents holds all components needed for the HTTP server.
type HTTPComponents struct {
	Pipeline *PipelineComponents
	Handler  *api.Handler
	Server   *api.Server
}

// NewHTTPComponents creates all components for the HTTP server.
func NewHTTPComponents(cfg *config.Config, log logger.Logger) (*HTTPComponents, error) {
	pipeline, err := NewPipeline(cfg, log)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(
		pipeline.Orchestrator,
		pipeline.Registry,
		pipeline.Database.Domains,
		pipeline.Database.Sessions,
		pipeline.Database.Candidates,
		pipeline.DB,
		cfg.Service.MaxResults,
		log,
	)

	server := api.NewServer(handler, pipeline.Telemetry.Handler(), api.ServerConfig{
		Port:        cfg.Service.Port,
		ReadTimeout: defaultHTTPTimeout,
		Debug:       cfg.Service.Debug,
	}, log)

	return &HTTPComponents{
		Pipeline: pipeline,
		Handler:  handler,
		Server:   server,
	}, nil
}

// Close releases the pipeline's external connections.
func (p *PipelineComponents) Close() {
	if p.Redis != nil {
		_ = p.Redis.Close()
	}
	_ = p.DB.Close()
}

// HTTPShutdownTimeout returns the timeout for HTTP server graceful shutdown.
func HTTPShutdownTimeout() time.Duration {
	return defaultHTTPTimeout
}
