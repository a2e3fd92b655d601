// Package app wires configuration, storage, and services into a single
// dependency container consumed by the HTTP server and the scheduler.
package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/santobu/copilot-metrics-dashboard/internal/cache"
	"github.com/santobu/copilot-metrics-dashboard/internal/config"
	"github.com/santobu/copilot-metrics-dashboard/internal/github"
	"github.com/santobu/copilot-metrics-dashboard/internal/models"
	"github.com/santobu/copilot-metrics-dashboard/internal/observability"
	"github.com/santobu/copilot-metrics-dashboard/internal/scheduler"
	ingestsvc "github.com/santobu/copilot-metrics-dashboard/internal/services/ingest"
	metricssvc "github.com/santobu/copilot-metrics-dashboard/internal/services/metrics"
	seatsvc "github.com/santobu/copilot-metrics-dashboard/internal/services/seats"
	"github.com/santobu/copilot-metrics-dashboard/internal/store"
)

// Container aggregates runtime dependencies for handlers and the scheduler.
type Container struct {
	Config        *config.Config
	Scope         models.Scope
	Mongo         *mongo.Client
	Redis         *redis.Client
	GitHub        *github.Client
	UsageStore    *store.UsageStore
	SeatStore     *store.SeatStore
	SummaryCache  *cache.SummaryCache
	Ingest        *ingestsvc.Service
	Seats         *seatsvc.Service
	Metrics       *metricssvc.Repository
	Scheduler     *scheduler.Runner
	Observability *observability.Provider
}

// NewContainer builds a dependency container from the provided primitives.
// Redis is optional; without it the seat summary cache degrades to misses.
func NewContainer(cfg *config.Config, mongoClient *mongo.Client, redisClient *redis.Client, obs *observability.Provider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if mongoClient == nil {
		return nil, fmt.Errorf("mongo client is required")
	}

	scope := cfg.Scope()
	if err := scope.Validate(); err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	db := mongoClient.Database(cfg.Mongo.Database)
	usageStore := store.NewUsageStore(db)
	seatStore := store.NewSeatStore(db)

	var summaryCache *cache.SummaryCache
	if redisClient != nil {
		summaryCache = cache.NewSummaryCache(redisClient, cfg.Redis.SummaryTTL)
	}

	ghClient := github.NewClient(cfg.GitHub)
	ingestService := ingestsvc.NewService(ghClient, usageStore, obs)
	seatService := seatsvc.NewService(ghClient, seatStore, summaryCache, obs)
	metricsRepo := metricssvc.NewRepository(usageStore)

	c := &Container{
		Config:        cfg,
		Scope:         scope,
		Mongo:         mongoClient,
		Redis:         redisClient,
		GitHub:        ghClient,
		UsageStore:    usageStore,
		SeatStore:     seatStore,
		SummaryCache:  summaryCache,
		Ingest:        ingestService,
		Seats:         seatService,
		Metrics:       metricsRepo,
		Observability: obs,
	}

	if cfg.Scheduler.Enabled {
		c.Scheduler = scheduler.NewRunner(scope, cfg.Scheduler.Interval, ingestService, seatService)
	}

	return c, nil
}
