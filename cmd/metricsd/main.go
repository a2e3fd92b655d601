package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/santobu/copilot-metrics-dashboard/internal/app"
	"github.com/santobu/copilot-metrics-dashboard/internal/config"
	"github.com/santobu/copilot-metrics-dashboard/internal/database"
	"github.com/santobu/copilot-metrics-dashboard/internal/httpserver"
	"github.com/santobu/copilot-metrics-dashboard/internal/observability"
	"github.com/santobu/copilot-metrics-dashboard/internal/redisclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	mongoClient, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	defer database.Disconnect(mongoClient)

	if err := database.EnsureIndexes(ctx, mongoClient.Database(cfg.Mongo.Database)); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	redisClient := redisclient.New(cfg.Redis)
	if err := redisclient.Ping(ctx, redisClient); err != nil {
		log.Printf("redis unavailable, summary cache disabled: %v", err)
		redisClient.Close()
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		log.Fatalf("setup observability: %v", err)
	}
	if obs != nil {
		defer obs.Shutdown(ctx)
	}

	container, err := app.NewContainer(cfg, mongoClient, redisClient, obs)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}

	if container.Scheduler != nil {
		container.Scheduler.Start(ctx)
	}

	server, err := httpserver.New(container)
	if err != nil {
		log.Fatalf("construct server: %v", err)
	}

	if err := server.Listen(ctx); err != nil && err != context.Canceled {
		log.Fatalf("server stopped: %v", err)
	}
}
