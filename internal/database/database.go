// Package database owns the MongoDB client lifecycle: opened at startup,
// health-checked, and closed at shutdown. The handle is passed explicitly to
// the stores rather than shared through package state.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/santobu/copilot-metrics-dashboard/internal/config"
)

// Connect establishes a MongoDB client using the provided configuration and
// verifies connectivity before returning.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// Disconnect closes the client with a bounded timeout.
func Disconnect(client *mongo.Client) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes the stores rely on. Usage records
// are unique per day within a scope; snapshots and summaries are looked up by
// date within a scope.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	usageIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "day", Value: 1},
			{Key: "enterprise", Value: 1},
			{Key: "organization", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection(UsageCollection).Indexes().CreateOne(ctx, usageIndex); err != nil {
		return fmt.Errorf("create usage index: %w", err)
	}

	snapshotIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "enterprise", Value: 1},
			{Key: "organization", Value: 1},
		},
	}
	for _, coll := range []string{SeatSnapshotCollection, SeatSummaryCollection} {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, snapshotIndex); err != nil {
			return fmt.Errorf("create %s index: %w", coll, err)
		}
	}
	return nil
}

// Collection names shared with the store package.
const (
	UsageCollection        = "copilot_usage"
	SeatSnapshotCollection = "copilot_seats"
	SeatSummaryCollection  = "copilot_seat_management"
)
