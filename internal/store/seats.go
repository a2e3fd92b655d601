package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/santobu/copilot-metrics-dashboard/internal/database"
	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

// SeatStore persists daily seat snapshots and the derived management
// summaries. Both are replaced wholesale by id on refresh, never merged.
type SeatStore struct {
	snapshots *mongo.Collection
	summaries *mongo.Collection
}

func NewSeatStore(db *mongo.Database) *SeatStore {
	return &SeatStore{
		snapshots: db.Collection(database.SeatSnapshotCollection),
		summaries: db.Collection(database.SeatSummaryCollection),
	}
}

// ReplaceSnapshot upserts the snapshot by its composite id. A second refresh
// for the same day replaces the capture rather than appending to it.
func (s *SeatStore) ReplaceSnapshot(ctx context.Context, snap models.SeatSnapshot) error {
	_, err := s.snapshots.ReplaceOne(ctx,
		bson.M{"_id": snap.ID},
		snap,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: replace seat snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// ReplaceSummary upserts the management summary by its composite id.
func (s *SeatStore) ReplaceSummary(ctx context.Context, summary models.SeatManagementSummary) error {
	_, err := s.summaries.ReplaceOne(ctx,
		bson.M{"_id": summary.ID},
		summary,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: replace seat summary %s: %w", summary.ID, err)
	}
	return nil
}

// FindSnapshot returns the snapshot captured for the scope on the given date,
// or ErrNotFound when none exists.
func (s *SeatStore) FindSnapshot(ctx context.Context, scope models.Scope, date string) (models.SeatSnapshot, error) {
	filter := scopeFilterFor(scope)
	filter["date"] = date

	var snap models.SeatSnapshot
	err := s.snapshots.FindOne(ctx, filter).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SeatSnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.SeatSnapshot{}, fmt.Errorf("store: find seat snapshot: %w", err)
	}
	return snap, nil
}

// FindSummary returns the management summary for the scope on the given date,
// or ErrNotFound when none exists.
func (s *SeatStore) FindSummary(ctx context.Context, scope models.Scope, date string) (models.SeatManagementSummary, error) {
	filter := scopeFilterFor(scope)
	filter["date"] = date

	var summary models.SeatManagementSummary
	err := s.summaries.FindOne(ctx, filter).Decode(&summary)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SeatManagementSummary{}, ErrNotFound
	}
	if err != nil {
		return models.SeatManagementSummary{}, fmt.Errorf("store: find seat summary: %w", err)
	}
	return summary, nil
}
