// Package store implements the document-store repositories backing the
// metrics pipeline: usage records keyed by day within a scope, and seat
// snapshots/summaries keyed by composite id.
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

// ErrNotFound reports a find-one miss.
var ErrNotFound = errors.New("store: not found")

// UsageStore persists daily usage records.
type UsageStore struct {
	coll *mongo.Collection
}

func NewUsageStore(db *mongo.Database) *UsageStore {
	return &UsageStore{coll: db.Collection(database.UsageCollection)}
}

// InsertIfAbsent writes the record unless its day already exists within the
// scope. Returns true when a new document was inserted. An existing day is
// never overwritten, even if the incoming values differ.
func (s *UsageStore) InsertIfAbsent(ctx context.Context, rec models.UsageRecord) (bool, error) {
	filter := scopeFilter(rec.Enterprise, rec.Organization)
	filter["day"] = rec.Day

	res, err := s.coll.UpdateOne(ctx, filter,
		bson.M{"$setOnInsert": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("store: insert usage for %s: %w", rec.Day, err)
	}
	return res.UpsertedCount > 0, nil
}

// FindRange returns every record whose day falls within [start, end] for the
// scope, ascending by day.
func (s *UsageStore) FindRange(ctx context.Context, scope models.Scope, start, end string) ([]models.UsageRecord, error) {
	filter := scopeFilterFor(scope)
	filter["day"] = bson.M{"$gte": start, "$lte": end}

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "day", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("store: find usage range: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.UsageRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("store: decode usage range: %w", err)
	}
	return records, nil
}

func scopeFilterFor(scope models.Scope) bson.M {
	if scope.IsEnterprise() {
		return bson.M{"enterprise": scope.Name}
	}
	return bson.M{"organization": scope.Name}
}

func scopeFilter(enterprise, organization string) bson.M {
	if enterprise != "" {
		return bson.M{"enterprise": enterprise}
	}
	return bson.M{"organization": organization}
}
