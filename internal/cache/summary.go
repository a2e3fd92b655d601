// Package cache provides a Redis-backed cache for seat management summaries
// so dashboard reads do not hit Mongo or GitHub on every request.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

// SummaryCache stores the latest seat management summary per scope with a
// TTL. All methods are nil-safe and degrade to cache misses, so callers never
// fail because Redis is unavailable.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

func (c *SummaryCache) Get(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, bool) {
	if c == nil || c.client == nil {
		return models.SeatManagementSummary{}, false
	}
	data, err := c.client.Get(ctx, summaryKey(scope)).Bytes()
	if err != nil {
		return models.SeatManagementSummary{}, false
	}
	var summary models.SeatManagementSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return models.SeatManagementSummary{}, false
	}
	return summary, true
}

func (c *SummaryCache) Set(ctx context.Context, scope models.Scope, summary models.SeatManagementSummary) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	c.client.Set(ctx, summaryKey(scope), data, c.ttl)
}

func summaryKey(scope models.Scope) string {
	return "seat_summary:" + scope.String()
}
