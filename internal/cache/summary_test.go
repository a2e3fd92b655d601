package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

func newTestCache(t *testing.T, ttl time.Duration) (*SummaryCache, *miniredis.Miniredis, func()) {
	t.Helper()
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cleanup := func() {
		client.Close()
		server.Close()
	}
	return NewSummaryCache(client, ttl), server, cleanup
}

func testSummary() models.SeatManagementSummary {
	return models.SeatManagementSummary{
		ID:         "2024-03-15-ORG-acme",
		Date:       "2024-03-15",
		TotalSeats: 42,
		SeatBreakdown: models.SeatBreakdown{
			Total:           42,
			ActiveThisCycle: 30,
		},
	}
}

func TestSummaryCacheRoundTrip(t *testing.T) {
	cache, _, cleanup := newTestCache(t, time.Minute)
	defer cleanup()

	ctx := context.Background()
	scope := models.Scope{Kind: models.ScopeOrganization, Name: "acme"}

	if _, ok := cache.Get(ctx, scope); ok {
		t.Fatal("expected miss before Set")
	}

	cache.Set(ctx, scope, testSummary())

	got, ok := cache.Get(ctx, scope)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.TotalSeats != 42 || got.SeatBreakdown.ActiveThisCycle != 30 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestSummaryCacheScopesAreIsolated(t *testing.T) {
	cache, _, cleanup := newTestCache(t, time.Minute)
	defer cleanup()

	ctx := context.Background()
	cache.Set(ctx, models.Scope{Kind: models.ScopeOrganization, Name: "acme"}, testSummary())

	if _, ok := cache.Get(ctx, models.Scope{Kind: models.ScopeEnterprise, Name: "acme"}); ok {
		t.Fatal("enterprise scope must not see the organization entry")
	}
}

func TestSummaryCacheEntryExpires(t *testing.T) {
	cache, server, cleanup := newTestCache(t, time.Minute)
	defer cleanup()

	ctx := context.Background()
	scope := models.Scope{Kind: models.ScopeOrganization, Name: "acme"}
	cache.Set(ctx, scope, testSummary())

	server.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, scope); ok {
		t.Fatal("entry should have expired")
	}
}

func TestSummaryCacheNilIsMiss(t *testing.T) {
	var cache *SummaryCache
	ctx := context.Background()
	scope := models.Scope{Kind: models.ScopeOrganization, Name: "acme"}

	cache.Set(ctx, scope, testSummary())
	if _, ok := cache.Get(ctx, scope); ok {
		t.Fatal("nil cache must behave as a miss")
	}
}
