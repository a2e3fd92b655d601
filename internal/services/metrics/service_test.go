package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

type fakeStore struct {
	records []models.UsageRecord
	err     error

	gotScope models.Scope
	gotStart string
	gotEnd   string
}

func (f *fakeStore) FindRange(_ context.Context, scope models.Scope, start, end string) ([]models.UsageRecord, error) {
	f.gotScope = scope
	f.gotStart = start
	f.gotEnd = end
	return f.records, f.err
}

func orgScope() models.Scope {
	return models.Scope{Kind: models.ScopeOrganization, Name: "acme"}
}

func TestQueryRangeDefaultsToTrailingWindow(t *testing.T) {
	store := &fakeStore{}
	repo := NewRepository(store)
	repo.now = func() time.Time {
		return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	}

	if _, err := repo.QueryRange(context.Background(), orgScope(), "", ""); err != nil {
		t.Fatalf("QueryRange: %v", err)
	}

	if store.gotStart != "2024-02-13" {
		t.Errorf("start = %s, want 2024-02-13", store.gotStart)
	}
	if store.gotEnd != "2024-03-15" {
		t.Errorf("end = %s, want 2024-03-15", store.gotEnd)
	}
	if store.gotScope.Name != "acme" {
		t.Errorf("scope = %s", store.gotScope)
	}
}

func TestQueryRangeExplicitBounds(t *testing.T) {
	store := &fakeStore{}
	repo := NewRepository(store)

	if _, err := repo.QueryRange(context.Background(), orgScope(), "2024-01-01", "2024-01-31"); err != nil {
		t.Fatalf("QueryRange: %v", err)
	}
	if store.gotStart != "2024-01-01" || store.gotEnd != "2024-01-31" {
		t.Errorf("bounds = [%s, %s]", store.gotStart, store.gotEnd)
	}
}

func TestQueryRangeValidation(t *testing.T) {
	repo := NewRepository(&fakeStore{})

	cases := []struct {
		name       string
		start, end string
	}{
		{"malformed start", "01/01/2024", "2024-01-31"},
		{"malformed end", "2024-01-01", "yesterday"},
		{"end precedes start", "2024-02-01", "2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.QueryRange(context.Background(), orgScope(), tc.start, tc.end)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("err = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestQueryRangeRejectsInvalidScope(t *testing.T) {
	repo := NewRepository(&fakeStore{})
	if _, err := repo.QueryRange(context.Background(), models.Scope{}, "", ""); err == nil {
		t.Fatal("expected scope validation error")
	}
}

func TestQueryRangeLabelsRecordsOnRead(t *testing.T) {
	store := &fakeStore{records: []models.UsageRecord{
		{Day: "2024-01-09", TimeFrameWeek: "stale"},
		{Day: "2024-01-08"},
	}}
	repo := NewRepository(store)

	got, err := repo.QueryRange(context.Background(), orgScope(), "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("QueryRange: %v", err)
	}

	if got[0].Day != "2024-01-08" || got[1].Day != "2024-01-09" {
		t.Fatalf("records not sorted ascending: %s, %s", got[0].Day, got[1].Day)
	}
	for _, rec := range got {
		if rec.TimeFrameWeek != "Jan 08" {
			t.Errorf("day %s week label = %q, want Jan 08", rec.Day, rec.TimeFrameWeek)
		}
		if rec.TimeFrameMonth != "Jan 24" {
			t.Errorf("day %s month label = %q, want Jan 24", rec.Day, rec.TimeFrameMonth)
		}
		if rec.TimeFrameDisplay != rec.TimeFrameWeek {
			t.Errorf("display label should default to the week label, got %q", rec.TimeFrameDisplay)
		}
	}
}

func TestQueryRangeWrapsStoreErrors(t *testing.T) {
	storeErr := errors.New("connection reset")
	repo := NewRepository(&fakeStore{err: storeErr})

	_, err := repo.QueryRange(context.Background(), orgScope(), "2024-01-01", "2024-01-31")
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}
