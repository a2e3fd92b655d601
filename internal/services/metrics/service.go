// Package metrics exposes the date-bounded read path over persisted daily
// usage records.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
	"github.com/santobu/copilot-metrics-dashboard/internal/timeframe"
)

var ErrInvalidRange = errors.New("invalid date range")

// defaultWindowDays is the trailing window applied when no explicit range is
// requested.
const defaultWindowDays = 31

const dayLayout = "2006-01-02"

// Store is the usage persistence surface the repository reads from.
type Store interface {
	FindRange(ctx context.Context, scope models.Scope, start, end string) ([]models.UsageRecord, error)
}

// Repository queries persisted usage records bounded by a date range.
type Repository struct {
	store Store
	now   func() time.Time
}

func NewRepository(store Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// QueryRange returns the scope's records with day in [start, end] inclusive,
// ascending by day. Empty bounds default to the trailing 31 days from today.
// Time-frame labels are re-derived on every read, never trusted from storage.
func (r *Repository) QueryRange(ctx context.Context, scope models.Scope, start, end string) ([]models.UsageRecord, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if start == "" || end == "" {
		today := r.now().UTC()
		end = today.Format(dayLayout)
		start = today.AddDate(0, 0, -defaultWindowDays).Format(dayLayout)
	} else {
		startDay, err := time.Parse(dayLayout, start)
		if err != nil {
			return nil, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
		}
		endDay, err := time.Parse(dayLayout, end)
		if err != nil {
			return nil, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
		}
		if endDay.Before(startDay) {
			return nil, fmt.Errorf("%w: end precedes start", ErrInvalidRange)
		}
	}

	records, err := r.store.FindRange(ctx, scope, start, end)
	if err != nil {
		return nil, fmt.Errorf("query usage range: %w", err)
	}
	return timeframe.Apply(records), nil
}
