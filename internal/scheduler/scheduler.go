// Package scheduler runs periodic usage and seat collection so deployments
// without an external cron keep their data fresh.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

// Ingestor pulls the scope's daily usage into the store.
type Ingestor interface {
	Ingest(ctx context.Context, scope models.Scope) (int, error)
}

// SeatRefresher captures the scope's current seat state.
type SeatRefresher interface {
	Refresh(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, error)
}

// Runner invokes a usage ingest followed by a seat refresh on a fixed
// interval. The first run fires immediately on Start.
type Runner struct {
	scope     models.Scope
	interval  time.Duration
	ingest    Ingestor
	seats     SeatRefresher
	startOnce sync.Once
}

func NewRunner(scope models.Scope, interval time.Duration, ingest Ingestor, seats SeatRefresher) *Runner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Runner{scope: scope, interval: interval, ingest: ingest, seats: seats}
}

// Start launches the collection loop. It returns immediately; the loop stops
// when ctx is cancelled. Subsequent calls are no-ops.
func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.run(ctx)
	})
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.collect(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.collect(ctx)
		}
	}
}

// collect runs one scheduled pass. The seat refresh still runs when the
// usage ingest fails; the two collections are independent.
func (r *Runner) collect(ctx context.Context) {
	runID := uuid.NewString()
	log := slog.With(slog.String("run_id", runID), slog.String("scope", r.scope.String()))
	started := time.Now()

	inserted, err := r.ingest.Ingest(ctx, r.scope)
	if err != nil {
		log.Error("scheduled usage ingest failed", slog.String("error", err.Error()))
	} else {
		log.Info("scheduled usage ingest complete", slog.Int("inserted", inserted))
	}

	if _, err := r.seats.Refresh(ctx, r.scope); err != nil {
		log.Error("scheduled seat refresh failed", slog.String("error", err.Error()))
	}

	log.Info("scheduled collection pass finished",
		slog.Duration("elapsed", time.Since(started)))
}
