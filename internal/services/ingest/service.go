// Package ingest pulls daily usage payloads from the upstream API and writes
// them through the document store, one immutable record per day per scope.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
	"github.com/santobu/copilot-metrics-dashboard/internal/observability"
)

// Fetcher retrieves the single-page usage payload for a scope.
type Fetcher interface {
	Usage(ctx context.Context, scope models.Scope) ([]models.UsageRecord, error)
}

// Writer persists usage records idempotently by day.
type Writer interface {
	InsertIfAbsent(ctx context.Context, rec models.UsageRecord) (bool, error)
}

// Service orchestrates fetch, normalize and idempotent store for daily usage.
type Service struct {
	fetcher Fetcher
	writer  Writer
	metrics *observability.Provider
	now     func() time.Time
}

func NewService(fetcher Fetcher, writer Writer, metrics *observability.Provider) *Service {
	return &Service{fetcher: fetcher, writer: writer, metrics: metrics, now: time.Now}
}

// Ingest fetches the scope's usage payload and inserts every day not yet
// stored, stamping each with the ingestion time. Existing days are never
// overwritten, even when upstream values differ. A fetch failure aborts the
// run; a per-record store failure is logged and skipped, to be retried on the
// next scheduled run when upstream still returns that day.
func (s *Service) Ingest(ctx context.Context, scope models.Scope) (int, error) {
	if err := scope.Validate(); err != nil {
		return 0, err
	}

	fetchStart := s.now()
	records, err := s.fetcher.Usage(ctx, scope)
	s.metrics.RecordUpstreamFetch(scope.String(), "usage", s.now().Sub(fetchStart), err)
	if err != nil {
		return 0, fmt.Errorf("ingest %s: %w", scope, err)
	}

	stamp := s.now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, rec := range records {
		rec.IngestedAt = stamp
		wrote, err := s.writer.InsertIfAbsent(ctx, rec)
		if err != nil {
			slog.Warn("skipping usage record",
				slog.String("scope", scope.String()),
				slog.String("day", rec.Day),
				slog.String("error", err.Error()))
			continue
		}
		if wrote {
			inserted++
		}
	}

	s.metrics.RecordIngestedRecords(scope.String(), inserted)
	slog.Info("usage ingestion complete",
		slog.String("scope", scope.String()),
		slog.Int("fetched", len(records)),
		slog.Int("inserted", inserted))
	return inserted, nil
}
