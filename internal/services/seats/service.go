// Package seats refreshes seat snapshots from the upstream billing endpoints
// and derives the seat-management summary the dashboard renders.
package seats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/github"
	"github.com/santobu/copilot-metrics-dashboard/internal/models"
	"github.com/santobu/copilot-metrics-dashboard/internal/observability"
	"github.com/santobu/copilot-metrics-dashboard/internal/store"
)

// activityWindow is the trailing window a seat must have been active in to
// count as active this cycle.
const activityWindow = 30 * 24 * time.Hour

const (
	dayLayout        = "2006-01-02"
	lastUpdateLayout = "2006-01-02T15:04:05"
)

// Client is the upstream surface the aggregator pulls seats from.
type Client interface {
	EnterpriseSeats(ctx context.Context, scope models.Scope) (int64, []models.Seat, error)
	OrganizationBilling(ctx context.Context, scope models.Scope) (github.OrgBilling, error)
}

// Store persists snapshots and summaries, replaced wholesale by id.
type Store interface {
	ReplaceSnapshot(ctx context.Context, snap models.SeatSnapshot) error
	ReplaceSummary(ctx context.Context, summary models.SeatManagementSummary) error
	FindSnapshot(ctx context.Context, scope models.Scope, date string) (models.SeatSnapshot, error)
	FindSummary(ctx context.Context, scope models.Scope, date string) (models.SeatManagementSummary, error)
}

// SummaryCache keeps the latest summary warm for dashboard reads. A nil cache
// is allowed.
type SummaryCache interface {
	Get(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, bool)
	Set(ctx context.Context, scope models.Scope, summary models.SeatManagementSummary)
}

// Service aggregates seat assignments into daily snapshots and summaries.
type Service struct {
	client  Client
	store   Store
	cache   SummaryCache
	metrics *observability.Provider
	now     func() time.Time
}

func NewService(client Client, st Store, cache SummaryCache, metrics *observability.Provider) *Service {
	return &Service{client: client, store: st, cache: cache, metrics: metrics, now: time.Now}
}

// Refresh captures the scope's current seat state and persists it, replacing
// any snapshot already taken today. No partial snapshot is ever persisted: an
// upstream failure aborts before the store is touched, and a store failure
// aborts the refresh.
func (s *Service) Refresh(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, error) {
	if err := scope.Validate(); err != nil {
		return models.SeatManagementSummary{}, err
	}

	var (
		summary models.SeatManagementSummary
		err     error
	)
	if scope.IsEnterprise() {
		summary, err = s.refreshEnterprise(ctx, scope)
	} else {
		summary, err = s.refreshOrganization(ctx, scope)
	}
	s.metrics.RecordSeatRefresh(scope.String(), err)
	if err != nil {
		return models.SeatManagementSummary{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, scope, summary)
	}
	slog.Info("seat refresh complete",
		slog.String("scope", scope.String()),
		slog.Int64("total_seats", summary.TotalSeats),
		slog.Int64("active", summary.SeatBreakdown.ActiveThisCycle))
	return summary, nil
}

// refreshEnterprise paginates the billing seats endpoint and classifies each
// seat against the trailing 30-day activity window. The enterprise endpoint
// does not report added/pending counts, so those stay zero.
func (s *Service) refreshEnterprise(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, error) {
	fetchStart := s.now()
	total, seats, err := s.client.EnterpriseSeats(ctx, scope)
	s.metrics.RecordUpstreamFetch(scope.String(), "seats", s.now().Sub(fetchStart), err)
	if err != nil {
		return models.SeatManagementSummary{}, fmt.Errorf("refresh seats for %s: %w", scope, err)
	}

	now := s.now().UTC()
	snap := models.SeatSnapshot{
		ID:         models.SnapshotID(now.Format(dayLayout), scope),
		Date:       now.Format(dayLayout),
		LastUpdate: now.Format(lastUpdateLayout),
		Enterprise: scope.Name,
		TotalSeats: total,
		Seats:      seats,
	}

	cutoff := now.Add(-activityWindow)
	var active int64
	for _, seat := range seats {
		if seatActiveSince(seat, cutoff) {
			active++
		}
	}

	summary := models.SeatManagementSummary{
		ID:         snap.ID,
		Date:       snap.Date,
		LastUpdate: snap.LastUpdate,
		Enterprise: scope.Name,
		TotalSeats: total,
		SeatBreakdown: models.SeatBreakdown{
			Total:             int64(len(seats)),
			ActiveThisCycle:   active,
			InactiveThisCycle: int64(len(seats)) - active,
			// Not reported by the enterprise endpoint; left at zero.
			AddedThisCycle:      0,
			PendingInvitation:   0,
			PendingCancellation: 0,
		},
	}

	if err := s.store.ReplaceSnapshot(ctx, snap); err != nil {
		return models.SeatManagementSummary{}, err
	}
	if err := s.store.ReplaceSummary(ctx, summary); err != nil {
		return models.SeatManagementSummary{}, err
	}
	return summary, nil
}

// refreshOrganization relabels the pre-aggregated organization billing
// payload; its breakdown is authoritative so no reclassification applies.
func (s *Service) refreshOrganization(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, error) {
	fetchStart := s.now()
	billing, err := s.client.OrganizationBilling(ctx, scope)
	s.metrics.RecordUpstreamFetch(scope.String(), "billing", s.now().Sub(fetchStart), err)
	if err != nil {
		return models.SeatManagementSummary{}, fmt.Errorf("refresh seats for %s: %w", scope, err)
	}

	now := s.now().UTC()
	summary := models.SeatManagementSummary{
		ID:           models.SnapshotID(now.Format(dayLayout), scope),
		Date:         now.Format(dayLayout),
		LastUpdate:   now.Format(lastUpdateLayout),
		Organization: scope.Name,
		TotalSeats:   billing.SeatBreakdown.Total,
		SeatBreakdown: models.SeatBreakdown{
			Total:               billing.SeatBreakdown.Total,
			ActiveThisCycle:     billing.SeatBreakdown.ActiveThisCycle,
			InactiveThisCycle:   billing.SeatBreakdown.InactiveThisCycle,
			AddedThisCycle:      billing.SeatBreakdown.AddedThisCycle,
			PendingInvitation:   billing.SeatBreakdown.PendingInvitation,
			PendingCancellation: billing.SeatBreakdown.PendingCancellation,
		},
		Policies: models.SeatPolicies{
			SeatManagementSetting: billing.SeatManagementSetting,
			PublicCodeSuggestions: billing.PublicCodeSuggestions,
			IDEChat:               billing.IDEChat,
			PlatformChat:          billing.PlatformChat,
			CLI:                   billing.CLI,
			PlanType:              billing.PlanType,
		},
	}

	if err := s.store.ReplaceSummary(ctx, summary); err != nil {
		return models.SeatManagementSummary{}, err
	}
	return summary, nil
}

// Snapshot returns the seat list captured for the scope on the given date
// (today when empty). A missing snapshot yields an empty capture, not an
// error, so the seats view renders a blank list.
func (s *Service) Snapshot(ctx context.Context, scope models.Scope, date string) (models.SeatSnapshot, error) {
	if err := scope.Validate(); err != nil {
		return models.SeatSnapshot{}, err
	}
	if date == "" {
		date = s.now().UTC().Format(dayLayout)
	} else if _, err := time.Parse(dayLayout, date); err != nil {
		return models.SeatSnapshot{}, fmt.Errorf("invalid snapshot date %q", date)
	}

	snap, err := s.store.FindSnapshot(ctx, scope, date)
	if errors.Is(err, store.ErrNotFound) {
		empty := models.SeatSnapshot{Date: date, Seats: []models.Seat{}}
		if scope.IsEnterprise() {
			empty.Enterprise = scope.Name
		} else {
			empty.Organization = scope.Name
		}
		return empty, nil
	}
	if err != nil {
		return models.SeatSnapshot{}, err
	}
	return snap, nil
}

// Summary returns today's management summary, serving from cache when warm
// and refreshing from upstream when neither cache nor store has it.
func (s *Service) Summary(ctx context.Context, scope models.Scope) (models.SeatManagementSummary, error) {
	if err := scope.Validate(); err != nil {
		return models.SeatManagementSummary{}, err
	}

	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx, scope); ok {
			return summary, nil
		}
	}

	today := s.now().UTC().Format(dayLayout)
	summary, err := s.store.FindSummary(ctx, scope, today)
	if errors.Is(err, store.ErrNotFound) {
		return s.Refresh(ctx, scope)
	}
	if err != nil {
		return models.SeatManagementSummary{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, scope, summary)
	}
	return summary, nil
}

// seatActiveSince reports whether the seat's last activity falls within the
// trailing window. Seats with no recorded activity are inactive.
func seatActiveSince(seat models.Seat, cutoff time.Time) bool {
	if seat.LastActivityAt == nil || *seat.LastActivityAt == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, *seat.LastActivityAt)
	if err != nil {
		return false
	}
	return !ts.Before(cutoff)
}
