package github

import (
	"fmt"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

// usageDay is the wire shape of one element of the usage endpoint's JSON array.
// Payloads are validated and coerced here rather than propagated untyped.
type usageDay struct {
	Day                  string           `json:"day"`
	TotalSuggestions     int64            `json:"total_suggestions_count"`
	TotalAcceptances     int64            `json:"total_acceptances_count"`
	TotalLinesSuggested  int64            `json:"total_lines_suggested"`
	TotalLinesAccepted   int64            `json:"total_lines_accepted"`
	TotalActiveUsers     int64            `json:"total_active_users"`
	TotalChatAcceptances int64            `json:"total_chat_acceptances"`
	TotalChatTurns       int64            `json:"total_chat_turns"`
	TotalActiveChatUsers int64            `json:"total_active_chat_users"`
	Breakdown            []breakdownEntry `json:"breakdown"`
}

type breakdownEntry struct {
	Language         string `json:"language"`
	Editor           string `json:"editor"`
	SuggestionsCount int64  `json:"suggestions_count"`
	AcceptancesCount int64  `json:"acceptances_count"`
	LinesSuggested   int64  `json:"lines_suggested"`
	LinesAccepted    int64  `json:"lines_accepted"`
	ActiveUsers      int64  `json:"active_users"`
}

func (u usageDay) toRecord(scope models.Scope) (models.UsageRecord, error) {
	if _, err := time.Parse("2006-01-02", u.Day); err != nil {
		return models.UsageRecord{}, fmt.Errorf("usage day %q is not YYYY-MM-DD", u.Day)
	}
	rec := models.UsageRecord{
		Day:                  u.Day,
		TotalSuggestions:     u.TotalSuggestions,
		TotalAcceptances:     u.TotalAcceptances,
		TotalLinesSuggested:  u.TotalLinesSuggested,
		TotalLinesAccepted:   u.TotalLinesAccepted,
		TotalActiveUsers:     u.TotalActiveUsers,
		TotalChatAcceptances: u.TotalChatAcceptances,
		TotalChatTurns:       u.TotalChatTurns,
		TotalActiveChatUsers: u.TotalActiveChatUsers,
		Breakdown:            make([]models.Breakdown, 0, len(u.Breakdown)),
	}
	if scope.IsEnterprise() {
		rec.Enterprise = scope.Name
	} else {
		rec.Organization = scope.Name
	}
	for _, b := range u.Breakdown {
		rec.Breakdown = append(rec.Breakdown, models.Breakdown{
			Language:         b.Language,
			Editor:           b.Editor,
			SuggestionsCount: b.SuggestionsCount,
			AcceptancesCount: b.AcceptancesCount,
			LinesSuggested:   b.LinesSuggested,
			LinesAccepted:    b.LinesAccepted,
			ActiveUsers:      b.ActiveUsers,
		})
	}
	return rec, nil
}

// seatsPage is one page of the enterprise billing seats endpoint.
type seatsPage struct {
	TotalSeats int64         `json:"total_seats"`
	Seats      []seatPayload `json:"seats"`
}

// seatPayload coerces the upstream seat assignment shape (nested assignee)
// into the flat Seat model.
type seatPayload struct {
	Assignee struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
	} `json:"assignee"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
	LastActivityAt     *string `json:"last_activity_at"`
	LastActivityEditor *string `json:"last_activity_editor"`
}

func (s seatPayload) toSeat() models.Seat {
	return models.Seat{
		UserID:             s.Assignee.ID,
		UserLogin:          s.Assignee.Login,
		AssignmentDate:     s.CreatedAt,
		LastActivityAt:     s.LastActivityAt,
		LastActivityEditor: s.LastActivityEditor,
		CreatedAt:          s.CreatedAt,
	}
}

// OrgBilling is the organization billing endpoint's pre-aggregated payload.
// Its seat breakdown is authoritative; no reclassification is applied.
type OrgBilling struct {
	SeatBreakdown struct {
		Total               int64 `json:"total"`
		ActiveThisCycle     int64 `json:"active_this_cycle"`
		InactiveThisCycle   int64 `json:"inactive_this_cycle"`
		AddedThisCycle      int64 `json:"added_this_cycle"`
		PendingInvitation   int64 `json:"pending_invitation"`
		PendingCancellation int64 `json:"pending_cancellation"`
	} `json:"seat_breakdown"`
	SeatManagementSetting string `json:"seat_management_setting"`
	PublicCodeSuggestions string `json:"public_code_suggestions"`
	IDEChat               string `json:"ide_chat"`
	PlatformChat          string `json:"platform_chat"`
	CLI                   string `json:"cli"`
	PlanType              string `json:"plan_type"`
}
