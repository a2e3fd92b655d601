package models

import "fmt"

// Seat is one assigned license to a user.
type Seat struct {
	UserID             int64   `bson:"user_id" json:"user_id"`
	UserLogin          string  `bson:"user_login" json:"user_login"`
	AssignmentDate     string  `bson:"assignment_date,omitempty" json:"assignment_date,omitempty"`
	LastActivityAt     *string `bson:"last_activity_at,omitempty" json:"last_activity_at,omitempty"`
	LastActivityEditor *string `bson:"last_activity_editor,omitempty" json:"last_activity_editor,omitempty"`
	CreatedAt          string  `bson:"created_at" json:"created_at"`
}

// SeatSnapshot is a point-in-time capture of every assigned seat for a scope.
// One snapshot exists per scope per day; a refresh replaces it wholesale.
type SeatSnapshot struct {
	ID           string `bson:"_id" json:"id"`
	Date         string `bson:"date" json:"date"`
	LastUpdate   string `bson:"last_update" json:"last_update"`
	Enterprise   string `bson:"enterprise,omitempty" json:"enterprise,omitempty"`
	Organization string `bson:"organization,omitempty" json:"organization,omitempty"`
	TotalSeats   int64  `bson:"total_seats" json:"total_seats"`
	Seats        []Seat `bson:"seats" json:"seats"`
}

// SeatBreakdown carries the seat counts a dashboard summary renders.
type SeatBreakdown struct {
	Total               int64 `bson:"total" json:"total"`
	ActiveThisCycle     int64 `bson:"active_this_cycle" json:"active_this_cycle"`
	InactiveThisCycle   int64 `bson:"inactive_this_cycle" json:"inactive_this_cycle"`
	AddedThisCycle      int64 `bson:"added_this_cycle" json:"added_this_cycle"`
	PendingInvitation   int64 `bson:"pending_invitation" json:"pending_invitation"`
	PendingCancellation int64 `bson:"pending_cancellation" json:"pending_cancellation"`
}

// SeatPolicies echoes the policy-setting strings the billing endpoint reports.
type SeatPolicies struct {
	SeatManagementSetting string `bson:"seat_management_setting" json:"seat_management_setting"`
	PublicCodeSuggestions string `bson:"public_code_suggestions" json:"public_code_suggestions"`
	IDEChat               string `bson:"ide_chat" json:"ide_chat"`
	PlatformChat          string `bson:"platform_chat" json:"platform_chat"`
	CLI                   string `bson:"cli" json:"cli"`
	PlanType              string `bson:"plan_type" json:"plan_type"`
}

// SeatManagementSummary is the derived seat-management view persisted per scope
// per day, keyed by the same composite id scheme as SeatSnapshot.
type SeatManagementSummary struct {
	ID            string        `bson:"_id" json:"id"`
	Date          string        `bson:"date" json:"date"`
	LastUpdate    string        `bson:"last_update" json:"last_update"`
	Enterprise    string        `bson:"enterprise,omitempty" json:"enterprise,omitempty"`
	Organization  string        `bson:"organization,omitempty" json:"organization,omitempty"`
	TotalSeats    int64         `bson:"total_seats" json:"total_seats"`
	SeatBreakdown SeatBreakdown `bson:"seat_breakdown" json:"seat_breakdown"`
	Policies      SeatPolicies  `bson:"policies" json:"policies"`
}

// SnapshotID builds the composite document id for a scope's daily capture,
// e.g. "2024-01-15-ENT-acme" or "2024-01-15-ORG-acme".
func SnapshotID(date string, scope Scope) string {
	kind := "ORG"
	if scope.IsEnterprise() {
		kind = "ENT"
	}
	return fmt.Sprintf("%s-%s-%s", date, kind, scope.Name)
}
