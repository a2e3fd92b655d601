package models

// Breakdown is one (language, editor) pair's slice of a day's counters.
type Breakdown struct {
	Language         string `bson:"language" json:"language"`
	Editor           string `bson:"editor" json:"editor"`
	SuggestionsCount int64  `bson:"suggestions_count" json:"suggestions_count"`
	AcceptancesCount int64  `bson:"acceptances_count" json:"acceptances_count"`
	LinesSuggested   int64  `bson:"lines_suggested" json:"lines_suggested"`
	LinesAccepted    int64  `bson:"lines_accepted" json:"lines_accepted"`
	ActiveUsers      int64  `bson:"active_users" json:"active_users"`
}

// Add accumulates another breakdown entry's counters into b.
func (b *Breakdown) Add(other Breakdown) {
	b.SuggestionsCount += other.SuggestionsCount
	b.AcceptancesCount += other.AcceptancesCount
	b.LinesSuggested += other.LinesSuggested
	b.LinesAccepted += other.LinesAccepted
	b.ActiveUsers += other.ActiveUsers
}

// UsageRecord holds one calendar day of aggregate usage for a scope. Day is the
// unique key within a scope; the time_frame fields are derived on read and never
// trusted from storage.
type UsageRecord struct {
	Day                  string      `bson:"day" json:"day"`
	TotalSuggestions     int64       `bson:"total_suggestions_count" json:"total_suggestions_count"`
	TotalAcceptances     int64       `bson:"total_acceptances_count" json:"total_acceptances_count"`
	TotalLinesSuggested  int64       `bson:"total_lines_suggested" json:"total_lines_suggested"`
	TotalLinesAccepted   int64       `bson:"total_lines_accepted" json:"total_lines_accepted"`
	TotalActiveUsers     int64       `bson:"total_active_users" json:"total_active_users"`
	TotalChatAcceptances int64       `bson:"total_chat_acceptances" json:"total_chat_acceptances"`
	TotalChatTurns       int64       `bson:"total_chat_turns" json:"total_chat_turns"`
	TotalActiveChatUsers int64       `bson:"total_active_chat_users" json:"total_active_chat_users"`
	Breakdown            []Breakdown `bson:"breakdown" json:"breakdown"`

	Enterprise   string `bson:"enterprise,omitempty" json:"enterprise,omitempty"`
	Organization string `bson:"organization,omitempty" json:"organization,omitempty"`
	IngestedAt   string `bson:"ingested_at,omitempty" json:"ingested_at,omitempty"`

	TimeFrameWeek    string `bson:"-" json:"time_frame_week,omitempty"`
	TimeFrameMonth   string `bson:"-" json:"time_frame_month,omitempty"`
	TimeFrameDisplay string `bson:"-" json:"time_frame_display,omitempty"`
}

// AddTotals accumulates another record's aggregate counters into r.
func (r *UsageRecord) AddTotals(other UsageRecord) {
	r.TotalSuggestions += other.TotalSuggestions
	r.TotalAcceptances += other.TotalAcceptances
	r.TotalLinesSuggested += other.TotalLinesSuggested
	r.TotalLinesAccepted += other.TotalLinesAccepted
	r.TotalActiveUsers += other.TotalActiveUsers
	r.TotalChatAcceptances += other.TotalChatAcceptances
	r.TotalChatTurns += other.TotalChatTurns
	r.TotalActiveChatUsers += other.TotalActiveChatUsers
}

// Clone returns a deep copy so filter recomputation never mutates the source set.
func (r UsageRecord) Clone() UsageRecord {
	out := r
	out.Breakdown = make([]Breakdown, len(r.Breakdown))
	copy(out.Breakdown, r.Breakdown)
	return out
}
