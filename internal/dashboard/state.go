// Package dashboard holds the filter and time-frame state behind the usage
// views. It is an explicit state container with pure transition methods and an
// observer hook, independent of any rendering framework, and is meant to be
// driven single-threaded by a view layer.
package dashboard

import (
	"github.com/santobu/copilot-metrics-dashboard/internal/models"
	"github.com/santobu/copilot-metrics-dashboard/internal/timeframe"
)

// TimeFrame selects the bucketing granularity of the filtered view.
type TimeFrame string

const (
	TimeFrameDaily   TimeFrame = "daily"
	TimeFrameWeekly  TimeFrame = "weekly"
	TimeFrameMonthly TimeFrame = "monthly"
)

// FilterItem is one selectable facet value with its toggle state.
type FilterItem struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// State drives the dashboard: it keeps the unfiltered record set it was
// initialized from and re-derives the visible filtered view on every facet
// toggle or time-frame change. Mutations recompute eagerly.
type State struct {
	source      []models.UsageRecord
	filtered    []models.UsageRecord
	languages   []FilterItem
	editors     []FilterItem
	timeFrame   TimeFrame
	seatSummary models.SeatManagementSummary

	subscribers map[int]func()
	nextSubID   int
}

func NewState() *State {
	return &State{
		timeFrame:   TimeFrameDaily,
		subscribers: map[int]func(){},
	}
}

// Init seeds the state from a fresh record set and seat summary, clearing all
// facet selections and resetting the time frame to daily. Facet lists keep
// first-seen order across the records' breakdown entries.
func (s *State) Init(records []models.UsageRecord, seatSummary models.SeatManagementSummary) {
	s.source = make([]models.UsageRecord, len(records))
	for i, rec := range records {
		s.source[i] = rec.Clone()
	}
	// Labels are derived locally rather than trusted from the caller.
	s.source = timeframe.Apply(s.source)

	s.languages = extractFacet(s.source, func(b models.Breakdown) string { return b.Language })
	s.editors = extractFacet(s.source, func(b models.Breakdown) string { return b.Editor })
	s.timeFrame = TimeFrameDaily
	s.seatSummary = seatSummary
	s.recompute()
}

// ToggleLanguage flips the named language facet. A name absent from the
// facet list becomes a selected facet that matches nothing, yielding an empty
// view rather than an error.
func (s *State) ToggleLanguage(name string) {
	s.languages = toggle(s.languages, name)
	s.recompute()
}

// ToggleEditor flips the named editor facet, with the same handling of
// unknown names as ToggleLanguage.
func (s *State) ToggleEditor(name string) {
	s.editors = toggle(s.editors, name)
	s.recompute()
}

// SetTimeFrame switches granularity and re-buckets from the original
// unfiltered record set, so filtering loss never compounds.
func (s *State) SetTimeFrame(tf TimeFrame) {
	switch tf {
	case TimeFrameDaily, TimeFrameWeekly, TimeFrameMonthly:
	default:
		return
	}
	s.timeFrame = tf
	s.recompute()
}

// ResetFilters clears every facet selection and keeps the time frame.
func (s *State) ResetFilters() {
	for i := range s.languages {
		s.languages[i].Selected = false
	}
	for i := range s.editors {
		s.editors[i].Selected = false
	}
	s.recompute()
}

// FilteredData returns the current visible view.
func (s *State) FilteredData() []models.UsageRecord { return s.filtered }

// Languages returns the language facets in first-seen order.
func (s *State) Languages() []FilterItem { return s.languages }

// Editors returns the editor facets in first-seen order.
func (s *State) Editors() []FilterItem { return s.editors }

func (s *State) TimeFrame() TimeFrame { return s.timeFrame }

func (s *State) SeatSummary() models.SeatManagementSummary { return s.seatSummary }

// Subscribe registers a callback invoked after every recompute. The returned
// function unsubscribes.
func (s *State) Subscribe(fn func()) func() {
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

// recompute re-derives the filtered view: bucket the original records by the
// active granularity, narrow each bucket's breakdown by the selected facets,
// then drop buckets left empty.
func (s *State) recompute() {
	buckets := s.bucketize()

	selectedLanguages := selectedValues(s.languages)
	if len(selectedLanguages) > 0 {
		for i := range buckets {
			buckets[i].Breakdown = filterBreakdown(buckets[i].Breakdown, func(b models.Breakdown) bool {
				return selectedLanguages[b.Language]
			})
		}
	}

	selectedEditors := selectedValues(s.editors)
	if len(selectedEditors) > 0 {
		for i := range buckets {
			buckets[i].Breakdown = filterBreakdown(buckets[i].Breakdown, func(b models.Breakdown) bool {
				return selectedEditors[b.Editor]
			})
		}
	}

	filtered := buckets[:0:0]
	for _, bucket := range buckets {
		if len(bucket.Breakdown) > 0 {
			filtered = append(filtered, bucket)
		}
	}
	s.filtered = filtered
	s.notify()
}

// bucketize deep-copies the source set and groups it by the active
// granularity. Daily passes records through one bucket each; weekly and
// monthly merge records sharing a label, summing totals and merging breakdown
// entries keyed by (language, editor).
func (s *State) bucketize() []models.UsageRecord {
	items := make([]models.UsageRecord, len(s.source))
	for i, rec := range s.source {
		items[i] = rec.Clone()
	}

	if s.timeFrame == TimeFrameDaily {
		for i := range items {
			items[i].TimeFrameDisplay = timeframe.FormatDay(items[i].Day)
		}
		return items
	}

	var order []string
	grouped := map[string]*models.UsageRecord{}
	for _, item := range items {
		label := item.TimeFrameWeek
		if s.timeFrame == TimeFrameMonthly {
			label = item.TimeFrameMonth
		}
		if label == "" {
			continue
		}

		bucket, ok := grouped[label]
		if !ok {
			merged := item
			merged.TimeFrameDisplay = label
			grouped[label] = &merged
			order = append(order, label)
			continue
		}
		bucket.AddTotals(item)
		bucket.Breakdown = mergeBreakdown(bucket.Breakdown, item.Breakdown)
	}

	result := make([]models.UsageRecord, 0, len(order))
	for _, label := range order {
		result = append(result, *grouped[label])
	}
	return result
}

func (s *State) notify() {
	for _, fn := range s.subscribers {
		fn()
	}
}

// mergeBreakdown folds extra entries into dst: entries sharing a (language,
// editor) pair are summed field by field, unmatched entries append in order.
func mergeBreakdown(dst, extra []models.Breakdown) []models.Breakdown {
	index := make(map[[2]string]int, len(dst))
	for i, b := range dst {
		index[[2]string{b.Language, b.Editor}] = i
	}
	for _, b := range extra {
		key := [2]string{b.Language, b.Editor}
		if i, ok := index[key]; ok {
			dst[i].Add(b)
			continue
		}
		index[key] = len(dst)
		dst = append(dst, b)
	}
	return dst
}

func filterBreakdown(entries []models.Breakdown, keep func(models.Breakdown) bool) []models.Breakdown {
	filtered := entries[:0:0]
	for _, b := range entries {
		if keep(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func extractFacet(records []models.UsageRecord, value func(models.Breakdown) string) []FilterItem {
	seen := map[string]bool{}
	var items []FilterItem
	for _, rec := range records {
		for _, b := range rec.Breakdown {
			v := value(b)
			if seen[v] {
				continue
			}
			seen[v] = true
			items = append(items, FilterItem{Value: v})
		}
	}
	return items
}

func toggle(items []FilterItem, name string) []FilterItem {
	for i := range items {
		if items[i].Value == name {
			items[i].Selected = !items[i].Selected
			return items
		}
	}
	return append(items, FilterItem{Value: name, Selected: true})
}

func selectedValues(items []FilterItem) map[string]bool {
	selected := map[string]bool{}
	for _, item := range items {
		if item.Selected {
			selected[item.Value] = true
		}
	}
	return selected
}
