// Package timeframe derives calendar-aligned display labels for daily usage
// records. Labels are recomputed on every read and never trusted from storage.
package timeframe

import (
	"errors"
	"sort"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

var ErrInvalidDay = errors.New("invalid day")

const (
	dayLayout   = "2006-01-02"
	weekLayout  = "Jan 02"
	monthLayout = "Jan 06"
)

// Labels holds the week and month bucket labels derived from a record's day.
type Labels struct {
	Week  string
	Month string
}

// ForDay derives labels for a YYYY-MM-DD day. The week label names the Monday
// starting the day's week ("Jan 02"); the month label names the day's calendar
// month ("Jan 24"). Any two days sharing a week or month share the label.
func ForDay(day string) (Labels, error) {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return Labels{}, ErrInvalidDay
	}
	return Labels{
		Week:  startOfWeek(t).Format(weekLayout),
		Month: t.Format(monthLayout),
	}, nil
}

// FormatDay renders a YYYY-MM-DD day in the short display form used for daily
// buckets. Unparseable values pass through unchanged.
func FormatDay(day string) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return day
	}
	return t.Format(weekLayout)
}

// Apply sorts records ascending by day and stamps derived labels on each.
// Records whose day fails to parse keep empty labels but stay in the result.
// The display label defaults to the week label until a granularity is chosen.
func Apply(records []models.UsageRecord) []models.UsageRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Day < records[j].Day
	})
	for i := range records {
		labels, err := ForDay(records[i].Day)
		if err != nil {
			continue
		}
		records[i].TimeFrameWeek = labels.Week
		records[i].TimeFrameMonth = labels.Month
		records[i].TimeFrameDisplay = labels.Week
	}
	return records
}

// startOfWeek returns the Monday beginning t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
