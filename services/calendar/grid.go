// Package calendar buckets meetings by day and lays them out as a month grid.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"opsdash/models"
)

const dateLayout = "2006-01-02"

// zeroDate is the sentinel the backend uses for "no date".
const zeroDate = "0000-00-00"

var acceptedLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

// NormalizeDate returns the canonical "YYYY-MM-DD" day of raw. Empty, zero
// and unparseable dates fall back to the day of now, so every meeting lands
// on some cell.
func NormalizeDate(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, zeroDate) {
		return now.Format(dateLayout)
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	return now.Format(dateLayout)
}

// GroupByDate buckets meetings by normalized day, keeping input order inside
// each bucket.
func GroupByDate(meetings []models.Meeting, now time.Time) map[string][]models.Meeting {
	groups := make(map[string][]models.Meeting)
	for _, m := range meetings {
		key := NormalizeDate(m.Date, now)
		groups[key] = append(groups[key], m)
	}
	return groups
}

// CellLabel renders the inline text of a meeting, e.g. "Standup 09:00-09:15".
func CellLabel(m models.Meeting) string {
	return strings.TrimSpace(m.Title + " " + m.TimeRange())
}

// OverflowBadge returns "+N more" for buckets holding more than one meeting,
// and "" otherwise.
func OverflowBadge(count int) string {
	if count <= 1 {
		return ""
	}
	return fmt.Sprintf("+%d more", count-1)
}

// Cell builds the grid cell for one day.
func Cell(date string, inMonth bool, groups map[string][]models.Meeting) models.CalendarCell {
	bucket := groups[date]
	cell := models.CalendarCell{
		Date:     date,
		InMonth:  inMonth,
		Count:    len(bucket),
		Badge:    OverflowBadge(len(bucket)),
		Meetings: bucket,
	}
	if len(bucket) > 0 {
		cell.Label = CellLabel(bucket[0])
	}
	return cell
}

// OpenCell returns the meetings of an overflowing day. Days holding zero or
// one meeting never open the overflow list.
func OpenCell(groups map[string][]models.Meeting, date string) ([]models.Meeting, bool) {
	bucket := groups[date]
	if len(bucket) <= 1 {
		return nil, false
	}
	out := make([]models.Meeting, len(bucket))
	copy(out, bucket)
	return out, true
}

// BuildMonth lays out a Monday-first grid covering the whole month. Leading
// and trailing days from neighbouring months are included with InMonth false.
func BuildMonth(year int, month time.Month, groups map[string][]models.Meeting) models.CalendarMonth {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	day := first.AddDate(0, 0, -offset)
	last := first.AddDate(0, 1, -1)

	grid := models.CalendarMonth{Year: first.Year(), Month: int(first.Month())}
	for !day.After(last) {
		week := make([]models.CalendarCell, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, Cell(day.Format(dateLayout), day.Month() == first.Month(), groups))
			day = day.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

// ParseDay validates a "YYYY-MM-DD" path value.
func ParseDay(raw string) (string, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return t.Format(dateLayout), nil
}
