package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"opsdash/models"
)

var now = time.Date(2025, 11, 20, 15, 4, 0, 0, time.UTC)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2025-11-10", "2025-11-10"},
		{"", "2025-11-20"},
		{"0000-00-00", "2025-11-20"},
		{"0000-00-00 00:00:00", "2025-11-20"},
		{"not a date", "2025-11-20"},
		{"2025-12-05T09:00:00Z", "2025-12-05"},
		{"2025-12-05 09:00:00", "2025-12-05"},
		{" 2025-12-05 ", "2025-12-05"},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.raw, now); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	for _, raw := range []string{"2025-11-10", "", "0000-00-00", "garbage", "2025-12-05T09:00:00Z"} {
		once := NormalizeDate(raw, now)
		if twice := NormalizeDate(once, now); twice != once {
			t.Errorf("NormalizeDate not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func overflowDay() []models.Meeting {
	return []models.Meeting{
		{ID: "1", Title: "Standup", Date: "2025-12-05", StartTime: "09:00", EndTime: "09:15"},
		{ID: "2", Title: "Retro", Date: "2025-12-05", StartTime: "15:00", EndTime: "15:30"},
		{ID: "3", Title: "Planning", Date: "2025-12-08", StartTime: "10:00", EndTime: "11:00"},
	}
}

func TestOverflowCell(t *testing.T) {
	groups := GroupByDate(overflowDay(), now)

	cell := Cell("2025-12-05", true, groups)
	if cell.Label != "Standup 09:00-09:15" {
		t.Errorf("Label = %q", cell.Label)
	}
	if cell.Badge != "+1 more" {
		t.Errorf("Badge = %q", cell.Badge)
	}

	list, ok := OpenCell(groups, "2025-12-05")
	if !ok || len(list) != 2 || list[0].Title != "Standup" || list[1].Title != "Retro" {
		t.Fatalf("OpenCell = %+v, %v", list, ok)
	}
}

func TestOverflowGating(t *testing.T) {
	groups := GroupByDate(overflowDay(), now)

	single := Cell("2025-12-08", true, groups)
	if single.Badge != "" || single.Label != "Planning 10:00-11:00" {
		t.Errorf("single cell = %+v", single)
	}
	if _, ok := OpenCell(groups, "2025-12-08"); ok {
		t.Error("single-meeting day opened the overflow list")
	}
	if _, ok := OpenCell(groups, "2025-12-09"); ok {
		t.Error("empty day opened the overflow list")
	}

	for n := 0; n < 5; n++ {
		badge := OverflowBadge(n)
		if (badge != "") != (n > 1) {
			t.Errorf("OverflowBadge(%d) = %q", n, badge)
		}
	}
}

func TestGroupByDateKeepsEveryMeeting(t *testing.T) {
	meetings := []models.Meeting{
		{ID: "1", Date: ""},
		{ID: "2", Date: "0000-00-00"},
		{ID: "3", Date: "2025-12-01"},
	}
	groups := GroupByDate(meetings, now)
	if len(groups["2025-11-20"]) != 2 || len(groups["2025-12-01"]) != 1 {
		t.Fatalf("groups = %+v", groups)
	}
}

func TestBuildMonth(t *testing.T) {
	grid := BuildMonth(2025, time.December, GroupByDate(overflowDay(), now))
	if grid.Year != 2025 || grid.Month != 12 {
		t.Fatalf("grid = %d-%d", grid.Year, grid.Month)
	}
	// December 2025 starts on a Monday and ends on a Wednesday.
	if len(grid.Weeks) != 5 {
		t.Fatalf("weeks = %d, want 5", len(grid.Weeks))
	}
	if first := grid.Weeks[0][0]; first.Date != "2025-12-01" || !first.InMonth {
		t.Errorf("first cell = %+v", first)
	}
	if tail := grid.Weeks[4][6]; tail.Date != "2026-01-04" || tail.InMonth {
		t.Errorf("last cell = %+v", tail)
	}
	friday := grid.Weeks[0][4]
	if friday.Date != "2025-12-05" || friday.Count != 2 || friday.Badge != "+1 more" {
		t.Errorf("2025-12-05 cell = %+v", friday)
	}
}

func TestParseDay(t *testing.T) {
	if d, err := ParseDay("2025-12-05"); err != nil || d != "2025-12-05" {
		t.Fatalf("ParseDay = %q, %v", d, err)
	}
	if _, err := ParseDay("05/12/2025"); err == nil {
		t.Fatal("ParseDay accepted a non-ISO date")
	}
}

func TestExportICS(t *testing.T) {
	meetings := overflowDay()
	meetings[0].Status = models.StatusConfirmed
	meetings[1].Status = models.StatusCanceled
	meetings = append(meetings, models.Meeting{ID: "4", Title: "Offsite", Date: "2025-12-10"})

	var buf bytes.Buffer
	if err := ExportICS(&buf, meetings, now); err != nil {
		t.Fatalf("ExportICS: %v", err)
	}
	out := buf.String()
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 4 {
		t.Fatalf("events = %d, want 4", n)
	}
	for _, want := range []string{"SUMMARY:Standup", "STATUS:CONFIRMED", "STATUS:CANCELLED", "UID:meeting-1@opsdash", "DTSTART;VALUE=DATE:20251210"} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q", want)
		}
	}
}
