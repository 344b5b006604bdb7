package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

var testOpts = layout.Options{
	Fields:       item.FieldPair{Start: "start", End: "end"},
	WeekStartsOn: time.Monday,
	Location:     time.UTC,
}

var testItems = []item.Item{
	{"id": "offsite", "title": "Offsite", "start": "2024-02-05T10:00:00Z", "end": "2024-02-07T12:00:00Z"},
	{"id": "first", "title": "First", "start": "2024-02-14T09:00:00Z", "end": "2024-02-14T10:00:00Z"},
	{"id": "second", "title": "Second", "start": "2024-02-14T11:00:00Z", "end": "2024-02-14T12:00:00Z"},
}

func renderWeek(t *testing.T, anchor time.Time, modes policy.DisplayModes, cursor string) string {
	t.Helper()
	l, err := layout.Prepare(layout.Week, testItems, testOpts)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return RenderGrid(GridState{
		Dates:   PeriodDates(layout.Week, anchor, time.Monday, anchor),
		Buckets: l.Buckets,
		Policy: policy.Policy{
			View:         layout.Week,
			Modes:        modes,
			Anchor:       anchor,
			WeekStartsOn: time.Monday,
		},
		CellWidth: CellWidth(120),
		Cursor:    cursor,
	})
}

func TestRenderGrid_Week(t *testing.T) {
	anchor := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	out := renderWeek(t, anchor, policy.DisplayModes{}, "")

	for _, want := range []string{"Mon", "Sun", "Offsite →3", "11"} {
		if !strings.Contains(out, want) {
			t.Errorf("grid missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "◀Offsite") {
		t.Errorf("covered continuation drawn:\n%s", out)
	}
	if strings.Contains(out, "First") {
		t.Errorf("item from another week drawn:\n%s", out)
	}
}

func TestRenderGrid_Collapsed(t *testing.T) {
	anchor := time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC)
	modes := policy.DisplayModes{layout.Week: {Mode: policy.Collapse}}

	out := renderWeek(t, anchor, modes, "")
	if strings.Contains(out, "First") || !strings.Contains(out, "Second") || !strings.Contains(out, "+1") {
		t.Errorf("collapsed cell should draw its last item and a count:\n%s", out)
	}

	out = renderWeek(t, anchor, modes.Toggle(layout.Week, "2024-02-14"), "2024-02-14")
	if !strings.Contains(out, "First") || !strings.Contains(out, "Second") || strings.Contains(out, "+1") {
		t.Errorf("toggled cell should draw every item:\n%s", out)
	}
}

func TestPeriodTitle(t *testing.T) {
	anchor := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	if got := PeriodTitle(layout.Month, anchor, time.Monday); got != "February 2024" {
		t.Errorf("month title = %q", got)
	}
	if got := PeriodTitle(layout.Week, anchor, time.Sunday); got != "WEEK: Sun Feb 11 - Sat Feb 17, 2024" {
		t.Errorf("week title = %q", got)
	}
}

func TestPeriodDates(t *testing.T) {
	anchor := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	month := PeriodDates(layout.Month, anchor, time.Monday, anchor)
	if len(month) != 35 || month[0].Date != "2024-01-29" {
		t.Errorf("month dates = %d starting %s, want 35 starting 2024-01-29", len(month), month[0].Date)
	}
	week := PeriodDates(layout.Week, anchor, time.Monday, anchor)
	if len(week) != 7 || week[0].Date != "2024-02-12" || !week[2].IsCurrentDay {
		t.Errorf("week dates = %+v", week)
	}
}

func TestWeekdayHeaders(t *testing.T) {
	got := strings.Join(weekdayHeaders(time.Sunday), " ")
	if got != "Sun Mon Tue Wed Thu Fri Sat" {
		t.Errorf("weekdayHeaders(Sunday) = %q", got)
	}
	got = strings.Join(weekdayHeaders(time.Monday), " ")
	if got != "Mon Tue Wed Thu Fri Sat Sun" {
		t.Errorf("weekdayHeaders(Monday) = %q", got)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		p    layout.PositionedItem
		want string
	}{
		{"title", layout.PositionedItem{Item: item.Item{"title": "Standup"}, ID: "a"}, "Standup"},
		{"summary", layout.PositionedItem{Item: item.Item{"summary": "Review"}}, "Review"},
		{"id", layout.PositionedItem{Item: item.Item{}, ID: "a"}, "a"},
		{"index", layout.PositionedItem{Item: item.Item{}, Index: 4}, "#4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.p); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Standup", 10, "Standup"},
		{"Standup", 7, "Standup"},
		{"Standup", 5, "Stan…"},
		{"Standup", 1, "…"},
		{"Standup", 0, ""},
		{"Réunion", 4, "Réu…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestCellWidth(t *testing.T) {
	if got := CellWidth(120); got != 14 {
		t.Errorf("CellWidth(120) = %d, want 14", got)
	}
	if got := CellWidth(20); got != 6 {
		t.Errorf("CellWidth(20) = %d, want the minimum 6", got)
	}
}
