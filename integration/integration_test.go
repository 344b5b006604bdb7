package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/db"
	"github.com/javiermolinar/calgrid/internal/header"
	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
	"github.com/javiermolinar/calgrid/internal/recur"
	"github.com/javiermolinar/calgrid/internal/source"
)

var fields = item.FieldPair{Start: "start", End: "end"}

// openRepo creates a fresh store for each test with automatic cleanup.
func openRepo(t *testing.T, loc *time.Location) *db.SQLite {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"), loc)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// importItems stores items or fails the test.
func importItems(t *testing.T, repo *db.SQLite, items []item.Item) {
	t.Helper()
	res, err := repo.ImportItems(context.Background(), items, fields, "")
	if err != nil {
		t.Fatalf("failed to import items: %v", err)
	}
	if len(res.Rejected) > 0 {
		t.Fatalf("unexpected rejections: %+v", res.Rejected)
	}
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func opts() layout.Options {
	return layout.Options{Fields: fields, WeekStartsOn: time.Monday, Location: time.UTC}
}

func TestStoreToMonthGrid(t *testing.T) {
	repo := openRepo(t, time.UTC)
	ctx := context.Background()

	importItems(t, repo, []item.Item{
		{"id": "trip", "title": "Trip", "start": "2024-01-10T08:00:00Z", "end": "2024-01-16T20:00:00Z"},
		{"id": "a", "title": "A", "start": "2024-01-12T09:00:00Z", "end": "2024-01-12T10:00:00Z"},
		{"id": "b", "title": "B", "start": "2024-01-12T11:00:00Z", "end": "2024-01-12T12:00:00Z"},
		{"id": "old", "title": "Old", "start": "2023-11-02T09:00:00Z", "end": "2023-11-02T10:00:00Z"},
	})

	anchor := day(1, 10)
	start, end := dateutil.MonthGridRange(anchor, time.Monday)
	items, err := repo.ListItems(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items in the month grid, want 3", len(items))
	}

	l, err := layout.Prepare(layout.Month, items, opts())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	// Jan 10 is a Wednesday: the trip spans Wed-Sun, then starts a new row.
	if got := l.Buckets["2024-01-10"]; len(got) != 1 || !got[0].IsStart || got[0].Span != 5 {
		t.Errorf("Jan 10 = %+v, want trip start with span 5", got)
	}
	if got := l.Buckets["2024-01-15"]; len(got) != 1 || got[0].IsStart || got[0].Span != 2 {
		t.Errorf("Jan 15 = %+v, want trip continuation with span 2", got)
	}

	pol := policy.Policy{View: layout.Month, Modes: policy.DisplayModes{}, Anchor: anchor, WeekStartsOn: time.Monday}

	// Jan 12 holds the trip continuation plus A and B. The trip is drawn by
	// Jan 10, so only A and B are visible there.
	visible := pol.Visible("2024-01-12", l.Buckets)
	if len(visible) != 2 || visible[0].Item.ID != "a" || visible[1].Item.ID != "b" {
		t.Errorf("Jan 12 visible = %+v, want a, b", visible)
	}
	// A new row starts on Monday Jan 15, so the trip is drawn again.
	if visible := pol.Visible("2024-01-15", l.Buckets); len(visible) != 1 || visible[0].Span != 2 {
		t.Errorf("Jan 15 visible = %+v, want the trip with span 2", visible)
	}

	// Collapsing Jan 12 keeps only its last item.
	pol.Modes = policy.DisplayModes{layout.Month: {Mode: policy.Collapse}}
	visible = pol.Visible("2024-01-12", l.Buckets)
	if len(visible) != 1 || visible[0].Item.ID != "b" || visible[0].Span != 1 {
		t.Errorf("collapsed Jan 12 visible = %+v, want b only", visible)
	}
	// With Jan 10 collapsed the trip covers only that cell, so Jan 11 draws it.
	if visible := pol.Visible("2024-01-11", l.Buckets); len(visible) != 1 || visible[0].Item.IsStart {
		t.Errorf("collapsed Jan 11 visible = %+v, want the trip continuation", visible)
	}
}

func TestStoreToWeekTime(t *testing.T) {
	repo := openRepo(t, time.UTC)
	ctx := context.Background()

	importItems(t, repo, []item.Item{
		{"id": "standup", "start": "2024-01-09T09:00:00Z", "end": "2024-01-09T09:30:00Z"},
		{"id": "review", "start": "2024-01-09T09:15:00Z", "end": "2024-01-09T10:00:00Z"},
		{"id": "launch", "start": "2024-01-09T12:00:00Z"},
		{"id": "offsite", "start": "2024-01-06T09:00:00Z", "end": "2024-01-09T08:00:00Z"},
	})

	anchor := day(1, 9)
	ws, we := dateutil.WeekRange(anchor, time.Monday)
	items, err := repo.ListItems(ctx, ws, we.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}

	l, err := layout.Prepare(layout.WeekTime, items, opts())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	byID := make(map[string]layout.PositionedItem)
	for _, p := range l.Buckets["2024-01-09"] {
		byID[p.ID] = p
	}
	if byID["standup"].Columns != 2 || byID["review"].Columns != 2 {
		t.Errorf("overlapping items should share two columns: %+v, %+v", byID["standup"], byID["review"])
	}
	if byID["standup"].Column == byID["review"].Column {
		t.Errorf("overlapping items got the same column %d", byID["standup"].Column)
	}
	if p := byID["launch"]; !p.Point || p.StartMinute != 720 || p.EndMinute != 750 {
		t.Errorf("launch = %+v, want a point event 720-750", p)
	}

	entries := header.ForWeek(anchor, time.Monday, l.Header)
	if len(entries) != 1 {
		t.Fatalf("got %d header entries, want 1", len(entries))
	}
	if s := entries[0].Span; s.GridColumn != "1 / 3" || !s.IsFromPrevious || s.IsFromNext {
		t.Errorf("offsite span = %+v, want 1 / 3 from the previous week", s)
	}
}

func TestRecurringFileToWeek(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//calgrid//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:standup\r\n" +
		"SUMMARY:Standup\r\n" +
		"DTSTART:20240101T090000Z\r\n" +
		"DTEND:20240101T091500Z\r\n" +
		"RRULE:FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	path := filepath.Join(t.TempDir(), "work.ics")
	if err := os.WriteFile(path, []byte(ics), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := source.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	ws, we := dateutil.WeekRange(day(1, 17), time.Monday)
	res, err := recur.Expand(items, fields, recur.Options{
		RangeStart: ws,
		RangeEnd:   we.AddDate(0, 0, 1).Add(-time.Nanosecond),
		Location:   time.UTC,
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(res.Items) != 5 {
		t.Fatalf("got %d occurrences, want 5 weekdays", len(res.Items))
	}

	l, err := layout.Prepare(layout.WeekInPlace, res.Items, opts())
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	for d := 15; d <= 19; d++ {
		key := dateutil.DayKey(day(1, d))
		if got := len(l.Buckets[key]); got != 1 {
			t.Errorf("%s has %d items, want 1", key, got)
		}
	}
	if len(l.Buckets["2024-01-20"]) != 0 {
		t.Errorf("Saturday should be empty")
	}
}
