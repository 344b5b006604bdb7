// Package header computes how multi-day items are drawn in a week header row.
package header

import (
	"fmt"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/layout"
)

// Span is the visible segment of an item within one displayed week.
type Span struct {
	GridColumn     string `json:"gridColumn"` // "start / end" with an exclusive end line
	StartColumn    int    `json:"startColumn"`
	EndColumn      int    `json:"endColumn"` // inclusive, 1-based
	IsFromPrevious bool   `json:"isFromPrevious"`
	IsFromNext     bool   `json:"isFromNext"`
}

// Columns returns the number of columns the span covers.
func (s Span) Columns() int {
	return s.EndColumn - s.StartColumn + 1
}

// Compute intersects [itemStart, itemEnd] with the displayed week
// [weekStart, weekEnd] on calendar days. ok is false when the item is not
// visible that week. Column 1 is the week's weekStartsOn day.
func Compute(weekStart, weekEnd, itemStart, itemEnd time.Time, weekStartsOn time.Weekday) (Span, bool) {
	ws := dateutil.TruncateToDay(weekStart)
	we := dateutil.TruncateToDay(weekEnd)
	is := dateutil.TruncateToDay(itemStart)
	ie := dateutil.TruncateToDay(itemEnd)
	if ie.Before(is) {
		ie = is
	}

	if ie.Before(ws) || is.After(we) {
		return Span{}, false
	}

	first, last := is, ie
	if first.Before(ws) {
		first = ws
	}
	if last.After(we) {
		last = we
	}

	start := dateutil.ColumnOf(first, weekStartsOn)
	end := start + dateutil.DaysBetween(first, last)
	return Span{
		GridColumn:     fmt.Sprintf("%d / %d", start, end+1),
		StartColumn:    start,
		EndColumn:      end,
		IsFromPrevious: is.Before(ws),
		IsFromNext:     ie.After(we),
	}, true
}

// ComputeKeys is Compute with the week given as day keys.
func ComputeKeys(weekStartKey, weekEndKey string, itemStart, itemEnd time.Time, weekStartsOn time.Weekday, loc *time.Location) (Span, bool, error) {
	ws, _, err := dateutil.ParseKey(weekStartKey, loc)
	if err != nil {
		return Span{}, false, err
	}
	we := ws
	if weekEndKey != "" {
		if we, _, err = dateutil.ParseKey(weekEndKey, loc); err != nil {
			return Span{}, false, err
		}
	}
	span, ok := Compute(ws, we, itemStart.In(loc), itemEnd.In(loc), weekStartsOn)
	return span, ok, nil
}

// Entry pairs a header item with its span in the displayed week.
type Entry struct {
	Item layout.PositionedItem `json:"item"`
	Span Span                  `json:"span"`
}

// ForWeek returns the spans of every header item visible in the week that
// contains anchor, in header order. The item's end day is inclusive, as in
// Compute.
func ForWeek(anchor time.Time, weekStartsOn time.Weekday, headerItems []layout.PositionedItem) []Entry {
	ws, we := dateutil.WeekRange(anchor, weekStartsOn)
	var out []Entry
	for _, p := range headerItems {
		span, ok := Compute(ws, we, p.Start.In(ws.Location()), p.End.In(ws.Location()), weekStartsOn)
		if !ok {
			continue
		}
		out = append(out, Entry{Item: p, Span: span})
	}
	return out
}

