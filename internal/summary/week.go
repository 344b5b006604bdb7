// Package summary aggregates prepared week layouts into busy-time statistics.
package summary

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/layout"
)

var (
	// ErrNotTimeGrid is returned when the layout has no minute coordinates.
	ErrNotTimeGrid = errors.New("summary needs a time-grid layout")
	// ErrInvalidClock is returned for a time of day that is not HH:MM.
	ErrInvalidClock = errors.New("invalid time of day")
)

// DayStats holds the statistics of one day of the week.
type DayStats struct {
	Date        time.Time
	Items       int
	BusyMinutes int // minutes covered by at least one item
	PeakMinutes int // busy minutes inside the peak window
	FirstMinute int // start of the first item, -1 on a free day
	LastMinute  int // end of the last item, -1 on a free day
}

// Free reports whether nothing is scheduled on the day.
func (d DayStats) Free() bool {
	return d.Items == 0
}

// WeekStats holds aggregated statistics for the week.
type WeekStats struct {
	BusyMinutes int
	PeakMinutes int
	Items       int // distinct items shown during the week
	MultiDay    int
	Skipped     int
	DayStats    [7]DayStats
}

// PeakPercent returns the share of busy time that falls inside peak hours.
func (s WeekStats) PeakPercent() int {
	if s.BusyMinutes == 0 {
		return 0
	}
	return (s.PeakMinutes * 100) / s.BusyMinutes
}

// FreeDays returns the number of days without items.
func (s WeekStats) FreeDays() int {
	n := 0
	for _, ds := range s.DayStats {
		if ds.Free() {
			n++
		}
	}
	return n
}

// BusiestDay returns the column (0 = first day of the week) with the most
// busy minutes and the minutes. The column is -1 for an empty week.
func (s WeekStats) BusiestDay() (column int, busyMinutes int) {
	column = -1
	for i, ds := range s.DayStats {
		if ds.BusyMinutes > busyMinutes {
			busyMinutes = ds.BusyMinutes
			column = i
		}
	}
	return column, busyMinutes
}

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Start time.Time
	End   time.Time
	Stats WeekStats
}

// Options configures week summary statistics.
type Options struct {
	WeekStartsOn time.Weekday
	PeakStart    string // "HH:MM"; empty means no peak window
	PeakEnd      string
}

// HasPeakHours returns true if both ends of the peak window are set.
func (o Options) HasPeakHours() bool {
	return o.PeakStart != "" && o.PeakEnd != ""
}

// SummarizeWeek builds the statistics of the week containing anchor from a
// Day, WeekTime or DayReverse layout. Busy time is the union of the
// occurrences' minute ranges, so overlapping items are not counted twice.
func SummarizeWeek(anchor time.Time, l layout.Layout, opts Options) (*WeekSummary, error) {
	if !l.View.IsTimeGrid() {
		return nil, fmt.Errorf("%w: got %s", ErrNotTimeGrid, l.View)
	}

	peakStart, peakEnd := 0, 0
	if opts.HasPeakHours() {
		var err error
		if peakStart, err = ClockMinutes(opts.PeakStart); err != nil {
			return nil, err
		}
		if peakEnd, err = ClockMinutes(opts.PeakEnd); err != nil {
			return nil, err
		}
	}

	start, end := dateutil.WeekRange(anchor, opts.WeekStartsOn)
	var stats WeekStats
	seen := make(map[int]bool)
	for col := range 7 {
		day := start.AddDate(0, 0, col)
		bucket := l.Buckets[dateutil.DayKey(day)]

		ds := DayStats{Date: day, Items: len(bucket), FirstMinute: -1, LastMinute: -1}
		for _, span := range busySpans(bucket) {
			ds.BusyMinutes += span.end - span.start
			ds.PeakMinutes += overlapMinutes(span.start, span.end, peakStart, peakEnd)
			if ds.FirstMinute < 0 {
				ds.FirstMinute = span.start
			}
			ds.LastMinute = span.end
		}
		for _, p := range bucket {
			seen[p.Index] = true
		}

		stats.DayStats[col] = ds
		stats.BusyMinutes += ds.BusyMinutes
		stats.PeakMinutes += ds.PeakMinutes
	}
	stats.Items = len(seen)
	for _, p := range l.Header {
		if seen[p.Index] {
			stats.MultiDay++
		}
	}
	stats.Skipped = len(l.Skipped)

	return &WeekSummary{Start: start, End: end, Stats: stats}, nil
}

type span struct {
	start, end int
}

// busySpans merges the minute ranges of a bucket into disjoint spans.
func busySpans(bucket []layout.PositionedItem) []span {
	spans := make([]span, 0, len(bucket))
	for _, p := range bucket {
		spans = append(spans, span{p.StartMinute, p.EndMinute})
	}
	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })

	var out []span
	for _, s := range spans {
		if n := len(out); n > 0 && s.start <= out[n-1].end {
			out[n-1].end = max(out[n-1].end, s.end)
			continue
		}
		out = append(out, s)
	}
	return out
}

// ClockMinutes converts "HH:MM" to minutes since midnight. "24:00" is the
// end of the day.
func ClockMinutes(s string) (int, error) {
	if s == "24:00" {
		return dateutil.MinutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// overlapMinutes returns the overlap of [s1, e1) and [s2, e2) in minutes.
func overlapMinutes(s1, e1, s2, e2 int) int {
	return max(min(e1, e2)-max(s1, s2), 0)
}
