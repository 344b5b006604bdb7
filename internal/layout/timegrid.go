package layout

import (
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/overlap"
)

// PrepareTimeGrid buckets items by day for the day and week-with-time views.
// Occurrences carry minute coordinates clipped to the day and the
// side-by-side placement computed by the overlap resolver. Items touching
// more than one day are also listed in Header.
func PrepareTimeGrid(items []item.Item, opts Options) (Layout, error) {
	all, opts, skipped, warnings, err := collect(items, opts)
	if err != nil {
		return Layout{}, err
	}

	l := Layout{
		View:     Day,
		Axis:     AxisRow,
		Buckets:  resolveDays(all, opts),
		Header:   headerItems(all),
		Skipped:  skipped,
		Warnings: warnings,
	}
	return l, nil
}

// PrepareTimeGridReverse is PrepareTimeGrid with time running along the
// column axis. Occurrences are additionally grouped by the hour they start
// in within each day.
func PrepareTimeGridReverse(items []item.Item, opts Options) (Layout, error) {
	all, opts, skipped, warnings, err := collect(items, opts)
	if err != nil {
		return Layout{}, err
	}

	days := resolveDays(all, opts)
	hours := make(BucketMap)
	for key, bucket := range days {
		day, _, err := dateutil.ParseKey(key, opts.Location)
		if err != nil {
			continue
		}
		for _, occ := range bucket {
			hk := dateutil.HourKey(day, occ.Hour)
			hours[hk] = append(hours[hk], occ)
		}
	}

	return Layout{
		View:     DayReverse,
		Axis:     AxisColumn,
		Buckets:  days,
		Hours:    hours,
		Header:   headerItems(all),
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}

// resolveDays builds the per-day buckets with minute coordinates and runs the
// overlap resolver on each of them.
func resolveDays(all []parsed, opts Options) BucketMap {
	pending := make(BucketMap)
	for _, p := range all {
		for _, day := range p.days() {
			occ := p.occurrence()
			occ.IsStart = dateutil.SameDay(day, p.iv.Start)
			occ.StartMinute, occ.EndMinute = minuteRange(p.iv, day, opts.MinDuration)
			occ.Hour = occ.StartMinute / 60

			key := dateutil.DayKey(day)
			pending[key] = append(pending[key], occ)
		}
	}

	out := make(BucketMap, len(pending))
	for key, bucket := range pending {
		entries := make([]overlap.Entry, len(bucket))
		for i, occ := range bucket {
			entries[i] = overlap.Entry{Index: i, Start: occ.StartMinute, End: occ.EndMinute}
		}

		slots := overlap.Resolve(entries, opts.MinDuration)
		resolved := make([]PositionedItem, len(slots))
		for i, s := range slots {
			occ := bucket[s.Index]
			occ.Column = s.Column
			occ.Columns = s.Columns
			occ.Width = s.Width
			occ.Left = s.Left
			resolved[i] = occ
		}
		out[key] = resolved
	}
	return out
}

// minuteRange returns the interval's extent on day in minutes since
// midnight, clipped to [0, 1440]. Point events get minDuration and all-day
// intervals cover every day they touch.
func minuteRange(iv item.Interval, day time.Time, minDuration int) (start, end int) {
	if iv.AllDay {
		return 0, dateutil.MinutesPerDay
	}
	if dateutil.SameDay(iv.Start, day) {
		start = dateutil.MinuteOfDay(iv.Start)
	}

	switch {
	case iv.Point:
		end = start + minDuration
	case dateutil.SameDay(iv.End, day):
		end = dateutil.MinuteOfDay(iv.End)
	default:
		end = dateutil.MinutesPerDay
	}

	end = min(end, dateutil.MinutesPerDay)
	if end <= start {
		// A ranged item shorter than a minute, or ending at midnight of
		// this day, still gets one row.
		end = min(start+1, dateutil.MinutesPerDay)
	}
	return start, end
}

func headerItems(all []parsed) []PositionedItem {
	var out []PositionedItem
	for _, p := range all {
		if !p.iv.MultiDay() {
			continue
		}
		occ := p.occurrence()
		occ.IsStart = true
		occ.Span = p.iv.Days()
		out = append(out, occ)
	}
	return out
}
