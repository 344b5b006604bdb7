package dateutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	dayKeyLayout  = "2006-01-02"
	hourKeyLayout = "2006-01-02T15:04"
)

// DateInfo describes one displayed calendar cell.
type DateInfo struct {
	Day            int
	Month          time.Month
	Year           int
	IsCurrentMonth bool
	IsCurrentDay   bool
	Date           string // canonical day key
}

// NewDateInfo builds the DateInfo for date, relative to the month of the
// displayed anchor and to now.
func NewDateInfo(date, anchor, now time.Time) DateInfo {
	return DateInfo{
		Day:            date.Day(),
		Month:          date.Month(),
		Year:           date.Year(),
		IsCurrentMonth: date.Month() == anchor.Month() && date.Year() == anchor.Year(),
		IsCurrentDay:   SameDay(date, now.In(date.Location())),
		Date:           DayKey(date),
	}
}

// WeekDates returns the DateInfo of every day in the week containing anchor.
func WeekDates(anchor time.Time, weekStartsOn time.Weekday, now time.Time) []DateInfo {
	start := StartOfWeek(anchor, weekStartsOn)
	days := make([]DateInfo, 0, 7)
	for i := range 7 {
		days = append(days, NewDateInfo(start.AddDate(0, 0, i), anchor, now))
	}
	return days
}

// MonthDates returns the DateInfo of every cell in the month grid of anchor.
func MonthDates(anchor time.Time, weekStartsOn time.Weekday, now time.Time) []DateInfo {
	start, end := MonthGridRange(anchor, weekStartsOn)
	n := DaysBetween(start, end) + 1
	days := make([]DateInfo, 0, n)
	for i := range n {
		days = append(days, NewDateInfo(start.AddDate(0, 0, i), anchor, now))
	}
	return days
}

// DayKey returns the canonical key of t's local calendar date.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// HourKey returns the key of the given hour on t's calendar date.
func HourKey(t time.Time, hour int) string {
	return fmt.Sprintf("%sT%02d:00", DayKey(t), hour)
}

// CellKey returns the key of a cell. A nil hour means a whole-day cell;
// hour 0 is a real hour.
func CellKey(info DateInfo, hour *int) string {
	if hour == nil {
		return info.Date
	}
	return fmt.Sprintf("%sT%02d:00", info.Date, *hour)
}

// ParseKey parses a day or hour key back into a time in loc. The returned
// hour is -1 for day keys.
func ParseKey(key string, loc *time.Location) (time.Time, int, error) {
	if loc == nil {
		loc = time.Local
	}
	if strings.Contains(key, "T") {
		t, err := time.ParseInLocation(hourKeyLayout, key, loc)
		if err != nil {
			return time.Time{}, -1, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		return t, t.Hour(), nil
	}
	t, err := time.ParseInLocation(dayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, -1, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return t, -1, nil
}

// timestampLayouts are tried in order; layouts without a zone are read in
// the caller's location.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.000", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{dayKeyLayout, false},
}

// ParseTimestamp converts a raw field value into a time in loc.
// Accepted values are ISO-8601 strings, time.Time, and Unix milliseconds.
func ParseTimestamp(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return val.In(loc), nil
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return val.In(loc), nil
	case string:
		return parseTimestampString(val, loc)
	case int:
		return time.UnixMilli(int64(val)).In(loc), nil
	case int64:
		return time.UnixMilli(val).In(loc), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return time.Time{}, ErrInvalidDate
		}
		return time.UnixMilli(int64(val)).In(loc), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
}

func parseTimestampString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, l := range timestampLayouts {
		if l.zoned {
			if t, err := time.Parse(l.layout, s); err == nil {
				return t.In(loc), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
