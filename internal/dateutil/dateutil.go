// Package dateutil provides calendar date math, key building and timestamp parsing.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDate       = errors.New("value is not a parseable timestamp")
	ErrInvalidKey        = errors.New("key is not a day or hour key")
)

// MinutesPerDay is the height of a time grid in minutes.
const MinutesPerDay = 24 * 60

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses a weekday name ("monday") into a time.Weekday.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayMap[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// ParseDate parses a date string in YYYY-MM-DD format in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseAnchor parses the date a calendar view is anchored to. It accepts:
//   - Empty string or "today": relativeTo
//   - "tomorrow", "yesterday"
//   - "next-week", "prev-week", "next-month", "prev-month"
//   - Weekday names: "monday" through "sunday" (next occurrence)
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//
// Unlike scheduling input, past dates are valid anchors.
func ParseAnchor(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next-week":
		return today.AddDate(0, 0, 7), nil
	case "prev-week":
		return today.AddDate(0, 0, -7), nil
	case "next-month":
		return today.AddDate(0, 1, 0), nil
	case "prev-month":
		return today.AddDate(0, -1, 0), nil
	}

	if targetDay, ok := weekdayMap[input]; ok {
		return nextWeekday(today, targetDay), nil
	}

	return ParseDate(input, relativeTo.Location())
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	daysUntil := int(target) - int(today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}

// TruncateToDay returns t with time set to midnight in t's location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the first day of the week containing t, where weeks
// begin on weekStartsOn.
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	t = TruncateToDay(t)
	diff := (int(t.Weekday()) - int(weekStartsOn) + 7) % 7
	return t.AddDate(0, 0, -diff)
}

// WeekRange returns the first and last day of the week containing t.
func WeekRange(t time.Time, weekStartsOn time.Weekday) (start, end time.Time) {
	start = StartOfWeek(t, weekStartsOn)
	return start, start.AddDate(0, 0, 6)
}

// MonthGridRange returns the first and last day of the full weeks covering
// the month of t, as drawn by a month grid.
func MonthGridRange(t time.Time, weekStartsOn time.Weekday) (start, end time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	start = StartOfWeek(first, weekStartsOn)
	end = StartOfWeek(last, weekStartsOn).AddDate(0, 0, 6)
	return start, end
}

// ColumnOf returns the 1-based grid column of t's weekday in a week that
// starts on weekStartsOn.
func ColumnOf(t time.Time, weekStartsOn time.Weekday) int {
	return (int(t.Weekday())-int(weekStartsOn)+7)%7 + 1
}

// DaysBetween returns the number of calendar days from a to b.
// Both are truncated to midnight first, so DST shifts do not matter.
func DaysBetween(a, b time.Time) int {
	a = TruncateToDay(a)
	b = TruncateToDay(b.In(a.Location()))
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	// Unix seconds, as time.Duration saturates after about 292 years.
	return int((ub.Unix() - ua.Unix()) / (24 * 60 * 60))
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MinuteOfDay returns the minutes elapsed since midnight of t's calendar day.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
