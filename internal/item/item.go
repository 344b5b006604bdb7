// Package item defines the caller-owned records the layout engine consumes.
package item

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
)

// Per-item errors. These never abort a preparation pass.
var (
	ErrInvalidDate   = dateutil.ErrInvalidDate
	ErrMissingField  = errors.New("configured field is missing on item")
	ErrEmptyInterval = errors.New("start is after end")
)

// Configuration errors. These fail a whole preparation pass.
var (
	ErrInvalidFieldPair = errors.New("field pair must look like \"start-end\"")
)

// DefaultIDField is the identifier field used when none is configured.
const DefaultIDField = "id"

// AllDayField marks an item whose interval covers whole calendar days.
const AllDayField = "allDay"

// Item is an opaque record from the caller's domain. The engine only reads it.
type Item map[string]any

// ID returns the item's identifier as a string, or "" if it has none.
func (it Item) ID(field string) string {
	if field == "" {
		field = DefaultIDField
	}
	v, ok := it[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Title returns the "title" field, falling back to "summary".
func (it Item) Title() string {
	for _, f := range []string{"title", "summary"} {
		if v, ok := it[f].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Clone returns a shallow copy of the item.
func (it Item) Clone() Item {
	return maps.Clone(it)
}

// FieldPair names the two fields holding an item's interval.
type FieldPair struct {
	Start string
	End   string // empty means every item is a point event
}

// ParseFieldPair parses the "start-end" convention. Whitespace is stripped
// and field names must not contain '-'.
func ParseFieldPair(s string) (FieldPair, error) {
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return FieldPair{}, fmt.Errorf("%w: %q has more than two fields", ErrInvalidFieldPair, s)
	}
	for i := range parts {
		parts[i] = strings.Join(strings.Fields(parts[i]), "")
	}
	fp := FieldPair{Start: parts[0]}
	if len(parts) == 2 {
		fp.End = parts[1]
	}
	if err := fp.Validate(); err != nil {
		return FieldPair{}, err
	}
	return fp, nil
}

// Validate checks that the pair names a start field.
func (fp FieldPair) Validate() error {
	if fp.Start == "" {
		return fmt.Errorf("%w: start field is empty", ErrInvalidFieldPair)
	}
	if strings.Contains(fp.Start, "-") || strings.Contains(fp.End, "-") {
		return fmt.Errorf("%w: field names cannot contain '-'", ErrInvalidFieldPair)
	}
	return nil
}

// String renders the pair back in "start-end" form.
func (fp FieldPair) String() string {
	if fp.End == "" {
		return fp.Start
	}
	return fp.Start + "-" + fp.End
}

// Interval is an item's parsed time range in the display location.
type Interval struct {
	Start  time.Time
	End    time.Time
	Point  bool // no duration of its own
	AllDay bool // Start and End are midnights; both days are fully covered
}

// Days returns the number of calendar days the interval touches, counting
// the start and the end day.
func (iv Interval) Days() int {
	return dateutil.DaysBetween(iv.Start, iv.LastDay()) + 1
}

// LastDay returns midnight of the last calendar day the interval touches.
// The end day is inclusive, even when the interval ends exactly at midnight.
func (iv Interval) LastDay() time.Time {
	return dateutil.TruncateToDay(iv.End)
}

// MultiDay reports whether the interval touches more than one calendar day.
func (iv Interval) MultiDay() bool {
	return iv.Days() > 1
}

// Intersects reports whether the interval overlaps [start, end].
func (iv Interval) Intersects(start, end time.Time) bool {
	return !iv.End.Before(start) && !iv.Start.After(end)
}

// IntervalOf extracts the interval of it using fields, reading zoneless
// timestamps in loc. A missing end field yields a point event. An item
// flagged with AllDayField, or whose start and end are both plain dates, is
// an all-day interval. When start is after end the interval collapses to a
// point at start and the returned warning wraps ErrEmptyInterval; err is
// reserved for unusable items.
func IntervalOf(it Item, fields FieldPair, loc *time.Location) (iv Interval, warning, err error) {
	raw, ok := it[fields.Start]
	if !ok || raw == nil {
		return Interval{}, nil, fmt.Errorf("%w: %q", ErrMissingField, fields.Start)
	}
	start, err := dateutil.ParseTimestamp(raw, loc)
	if err != nil {
		return Interval{}, nil, fmt.Errorf("field %q: %w", fields.Start, err)
	}

	rawEnd, ok := it[fields.End]
	if fields.End == "" || !ok || rawEnd == nil || rawEnd == "" {
		return Interval{Start: start, End: start, Point: true}, nil, nil
	}
	end, err := dateutil.ParseTimestamp(rawEnd, loc)
	if err != nil {
		return Interval{}, nil, fmt.Errorf("field %q: %w", fields.End, err)
	}

	if end.Before(start) {
		warning = fmt.Errorf("%w: %s > %s", ErrEmptyInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
		return Interval{Start: start, End: start, Point: true}, warning, nil
	}
	if it[AllDayField] == true || (dateOnly(raw) && dateOnly(rawEnd)) {
		return Interval{Start: dateutil.TruncateToDay(start), End: dateutil.TruncateToDay(end), AllDay: true}, nil, nil
	}
	return Interval{Start: start, End: end, Point: end.Equal(start)}, nil, nil
}

func dateOnly(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

// Source provides items for a time window.
type Source interface {
	// ListItems returns items whose interval intersects [start, end].
	ListItems(ctx context.Context, start, end time.Time) ([]Item, error)

	// Close releases any resources held by the source.
	Close() error
}
