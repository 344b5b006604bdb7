package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownView is returned for a view outside the View enum.
var ErrUnknownView = errors.New("unknown view")

// View is the calendar view being prepared.
type View int

const (
	Month View = iota
	Week
	WeekInPlace
	DayInPlace
	Day
	WeekTime
	DayReverse
)

var viewNames = [...]string{
	Month:       "month",
	Week:        "week",
	WeekInPlace: "week_in_place",
	DayInPlace:  "day_in_place",
	Day:         "day",
	WeekTime:    "week_time",
	DayReverse:  "day_reverse",
}

// Views lists every view in enum order.
func Views() []View {
	return []View{Month, Week, WeekInPlace, DayInPlace, Day, WeekTime, DayReverse}
}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// ParseView parses a view name. Matching ignores case and treats '-' and
// '_' alike.
func ParseView(s string) (View, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, name := range viewNames {
		if name == norm {
			return View(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// MarshalText implements encoding.TextMarshaler.
func (v View) MarshalText() ([]byte, error) {
	if v < 0 || int(v) >= len(viewNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *View) UnmarshalText(b []byte) error {
	parsed, err := ParseView(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// IsCellView reports whether v draws whole-day cells with spanning blocks.
func (v View) IsCellView() bool {
	return v == Month || v == Week
}

// IsInPlace reports whether v draws each day as a plain list.
func (v View) IsInPlace() bool {
	return v == WeekInPlace || v == DayInPlace
}

// IsTimeGrid reports whether v positions items on a minute axis.
func (v View) IsTimeGrid() bool {
	return v == Day || v == WeekTime || v == DayReverse
}
