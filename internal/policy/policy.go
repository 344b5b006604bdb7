// Package policy decides which prepared occurrences a cell actually draws.
package policy

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/layout"
)

// ErrUnknownMode is returned for a display mode other than show_all or collapse.
var ErrUnknownMode = errors.New("unknown cell display mode")

// DisplayMode says how a dense cell is drawn.
type DisplayMode string

const (
	ShowAll  DisplayMode = "show_all"
	Collapse DisplayMode = "collapse"
)

// ParseDisplayMode parses "show_all" or "collapse" (case-insensitive, '-' or '_').
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")) {
	case ShowAll, "":
		return ShowAll, nil
	case Collapse:
		return Collapse, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// CellDisplay is the display mode of one view. Keys in Toggled flip the mode
// for that cell only.
type CellDisplay struct {
	Mode    DisplayMode `toml:"mode" json:"mode"`
	Toggled []string    `toml:"toggled,omitempty" json:"toggled,omitempty"`
}

// DisplayModes holds the cell display of each view. Missing views show all.
type DisplayModes map[layout.View]CellDisplay

// Toggle flips the cell at key in view and returns the updated modes.
func (m DisplayModes) Toggle(view layout.View, key string) DisplayModes {
	out := make(DisplayModes, len(m)+1)
	for v, cd := range m {
		out[v] = CellDisplay{Mode: cd.Mode, Toggled: slices.Clone(cd.Toggled)}
	}
	cd := out[view]
	if i := slices.Index(cd.Toggled, key); i >= 0 {
		cd.Toggled = slices.Delete(cd.Toggled, i, i+1)
	} else {
		cd.Toggled = append(cd.Toggled, key)
	}
	out[view] = cd
	return out
}

// ShouldCollapse reports whether the cell at key shows only its last item.
// Time-grid views are positioned by the overlap resolver and never collapse.
func ShouldCollapse(modes DisplayModes, view layout.View, key string) bool {
	if view.IsTimeGrid() {
		return false
	}
	cd := modes[view]
	collapsed := cd.Mode == Collapse
	if slices.Contains(cd.Toggled, key) {
		collapsed = !collapsed
	}
	return collapsed
}

// Decapsulate returns bucket, or only its last element when collapsed.
func Decapsulate(collapsed bool, bucket []layout.PositionedItem) []layout.PositionedItem {
	if !collapsed || len(bucket) <= 1 {
		return bucket
	}
	n := len(bucket)
	return bucket[n-1 : n : n]
}

// ShouldShowItem reports whether the occurrence p in the cell at key is drawn
// on its own. In cell views an occurrence is hidden when an earlier cell of
// the same visible row already draws the item across this cell. The row is
// clipped to the period displayed around anchor.
func ShouldShowItem(p layout.PositionedItem, key string, modes DisplayModes, view layout.View, buckets layout.BucketMap, anchor time.Time, weekStartsOn time.Weekday) bool {
	if !view.IsCellView() {
		return true
	}
	cell, _, err := dateutil.ParseKey(key, anchor.Location())
	if err != nil {
		return true
	}

	from := dateutil.StartOfWeek(cell, weekStartsOn)
	if ps := periodStart(view, anchor, weekStartsOn); ps.After(from) {
		from = ps
	}
	if from.After(cell) {
		// The cell lies before the displayed period; nothing precedes it.
		return true
	}

	target := dateutil.DaysBetween(from, cell)
	coveredThrough := -1
	for d := range target {
		if d <= coveredThrough {
			continue
		}
		dayKey := dateutil.DayKey(from.AddDate(0, 0, d))
		bucket := buckets[dayKey]
		collapsed := ShouldCollapse(modes, view, dayKey)
		occ, ok := visibleOccurrence(Decapsulate(collapsed, bucket), p.Index)
		if !ok {
			continue
		}
		span := max(occ.Span, 1)
		if collapsed {
			span = 1
		}
		coveredThrough = d + span - 1
	}
	return target > coveredThrough
}

func periodStart(view layout.View, anchor time.Time, weekStartsOn time.Weekday) time.Time {
	if view == layout.Month {
		start, _ := dateutil.MonthGridRange(anchor, weekStartsOn)
		return start
	}
	start, _ := dateutil.WeekRange(anchor, weekStartsOn)
	return start
}

func visibleOccurrence(bucket []layout.PositionedItem, index int) (layout.PositionedItem, bool) {
	for _, p := range bucket {
		if p.Index == index {
			return p, true
		}
	}
	return layout.PositionedItem{}, false
}

// Rendered is an occurrence a cell draws, with the number of cells it covers.
type Rendered struct {
	Item layout.PositionedItem `json:"item"`
	Span int                   `json:"span"`
}

// Policy bundles the inputs the predicates need for one displayed period.
type Policy struct {
	View         layout.View
	Modes        DisplayModes
	Anchor       time.Time
	WeekStartsOn time.Weekday
}

// Collapsed reports whether the cell at key is collapsed.
func (p Policy) Collapsed(key string) bool {
	return ShouldCollapse(p.Modes, p.View, key)
}

// Visible returns the occurrences the cell at key draws, in bucket order.
func (p Policy) Visible(key string, buckets layout.BucketMap) []Rendered {
	collapsed := p.Collapsed(key)
	var out []Rendered
	for _, occ := range Decapsulate(collapsed, buckets[key]) {
		if !ShouldShowItem(occ, key, p.Modes, p.View, buckets, p.Anchor, p.WeekStartsOn) {
			continue
		}
		span := max(occ.Span, 1)
		if collapsed {
			span = 1
		}
		out = append(out, Rendered{Item: occ, Span: span})
	}
	return out
}
