// Package layout turns raw items into render-ready, per-view bucket maps.
//
// Every function here is a pure function of its inputs: items are never
// modified, and every bucket and PositionedItem is freshly allocated.
package layout

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/overlap"
)

// ErrInvalidWeekStart is returned when WeekStartsOn is outside 0-6.
var ErrInvalidWeekStart = errors.New("week_starts_on must be between 0 (Sunday) and 6 (Saturday)")

// Axis says which grid axis minute coordinates run along.
type Axis int

const (
	AxisNone   Axis = iota // cell and in-place views
	AxisRow                // time runs top to bottom
	AxisColumn             // time runs left to right
)

// Options configures one preparation pass.
type Options struct {
	Fields       item.FieldPair
	WeekStartsOn time.Weekday
	Location     *time.Location // display location; nil means time.Local
	MinDuration  int            // minutes; <= 0 means overlap.DefaultMinDuration
	IDField      string         // "" means item.DefaultIDField
}

// Validate checks the configuration once per pass.
func (o Options) Validate() error {
	if err := o.Fields.Validate(); err != nil {
		return err
	}
	if o.WeekStartsOn < time.Sunday || o.WeekStartsOn > time.Saturday {
		return fmt.Errorf("%w: got %d", ErrInvalidWeekStart, int(o.WeekStartsOn))
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.MinDuration <= 0 {
		o.MinDuration = overlap.DefaultMinDuration
	}
	if o.IDField == "" {
		o.IDField = item.DefaultIDField
	}
	return o
}

// PositionedItem is one occurrence of an item in a bucket, with the
// geometry computed for the active view.
type PositionedItem struct {
	Item  item.Item `json:"item"`
	Index int       `json:"index"` // position in the input slice
	ID    string    `json:"id,omitempty"`

	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Point  bool      `json:"point,omitempty"`
	AllDay bool      `json:"allDay,omitempty"`

	// Cell views.
	IsStart bool `json:"isStart"`
	Span    int  `json:"span"` // columns covered from this cell to the end of its row

	// Time-grid views.
	StartMinute int     `json:"startMinute"`
	EndMinute   int     `json:"endMinute"`
	Column      int     `json:"column"`
	Columns     int     `json:"columns"`
	Width       float64 `json:"width"`
	Left        float64 `json:"left"`
	Hour        int     `json:"hour"`
}

// GridLines returns the 1-based grid lines "start / end" along the time axis.
func (p PositionedItem) GridLines() string {
	return fmt.Sprintf("%d / %d", p.StartMinute+1, p.EndMinute+1)
}

// CellGridColumn returns the grid-column range of an occurrence drawn in the
// 0-based cell column idx. Collapsed cells never span.
func (p PositionedItem) CellGridColumn(idx int, collapsed bool) string {
	span := max(p.Span, 1)
	if collapsed {
		span = 1
	}
	return fmt.Sprintf("%d / %d", idx+1, idx+span+1)
}

// WidthPercent returns the width as a percentage string.
func (p PositionedItem) WidthPercent() string {
	return overlap.Slot{Width: p.Width}.WidthPercent()
}

// LeftPercent returns the left offset as a percentage string.
func (p PositionedItem) LeftPercent() string {
	return overlap.Slot{Left: p.Left}.LeftPercent()
}

// Duration returns the occurrence's extent on the time axis in minutes.
func (p PositionedItem) Duration() int {
	return p.EndMinute - p.StartMinute
}

// BucketMap maps a day or hour key to its ordered occurrences.
type BucketMap map[string][]PositionedItem

// Skipped records an item left out of (or degraded in) a pass.
type Skipped struct {
	Index int       `json:"index"`
	Item  item.Item `json:"item"`
	Err   error     `json:"-"`
}

// Reason returns the error text for serialization.
func (s Skipped) Reason() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Layout is the result of preparing one view.
type Layout struct {
	View    View      `json:"view"`
	Axis    Axis      `json:"axis"`
	Buckets BucketMap `json:"buckets"`

	// Hours groups time-grid occurrences by their first hour (DayReverse).
	Hours BucketMap `json:"hours,omitempty"`

	// Header lists multi-day items for the week header row (time-grid views).
	Header []PositionedItem `json:"header,omitempty"`

	Skipped  []Skipped `json:"-"`
	Warnings []Skipped `json:"-"`
}

// Prepare dispatches to the preparer of view.
func Prepare(view View, items []item.Item, opts Options) (Layout, error) {
	var (
		l   Layout
		err error
	)
	switch view {
	case Month, Week:
		l, err = PrepareCells(items, opts)
	case Day, WeekTime:
		l, err = PrepareTimeGrid(items, opts)
	case DayReverse:
		l, err = PrepareTimeGridReverse(items, opts)
	case DayInPlace, WeekInPlace:
		l, err = PrepareInPlace(items, opts)
	default:
		return Layout{}, fmt.Errorf("%w: %d", ErrUnknownView, int(view))
	}
	if err != nil {
		return Layout{}, err
	}
	l.View = view
	return l, nil
}

// parsed is an item whose interval has been extracted.
type parsed struct {
	index int
	it    item.Item
	id    string
	iv    item.Interval
}

// days returns midnight of every calendar day the interval touches.
func (p parsed) days() []time.Time {
	first := dateutil.TruncateToDay(p.iv.Start)
	n := p.iv.Days()
	out := make([]time.Time, n)
	for d := range n {
		out[d] = first.AddDate(0, 0, d)
	}
	return out
}

func (p parsed) occurrence() PositionedItem {
	return PositionedItem{
		Item:   p.it,
		Index:  p.index,
		ID:     p.id,
		Start:  p.iv.Start,
		End:    p.iv.End,
		Point:  p.iv.Point,
		AllDay: p.iv.AllDay,
		Span:   1,
	}
}

// collect validates opts and extracts intervals, isolating per-item failures.
func collect(items []item.Item, opts Options) ([]parsed, Options, []Skipped, []Skipped, error) {
	if err := opts.Validate(); err != nil {
		return nil, opts, nil, nil, err
	}
	opts = opts.withDefaults()

	out := make([]parsed, 0, len(items))
	var skipped, warnings []Skipped
	for i, it := range items {
		iv, warn, err := item.IntervalOf(it, opts.Fields, opts.Location)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Item: it, Err: err})
			continue
		}
		if warn != nil {
			warnings = append(warnings, Skipped{Index: i, Item: it, Err: warn})
		}
		out = append(out, parsed{index: i, it: it, id: it.ID(opts.IDField), iv: iv})
	}
	return out, opts, skipped, warnings, nil
}
