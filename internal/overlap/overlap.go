// Package overlap assigns side-by-side columns to time-overlapping items of a day.
package overlap

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// DefaultMinDuration is the visual duration in minutes given to items that
// have none of their own.
const DefaultMinDuration = 30

// Entry is one item of a day, positioned in minutes since midnight.
type Entry struct {
	Index int // declaration order, used as the last tie-break
	Start int
	End   int
}

// Slot is an Entry with its resolved horizontal placement.
type Slot struct {
	Entry
	VisualEnd int     // End, or Start+minDuration for zero-length entries
	Column    int     // 0-based column inside the cluster
	Columns   int     // column count of the cluster
	Width     float64 // 1 / Columns
	Left      float64 // Column * Width
}

// WidthPercent returns Width as a CSS-style percentage, e.g. "50%".
func (s Slot) WidthPercent() string {
	return percent(s.Width)
}

// LeftPercent returns Left as a CSS-style percentage, e.g. "33.33%".
func (s Slot) LeftPercent() string {
	return percent(s.Left)
}

func percent(f float64) string {
	return strconv.FormatFloat(math.Round(f*10000)/100, 'f', -1, 64) + "%"
}

// Overlaps reports whether two half-open minute ranges intersect.
func Overlaps(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// Resolve places every entry in the lowest column not taken by an entry
// still open at its start. Entries are processed by start ascending, then
// end descending, then declaration order, and are returned in that order.
// Each maximal cluster of transitively overlapping entries shares one
// column count equal to its peak concurrency.
func Resolve(entries []Entry, minDuration int) []Slot {
	if minDuration <= 0 {
		minDuration = 1
	}

	slots := make([]Slot, len(entries))
	for i, e := range entries {
		end := e.End
		if end <= e.Start {
			end = e.Start + minDuration
		}
		slots[i] = Slot{Entry: e, VisualEnd: end}
	}

	slices.SortFunc(slots, func(a, b Slot) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.VisualEnd, a.VisualEnd); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	// open[c] is the index of the slot holding column c, or -1.
	var open []int
	clusterStart, clusterCols := 0, 0

	closeCluster := func(until int) {
		for k := clusterStart; k < until; k++ {
			slots[k].Columns = clusterCols
			slots[k].Width = 1 / float64(clusterCols)
			slots[k].Left = float64(slots[k].Column) * slots[k].Width
		}
	}

	for i := range slots {
		s := &slots[i]

		busy := false
		for c, k := range open {
			if k >= 0 && !Overlaps(slots[k].Start, slots[k].VisualEnd, s.Start, s.VisualEnd) {
				open[c] = -1
			}
			if open[c] >= 0 {
				busy = true
			}
		}
		if !busy && i > clusterStart {
			closeCluster(i)
			clusterStart, clusterCols = i, 0
			open = open[:0]
		}

		col := slices.Index(open, -1)
		if col < 0 {
			col = len(open)
			open = append(open, i)
		} else {
			open[col] = i
		}
		s.Column = col
		clusterCols = max(clusterCols, col+1)
	}
	closeCluster(len(slots))

	return slots
}
