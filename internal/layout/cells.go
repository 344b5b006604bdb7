package layout

import (
	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/item"
)

// PrepareCells buckets items by day for the month and week grids.
//
// A multi-day item is placed in every day it touches, in source order.
// IsStart marks its first day, and every occurrence reports Span: the
// number of cells from its day to the item's last day or the end of the
// row, whichever comes first. The renderer draws one wide block from the
// first shown occurrence of each row.
func PrepareCells(items []item.Item, opts Options) (Layout, error) {
	all, opts, skipped, warnings, err := collect(items, opts)
	if err != nil {
		return Layout{}, err
	}

	buckets := make(BucketMap)
	for _, p := range all {
		last := p.iv.LastDay()
		for d, day := range p.days() {
			rowEnd := dateutil.StartOfWeek(day, opts.WeekStartsOn).AddDate(0, 0, 6)
			segEnd := last
			if rowEnd.Before(segEnd) {
				segEnd = rowEnd
			}

			occ := p.occurrence()
			occ.IsStart = d == 0
			occ.Span = dateutil.DaysBetween(day, segEnd) + 1

			key := dateutil.DayKey(day)
			buckets[key] = append(buckets[key], occ)
		}
	}

	return Layout{
		View:     Month,
		Axis:     AxisNone,
		Buckets:  buckets,
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}
