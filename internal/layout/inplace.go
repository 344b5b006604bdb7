package layout

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/item"
)

// PrepareInPlace buckets items by day for the in-place views, where a day
// is a plain chronological list. There is no minute positioning and no
// overlap resolution.
func PrepareInPlace(items []item.Item, opts Options) (Layout, error) {
	all, _, skipped, warnings, err := collect(items, opts)
	if err != nil {
		return Layout{}, err
	}

	buckets := make(BucketMap)
	for _, p := range all {
		for d, day := range p.days() {
			occ := p.occurrence()
			occ.IsStart = d == 0

			key := dateutil.DayKey(day)
			buckets[key] = append(buckets[key], occ)
		}
	}

	for _, bucket := range buckets {
		slices.SortStableFunc(bucket, func(a, b PositionedItem) int {
			if c := a.Start.Compare(b.Start); c != 0 {
				return c
			}
			return cmp.Compare(a.Index, b.Index)
		})
	}

	return Layout{
		View:     DayInPlace,
		Axis:     AxisNone,
		Buckets:  buckets,
		Skipped:  skipped,
		Warnings: warnings,
	}, nil
}
