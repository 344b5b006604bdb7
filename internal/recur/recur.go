// Package recur expands recurring items into concrete occurrences.
package recur

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/item"
)

var (
	ErrInvalidRule  = errors.New("invalid recurrence rule")
	ErrInvalidRange = errors.New("expansion range end is before its start")
)

const (
	DefaultRuleField      = "rrule"
	DefaultExDateField    = "exdate"
	DefaultMaxOccurrences = 5000

	// InstanceField holds the RFC3339 start of the occurrence an expanded
	// item was produced for.
	InstanceField = "instance"
)

// Options controls one expansion.
type Options struct {
	RangeStart time.Time
	RangeEnd   time.Time

	RuleField      string // "" means DefaultRuleField
	ExDateField    string // "" means DefaultExDateField
	IDField        string // "" means item.DefaultIDField
	MaxOccurrences int    // <= 0 means DefaultMaxOccurrences
	Location       *time.Location
}

func (o Options) withDefaults() Options {
	if o.RuleField == "" {
		o.RuleField = DefaultRuleField
	}
	if o.ExDateField == "" {
		o.ExDateField = DefaultExDateField
	}
	if o.IDField == "" {
		o.IDField = item.DefaultIDField
	}
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = DefaultMaxOccurrences
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Failure is a recurring item that could not be expanded.
type Failure struct {
	Index int
	ID    string
	Err   error
}

// Result is the outcome of Expand.
type Result struct {
	Items     []item.Item
	Truncated []string // IDs whose occurrences were capped
	Errors    []Failure
}

// Expand replaces every item carrying a recurrence rule with its occurrences
// that intersect [RangeStart, RangeEnd]. Non-recurring items pass through
// unchanged, and so do items whose rule cannot be used. Input items are never
// modified; occurrences are shallow copies with new start and end values.
func Expand(items []item.Item, fields item.FieldPair, opts Options) (Result, error) {
	if err := fields.Validate(); err != nil {
		return Result{}, err
	}
	if opts.RangeEnd.Before(opts.RangeStart) {
		return Result{}, ErrInvalidRange
	}
	opts = opts.withDefaults()

	res := Result{Items: make([]item.Item, 0, len(items))}
	for i, it := range items {
		rule, _ := it[opts.RuleField].(string)
		if strings.TrimSpace(rule) == "" {
			res.Items = append(res.Items, it)
			continue
		}

		occurrences, capped, err := expandItem(it, rule, fields, opts)
		if err != nil {
			res.Errors = append(res.Errors, Failure{Index: i, ID: it.ID(opts.IDField), Err: err})
			res.Items = append(res.Items, it)
			continue
		}
		if capped {
			res.Truncated = append(res.Truncated, it.ID(opts.IDField))
		}
		res.Items = append(res.Items, occurrences...)
	}
	return res, nil
}

func expandItem(it item.Item, rule string, fields item.FieldPair, opts Options) ([]item.Item, bool, error) {
	iv, _, err := item.IntervalOf(it, fields, opts.Location)
	if err != nil {
		return nil, false, err
	}

	r, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %q: %v", ErrInvalidRule, rule, err)
	}
	r.DTStart(iv.Start)

	var set rrule.Set
	set.RRule(r)
	exdates, err := exDates(it[opts.ExDateField], opts.Location)
	if err != nil {
		return nil, false, err
	}
	for _, ex := range exdates {
		set.ExDate(ex.In(iv.Start.Location()))
	}

	// Occurrences that start before the range but are still running count.
	dur := iv.End.Sub(iv.Start)
	from := opts.RangeStart.Add(-dur).In(iv.Start.Location())
	to := opts.RangeEnd.In(iv.Start.Location())
	starts := set.Between(from, to, true)

	capped := false
	if len(starts) > opts.MaxOccurrences {
		starts = starts[:opts.MaxOccurrences]
		capped = true
	}

	format := time.RFC3339
	if iv.AllDay {
		format = time.DateOnly
	}
	_, hasEnd := it[fields.End]

	out := make([]item.Item, 0, len(starts))
	for _, start := range starts {
		occ := it.Clone()
		delete(occ, opts.RuleField)
		delete(occ, opts.ExDateField)
		occ[fields.Start] = start.Format(format)
		if fields.End != "" && hasEnd {
			occ[fields.End] = occurrenceEnd(iv, start).Format(format)
		}
		occ[InstanceField] = start.Format(time.RFC3339)
		out = append(out, occ)
	}
	return out, capped, nil
}

// occurrenceEnd shifts the interval's end along with an occurrence start.
// All-day intervals move by whole days and points end where they start.
func occurrenceEnd(iv item.Interval, start time.Time) time.Time {
	if iv.AllDay {
		return start.AddDate(0, 0, dateutil.DaysBetween(iv.Start, iv.End))
	}
	return start.Add(iv.End.Sub(iv.Start))
}

// exDates reads excluded starts from a comma separated string or a list.
func exDates(v any, loc *time.Location) ([]time.Time, error) {
	var raw []any
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		for _, part := range strings.Split(x, ",") {
			if part = strings.TrimSpace(part); part != "" {
				raw = append(raw, part)
			}
		}
	case []any:
		raw = x
	case []string:
		for _, s := range x {
			raw = append(raw, s)
		}
	default:
		raw = []any{x}
	}

	out := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		t, err := dateutil.ParseTimestamp(r, loc)
		if err != nil {
			return nil, fmt.Errorf("exdate: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}
