package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/db"
	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/recur"
	"github.com/javiermolinar/calgrid/internal/source"
)

var errNoInput = errors.New("no items: pass --input FILE or --db")

// inputFlags are the item source flags shared by the layout commands.
type inputFlags struct {
	path   string
	useDB  bool
	expand bool
	view   string
	date   string
}

func (f *inputFlags) register(cmd *cobra.Command, defaultView string) {
	cmd.Flags().StringVarP(&f.path, "input", "i", "", "Item file (.json, .yaml, .yml, .ics)")
	cmd.Flags().BoolVar(&f.useDB, "db", false, "Read items from the SQLite store")
	cmd.Flags().BoolVar(&f.expand, "expand", true, "Expand recurring items")
	cmd.Flags().StringVar(&f.view, "view", defaultView, "View: month, week, week_in_place, day_in_place, day, week_time, day_reverse")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Anchor date (today, tomorrow, next-week, monday, YYYY-MM-DD)")
}

// request is a resolved layout request.
type request struct {
	view   layout.View
	anchor time.Time
	start  time.Time // first displayed day
	end    time.Time // last displayed day
	opts   layout.Options
	items  []item.Item
}

// resolve parses the flags and loads the items displayed around the anchor.
func (a *App) resolve(ctx context.Context, f inputFlags) (request, error) {
	req, err := a.resolveView(f)
	if err != nil {
		return req, err
	}
	req.items, err = a.loadItems(ctx, f, req.opts, req.start, req.end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return req, err
	}
	return req, nil
}

// resolveView parses the view, options and anchor without loading items.
func (a *App) resolveView(f inputFlags) (request, error) {
	var req request

	viewName := f.view
	if viewName == "" {
		viewName = a.config.Display.View
	}
	view, err := layout.ParseView(viewName)
	if err != nil {
		return req, err
	}

	opts, err := a.config.LayoutOptions()
	if err != nil {
		return req, err
	}

	anchor, err := dateutil.ParseAnchor(f.date, a.now().In(opts.Location))
	if err != nil {
		return req, fmt.Errorf("parsing --date: %w", err)
	}

	start, end := displayedRange(view, anchor, opts.WeekStartsOn)
	return request{view: view, anchor: anchor, start: start, end: end, opts: opts}, nil
}

// displayedRange returns the first and last day a view shows around anchor.
func displayedRange(view layout.View, anchor time.Time, weekStartsOn time.Weekday) (start, end time.Time) {
	switch view {
	case layout.Month:
		return dateutil.MonthGridRange(anchor, weekStartsOn)
	case layout.Week, layout.WeekInPlace, layout.WeekTime:
		return dateutil.WeekRange(anchor, weekStartsOn)
	default:
		day := dateutil.TruncateToDay(anchor)
		return day, day
	}
}

func (a *App) openSource(f inputFlags, opts layout.Options) (item.Source, error) {
	switch {
	case f.useDB:
		if err := ensureDir(a.config.Storage.DBPath); err != nil {
			return nil, err
		}
		store, err := db.New(a.config.Storage.DBPath, opts.Location)
		if err != nil {
			return nil, fmt.Errorf("opening item store: %w", err)
		}
		return store, nil
	case f.path != "":
		path, err := resolvePath(f.path)
		if err != nil {
			return nil, err
		}
		return source.File{Path: path, Fields: opts.Fields, Location: opts.Location}, nil
	}
	return nil, errNoInput
}

// loadItems reads the items intersecting [start, end]. Recurring items are
// read from the beginning of time so rules that began earlier still expand
// into the window.
func (a *App) loadItems(ctx context.Context, f inputFlags, opts layout.Options, start, end time.Time) ([]item.Item, error) {
	src, err := a.openSource(f, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	from := start
	if f.expand {
		from = time.Time{}
	}
	items, err := src.ListItems(ctx, from, end)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	if !f.expand {
		return items, nil
	}

	res, err := recur.Expand(items, opts.Fields, recur.Options{
		RangeStart:     start,
		RangeEnd:       end,
		RuleField:      a.config.Calendar.RuleField,
		IDField:        opts.IDField,
		MaxOccurrences: a.config.Calendar.MaxOccurrences,
		Location:       opts.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("expanding recurring items: %w", err)
	}
	for _, id := range res.Truncated {
		a.log.Log("RECURRENCE_CAPPED", map[string]any{"id": id, "max": a.config.Calendar.MaxOccurrences})
	}
	for _, fail := range res.Errors {
		a.log.LogError(fmt.Sprintf("expanding item %d (%s)", fail.Index, fail.ID), fail.Err)
	}
	return source.Window(res.Items, opts.Fields, opts.Location, start, end), nil
}

// prepare runs the cached preparation pass for req and logs it.
func (a *App) prepare(req request) (layout.Layout, error) {
	l, hit, err := a.cache.Prepare(req.view, req.items, req.opts)
	if err != nil {
		return layout.Layout{}, err
	}
	a.log.LogPrepare(l, len(req.items), hit)
	return l, nil
}
