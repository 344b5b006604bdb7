package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/header"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
	"github.com/javiermolinar/calgrid/internal/tui"
)

func (a *App) showCmd() *cobra.Command {
	var (
		in       inputFlags
		mode     string
		toggled  []string
		maxWidth int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Draw a view in the terminal",
		Long: `Draw a calendar view in the terminal.

Month and week views are drawn as a grid. Multi-day items are drawn in
the cell where their row starts, with the number of days they cover.
Collapsed cells draw only their last item.

Time-grid and in-place views are drawn as per-day lists.

Example:
  calgrid show -i items.json
  calgrid show --db --view week -d next-week
  calgrid show -i items.json --mode collapse --toggle 2024-02-14`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.resolve(context.Background(), in)
			if err != nil {
				return err
			}

			l, err := a.prepare(req)
			if err != nil {
				return err
			}

			width := termWidth()
			if maxWidth > 0 {
				width = maxWidth
			}

			out := cmd.OutOrStdout()
			if !req.view.IsCellView() {
				printDays(out, req, l, width)
				return nil
			}

			modes, err := a.config.DisplayModes()
			if err != nil {
				return err
			}
			if mode != "" {
				m, err := policy.ParseDisplayMode(mode)
				if err != nil {
					return err
				}
				cd := modes[req.view]
				cd.Mode = m
				modes[req.view] = cd
			}
			for _, key := range toggled {
				modes = modes.Toggle(req.view, key)
			}

			now := a.now().In(req.opts.Location)
			fmt.Fprintf(out, "\n  %s\n", formatHeader(tui.PeriodTitle(req.view, req.anchor, req.opts.WeekStartsOn)))
			fmt.Fprintln(out, tui.RenderGrid(tui.GridState{
				Dates:   tui.PeriodDates(req.view, req.anchor, req.opts.WeekStartsOn, now),
				Buckets: l.Buckets,
				Policy: policy.Policy{
					View:         req.view,
					Modes:        modes,
					Anchor:       req.anchor,
					WeekStartsOn: req.opts.WeekStartsOn,
				},
				CellWidth: tui.CellWidth(width),
			}))
			printIssues(out, l)
			return nil
		},
	}

	in.register(cmd, "")
	cmd.Flags().StringVar(&mode, "mode", "", "Cell display mode for this view: show_all or collapse")
	cmd.Flags().StringSliceVar(&toggled, "toggle", nil, "Day keys (YYYY-MM-DD) whose display mode is flipped")
	cmd.Flags().IntVar(&maxWidth, "width", 0, "Grid width (default: terminal width)")
	return cmd
}

// printDays writes time-grid and in-place layouts as per-day lists, with the
// week header row first when there is one.
func printDays(w io.Writer, req request, l layout.Layout, width int) {
	if len(l.Header) > 0 {
		ws, we := dateutil.WeekRange(req.anchor, req.opts.WeekStartsOn)
		PrintHeaderSpans(w, ws, we, header.ForWeek(req.anchor, req.opts.WeekStartsOn, l.Header))
		fmt.Fprintln(w, strings.Repeat("─", 60))
		l.Header = nil
	}
	if req.view == layout.DayReverse {
		printHours(w, l, width)
		printIssues(w, l)
		return
	}
	PrintLayout(w, l, width)
}

// printHours writes the hour buckets of the reverse day view.
func printHours(w io.Writer, l layout.Layout, width int) {
	if len(l.Hours) == 0 {
		fmt.Fprintln(w, "No items in this range.")
		return
	}
	labelWidth := max(width-40, 16)
	for _, key := range sortedKeys(l.Hours) {
		fmt.Fprintf(w, "  %s\n", formatHeader(dayTitle(key)))
		printBucket(w, layout.DayReverse, l.Hours[key], labelWidth)
	}
}
