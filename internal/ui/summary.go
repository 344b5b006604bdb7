package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/summary"
)

func (a *App) summaryCmd() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize busy time for a week",
		Long: `Summarize the week containing --date: busy time per day, the busiest
day and how much of the busy time falls inside the configured peak hours.

Overlapping items count once, so busy time is the time covered by at
least one item.

Example:
  calgrid summary -i items.json
  calgrid summary --db -d next-week`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.view = layout.WeekTime.String()
			req, err := a.resolve(context.Background(), in)
			if err != nil {
				return err
			}

			l, err := a.prepare(req)
			if err != nil {
				return err
			}

			s, err := summary.SummarizeWeek(req.anchor, l, summary.Options{
				WeekStartsOn: req.opts.WeekStartsOn,
				PeakStart:    a.config.Calendar.PeakHoursStart,
				PeakEnd:      a.config.Calendar.PeakHoursEnd,
			})
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			PrintWeekSummary(cmd.OutOrStdout(), s, a.config.HasPeakHours())
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.path, "input", "i", "", "Item file (.json, .yaml, .yml, .ics)")
	cmd.Flags().BoolVar(&in.useDB, "db", false, "Read items from the SQLite store")
	cmd.Flags().BoolVar(&in.expand, "expand", true, "Expand recurring items")
	cmd.Flags().StringVarP(&in.date, "date", "d", "", "Anchor date (today, tomorrow, next-week, monday, YYYY-MM-DD)")
	return cmd
}

// PrintWeekSummary writes the per-day table and the week statistics.
func PrintWeekSummary(w io.Writer, s *summary.WeekSummary, showPeak bool) {
	title := fmt.Sprintf("WEEK: %s - %s", s.Start.Format("Mon Jan 2"), s.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(title))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	stats := s.Stats
	_, most := stats.BusiestDay()
	tbl := newTable()
	for _, ds := range stats.DayStats {
		if ds.Free() {
			tbl.AddRow("  ", ds.Date.Format("Mon Jan 2"), formatMuted("free"), "", "")
			continue
		}
		tbl.AddRow("  ", ds.Date.Format("Mon Jan 2"),
			fmt.Sprintf("%d items", ds.Items),
			FormatMinute(ds.FirstMinute)+"-"+FormatMinute(ds.LastMinute),
			LoadBar(ds.BusyMinutes, most, 20)+" "+FormatDuration(ds.BusyMinutes),
		)
	}
	fmt.Fprintln(w, tbl)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Busy: %s  |  Items: %d  |  Multi-day: %d  |  Free days: %d\n",
		formatStats(FormatDuration(stats.BusyMinutes)), stats.Items, stats.MultiDay, stats.FreeDays())

	if col, busy := stats.BusiestDay(); col >= 0 {
		fmt.Fprintf(w, "  Busiest day: %s (%s)\n",
			stats.DayStats[col].Date.Format("Monday"), formatStats(FormatDuration(busy)))
	}

	if showPeak && stats.BusyMinutes > 0 {
		fmt.Fprintf(w, "  Peak hours: %s (%s of %s busy during peak hours)\n",
			formatStats(fmt.Sprintf("%d%%", stats.PeakPercent())),
			FormatDuration(stats.PeakMinutes),
			FormatDuration(stats.BusyMinutes))
	}

	if stats.Skipped > 0 {
		fmt.Fprintf(w, "  %s\n", formatWarning(fmt.Sprintf("%d items skipped", stats.Skipped)))
	}
}

// LoadBar draws minutes relative to most as a bar of width cells.
func LoadBar(minutes, most, width int) string {
	if most <= 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}
	filled := min((minutes*width)/most, width)
	return "[" + formatStart(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled) + "]"
}
