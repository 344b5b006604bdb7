package ui

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/gosuri/uitable"

	"github.com/javiermolinar/calgrid/internal/header"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/tui"
)

// FormatMinute formats minutes from midnight as HH:MM.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
}

// PrintLayout writes a layout as a table grouped by bucket key.
func PrintLayout(w io.Writer, l layout.Layout, width int) {
	keys := sortedKeys(l.Buckets)
	if len(keys) == 0 {
		fmt.Fprintln(w, "No items in this range.")
	}

	labelWidth := max(width-40, 16)
	for i, key := range keys {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "  %s\n", formatHeader(dayTitle(key)))
		printBucket(w, l.View, l.Buckets[key], labelWidth)
	}

	if len(l.Header) > 0 {
		fmt.Fprintf(w, "\n  %s\n", formatHeader("MULTI-DAY"))
		tbl := newTable()
		for _, p := range l.Header {
			tbl.AddRow("  ", tui.Truncate(tui.Label(p), labelWidth),
				p.Start.Format("Mon Jan 2 15:04")+" → "+p.End.Format("Mon Jan 2 15:04"),
				fmt.Sprintf("(%dd)", p.Span),
			)
		}
		fmt.Fprintln(w, tbl)
	}

	printIssues(w, l)
}

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = " "
	return tbl
}

// printBucket writes the occurrences of one bucket, one row each.
func printBucket(w io.Writer, view layout.View, bucket []layout.PositionedItem, labelWidth int) {
	tbl := newTable()
	for _, p := range bucket {
		tbl.AddRow(occurrenceRow(view, p, labelWidth)...)
	}
	fmt.Fprintln(w, tbl)
}

func occurrenceRow(view layout.View, p layout.PositionedItem, labelWidth int) []any {
	marker := formatStart("●")
	if !p.IsStart {
		marker = formatContinuation("┄")
	}
	label := tui.Truncate(tui.Label(p), labelWidth)

	switch {
	case view.IsTimeGrid():
		return []any{"   ", marker,
			FormatMinute(p.StartMinute) + "-" + FormatMinute(p.EndMinute),
			FormatDuration(p.Duration()),
			label,
			formatMuted(fmt.Sprintf("col %d/%d  left %s  width %s", p.Column+1, p.Columns, p.LeftPercent(), p.WidthPercent())),
		}
	case view.IsCellView():
		return []any{"   ", marker, label, formatMuted(fmt.Sprintf("span %d", p.Span))}
	default:
		return []any{"   ", marker, p.Start.Format("15:04"), label}
	}
}

// printIssues lists skipped items and warnings.
func printIssues(w io.Writer, l layout.Layout) {
	for _, s := range l.Skipped {
		fmt.Fprintf(w, "%s item %d: %s\n", formatWarning("skipped"), s.Index, s.Reason())
	}
	for _, s := range l.Warnings {
		fmt.Fprintf(w, "%s item %d: %s\n", formatWarning("warning"), s.Index, s.Reason())
	}
}

// PrintHeaderSpans writes the header segments of one week.
func PrintHeaderSpans(w io.Writer, weekStart, weekEnd time.Time, entries []header.Entry) {
	title := fmt.Sprintf("WEEK: %s - %s", weekStart.Format("Mon Jan 2"), weekEnd.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(title))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if len(entries) == 0 {
		fmt.Fprintln(w, "  No multi-day items this week.")
		return
	}
	for _, e := range entries {
		left, right := " ", " "
		if e.Span.IsFromPrevious {
			left = "◀"
		}
		if e.Span.IsFromNext {
			right = "▶"
		}
		days := fmt.Sprintf("%dd", e.Span.Columns())
		fmt.Fprintf(w, "  %-8s %-3s %s %s %s\n", e.Span.GridColumn, days, left, tui.Label(e.Item), right)
	}
}

func sortedKeys(m layout.BucketMap) []string {
	return slices.Sorted(maps.Keys(m))
}

// dayTitle formats a bucket key for display, leaving unknown keys as is.
func dayTitle(key string) string {
	if t, err := time.Parse("2006-01-02", key); err == nil {
		return t.Format("Mon Jan 2")
	}
	if t, err := time.Parse("2006-01-02T15:04", key); err == nil {
		return t.Format("Mon Jan 2 15:04")
	}
	return key
}
