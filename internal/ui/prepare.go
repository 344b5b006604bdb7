package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/header"
	"github.com/javiermolinar/calgrid/internal/layout"
)

// issue is the serialized form of a skipped or degraded item.
type issue struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// preparedOutput is the JSON document written by 'calgrid prepare'.
type preparedOutput struct {
	View     layout.View      `json:"view"`
	Anchor   string           `json:"anchor"`
	Start    string           `json:"start"`
	End      string           `json:"end"`
	Buckets  layout.BucketMap `json:"buckets"`
	Hours    layout.BucketMap `json:"hours,omitempty"`
	Header   []header.Entry   `json:"header,omitempty"`
	Skipped  []issue          `json:"skipped,omitempty"`
	Warnings []issue          `json:"warnings,omitempty"`
}

func (a *App) prepareCmd() *cobra.Command {
	var (
		in     inputFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Prepare the layout of a view",
		Long: `Prepare the render-ready layout of a calendar view.

Items are bucketed by day (and hour for the reverse day view). Cell views
get multi-day spans, time-grid views get minute ranges and overlap
columns, and multi-day items in time-grid views are listed with their
week header segment.

Output defaults to a table on a terminal and JSON otherwise.

Example:
  calgrid prepare -i items.json --view month -d 2024-02-01
  calgrid prepare --db --view week_time --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.resolve(context.Background(), in)
			if err != nil {
				return err
			}

			l, err := a.prepare(req)
			if err != nil {
				return err
			}

			if format == "" {
				format = "json"
				if isTerminal() {
					format = "table"
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writePrepared(out, req, l)
			case "table":
				PrintLayout(out, l, termWidth())
				return nil
			}
			return fmt.Errorf("unknown format %q (expected json or table)", format)
		},
	}

	in.register(cmd, "")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or table")
	return cmd
}

func writePrepared(w io.Writer, req request, l layout.Layout) error {
	doc := preparedOutput{
		View:     l.View,
		Anchor:   req.anchor.Format("2006-01-02"),
		Start:    req.start.Format("2006-01-02"),
		End:      req.end.Format("2006-01-02"),
		Buckets:  l.Buckets,
		Hours:    l.Hours,
		Skipped:  issues(l.Skipped, req.opts.IDField),
		Warnings: issues(l.Warnings, req.opts.IDField),
	}
	if len(l.Header) > 0 {
		doc.Header = header.ForWeek(req.anchor, req.opts.WeekStartsOn, l.Header)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	return nil
}

func issues(skipped []layout.Skipped, idField string) []issue {
	out := make([]issue, 0, len(skipped))
	for _, s := range skipped {
		out = append(out, issue{Index: s.Index, ID: s.Item.ID(idField), Reason: s.Reason()})
	}
	return out
}
