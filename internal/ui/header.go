package ui

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/header"
	"github.com/javiermolinar/calgrid/internal/layout"
)

func (a *App) headerCmd() *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "header",
		Short: "Show the multi-day header row of a week",
		Long: `Show the multi-day items of the week containing --date, with the
grid columns each one covers.

A ◀ marks an item that started before the week, a ▶ one that continues
after it.

Example:
  calgrid header -i trips.yaml -d next-week`,
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

			ws, we := dateutil.WeekRange(req.anchor, req.opts.WeekStartsOn)
			entries := header.ForWeek(req.anchor, req.opts.WeekStartsOn, l.Header)
			PrintHeaderSpans(cmd.OutOrStdout(), ws, we, entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.path, "input", "i", "", "Item file (.json, .yaml, .yml, .ics)")
	cmd.Flags().BoolVar(&in.useDB, "db", false, "Read items from the SQLite store")
	cmd.Flags().BoolVar(&in.expand, "expand", true, "Expand recurring items")
	cmd.Flags().StringVarP(&in.date, "date", "d", "", "Anchor date (today, tomorrow, next-week, monday, YYYY-MM-DD)")
	return cmd
}
