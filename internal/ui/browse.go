package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/config"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/tui"
)

func (a *App) browseCmd() *cobra.Command {
	var (
		in   inputFlags
		save bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse month and week views interactively",
		Long: `Open an interactive month/week grid.

Move with the arrow keys (or h/j/k/l), expand or collapse the selected
cell with enter, collapse every cell with c and switch between month
and week with v.

With --save the cell display modes are written back to the config file
on exit.

Example:
  calgrid browse -i items.json
  calgrid browse --db --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.resolveView(in)
			if err != nil {
				return err
			}
			modes, err := a.config.DisplayModes()
			if err != nil {
				return err
			}

			final, err := tui.Run(tui.Config{
				View:         req.view,
				Anchor:       req.anchor,
				WeekStartsOn: req.opts.WeekStartsOn,
				Modes:        modes,
				Now:          a.now,
				Load:         a.loader(in, req.opts),
			})
			if err != nil {
				return fmt.Errorf("running browser: %w", err)
			}

			if save {
				a.config.SetDisplayModes(final.Modes())
				if err := a.config.Save(); err != nil {
					return fmt.Errorf("saving config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved display modes to %s\n", config.DefaultConfigPath())
			}
			return nil
		},
	}

	in.register(cmd, "")
	cmd.Flags().BoolVar(&save, "save", false, "Save cell display modes to the config file on exit")
	return cmd
}

// loader returns a tui.Loader reading items through the input flags.
func (a *App) loader(in inputFlags, opts layout.Options) tui.Loader {
	return func(ctx context.Context, view layout.View, anchor time.Time) (layout.Layout, error) {
		start, end := displayedRange(view, anchor, opts.WeekStartsOn)
		items, err := a.loadItems(ctx, in, opts, start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
		if err != nil {
			return layout.Layout{}, err
		}
		return a.prepare(request{view: view, anchor: anchor, start: start, end: end, opts: opts, items: items})
	}
}
