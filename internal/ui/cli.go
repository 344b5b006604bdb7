package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/config"
	"github.com/javiermolinar/calgrid/internal/layout"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config *config.Config
	cache  *layout.Cache
	log    *DebugLogger
	root   *cobra.Command
	debug  bool // Enable debug logging
	now    func() time.Time
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{
		config: cfg,
		cache:  layout.NewCache(cfg.UI.CacheSize),
		now:    time.Now,
	}

	a.root = &cobra.Command{
		Use:   "calgrid",
		Short: "Lay out calendar items for month, week and day views",
		Long: `Calgrid turns a collection of time-stamped items into render-ready
calendar layouts: day buckets, multi-day spans, overlap columns and
week header segments.

Items come from JSON, YAML or iCalendar files, or from the local
SQLite store filled with 'calgrid import'.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			applyColorMode(a.config.UI.Color)
			if a.debug && a.log == nil {
				l, err := OpenDebugLog(DebugLogPath)
				if err != nil {
					return err
				}
				a.log = l
			}
			return nil
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+DebugLogPath+")")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.prepareCmd())
	a.root.AddCommand(a.headerCmd())
	a.root.AddCommand(a.summaryCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.browseCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "calgrid %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases resources held by the application.
func (a *App) Close() error {
	return a.log.Close()
}
