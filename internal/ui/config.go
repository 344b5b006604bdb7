package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/calgrid/internal/config"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  calgrid config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(path, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config file (default "+config.DefaultConfigPath()+")")
	return cmd
}

func runConfigInteractive(configPath string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Calendar.ActiveTimeDateField = promptValue(reader, out, "Active time field pair (start-end)", cfg.Calendar.ActiveTimeDateField)
	cfg.Calendar.IDField = promptValue(reader, out, "ID field", cfg.Calendar.IDField)
	cfg.Calendar.WeekStartsOn = promptValue(reader, out, "Week starts on (weekday or 0-6)", cfg.Calendar.WeekStartsOn)
	cfg.Calendar.Timezone = promptValue(reader, out, "Timezone (IANA name, Local or UTC)", cfg.Calendar.Timezone)
	cfg.Calendar.MinVisualMinutes = promptInt(reader, out, "Minimum visual minutes", cfg.Calendar.MinVisualMinutes)
	cfg.Display.View = promptChoice(reader, out, "Default view", cfg.Display.View, viewNames())
	for _, name := range []string{layout.Month.String(), layout.Week.String()} {
		cd := cfg.Display.Modes[name]
		label := fmt.Sprintf("Cell display for %s", name)
		current := string(cd.Mode)
		if current == "" {
			current = string(policy.ShowAll)
		}
		cd.Mode = policy.DisplayMode(promptChoice(reader, out, label, current, []string{string(policy.ShowAll), string(policy.Collapse)}))
		if cfg.Display.Modes == nil {
			cfg.Display.Modes = make(map[string]policy.CellDisplay)
		}
		cfg.Display.Modes[name] = cd
	}
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.UI.Color = promptChoice(reader, out, "Color", cfg.UI.Color, []string{"auto", "always", "never"})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[calendar]")
	fmt.Fprintf(out, "  active_time_date_field = %s\n", cfg.Calendar.ActiveTimeDateField)
	fmt.Fprintf(out, "  id_field               = %s\n", cfg.Calendar.IDField)
	fmt.Fprintf(out, "  week_starts_on         = %s\n", cfg.Calendar.WeekStartsOn)
	fmt.Fprintf(out, "  timezone               = %s\n", cfg.Calendar.Timezone)
	fmt.Fprintf(out, "  min_visual_minutes     = %d\n", cfg.Calendar.MinVisualMinutes)
	fmt.Fprintf(out, "  rrule_field            = %s\n", cfg.Calendar.RuleField)
	fmt.Fprintf(out, "  max_occurrences        = %d\n", cfg.Calendar.MaxOccurrences)
	if cfg.HasPeakHours() {
		fmt.Fprintf(out, "  peak_hours             = %s - %s\n", cfg.Calendar.PeakHoursStart, cfg.Calendar.PeakHoursEnd)
	}
	fmt.Fprintln(out, "\n[display]")
	fmt.Fprintf(out, "  view                   = %s\n", cfg.Display.View)
	names := make([]string, 0, len(cfg.Display.Modes))
	for name := range cfg.Display.Modes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		cd := cfg.Display.Modes[name]
		fmt.Fprintf(out, "  modes.%-16s = %s", name, cd.Mode)
		if len(cd.Toggled) > 0 {
			fmt.Fprintf(out, " (toggled: %s)", strings.Join(cd.Toggled, ", "))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path                = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  color                  = %s\n", cfg.UI.Color)
	fmt.Fprintf(out, "  cache_size             = %d\n", cfg.UI.CacheSize)
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, out, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(out, "  Invalid number %q.\n", value)
	}
}

func promptChoice(reader *bufio.Reader, out io.Writer, label, current string, options []string) string {
	joined := strings.Join(options, ", ")
	label = fmt.Sprintf("%s (%s)", label, joined)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if slices.Contains(options, value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid value %q. Available: %s\n", value, joined)
		if value == strings.ToLower(current) {
			// Reader exhausted and the current value is invalid.
			return current
		}
	}
}

func viewNames() []string {
	views := layout.Views()
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.String())
	}
	return names
}
