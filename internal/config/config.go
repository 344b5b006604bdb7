// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

// Config holds the application configuration.
type Config struct {
	Calendar CalendarConfig `toml:"calendar"`
	Display  DisplayConfig  `toml:"display"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
}

// CalendarConfig says how items are read and where weeks begin.
type CalendarConfig struct {
	ActiveTimeDateField string `toml:"active_time_date_field"` // e.g., "start-end"
	IDField             string `toml:"id_field"`
	WeekStartsOn        string `toml:"week_starts_on"`     // weekday name or 0-6
	Timezone            string `toml:"timezone"`           // IANA name, "Local" or "UTC"
	MinVisualMinutes    int    `toml:"min_visual_minutes"` // height of point events
	RuleField           string `toml:"rrule_field"`
	MaxOccurrences      int    `toml:"max_occurrences"`
	PeakHoursStart      string `toml:"peak_hours_start"` // e.g., "09:00" (optional)
	PeakHoursEnd        string `toml:"peak_hours_end"`   // e.g., "12:00" (optional)
}

// DisplayConfig holds the default view and per-view cell display modes.
type DisplayConfig struct {
	View  string                        `toml:"view"`
	Modes map[string]policy.CellDisplay `toml:"modes"` // keyed by view name
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds terminal output settings.
type UIConfig struct {
	Color     string `toml:"color"` // "auto", "always", "never"
	CacheSize int    `toml:"cache_size"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{
			ActiveTimeDateField: "start-end",
			IDField:             item.DefaultIDField,
			WeekStartsOn:        "monday",
			Timezone:            "Local",
			MinVisualMinutes:    30,
			RuleField:           "rrule",
			MaxOccurrences:      5000,
		},
		Display: DisplayConfig{
			View: layout.Month.String(),
			Modes: map[string]policy.CellDisplay{
				layout.Month.String(): {Mode: policy.Collapse},
				layout.Week.String():  {Mode: policy.ShowAll},
			},
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Color:     "auto",
			CacheSize: 16,
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "calgrid.db"
	}
	return filepath.Join(home, ".local", "share", "calgrid", "calgrid.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "calgrid", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CALGRID_ACTIVE_TIME_DATE_FIELD"); v != "" {
		cfg.Calendar.ActiveTimeDateField = v
	}
	if v := os.Getenv("CALGRID_ID_FIELD"); v != "" {
		cfg.Calendar.IDField = v
	}
	if v := os.Getenv("CALGRID_WEEK_STARTS_ON"); v != "" {
		cfg.Calendar.WeekStartsOn = v
	}
	if v := os.Getenv("CALGRID_TIMEZONE"); v != "" {
		cfg.Calendar.Timezone = v
	}
	if v := os.Getenv("CALGRID_MIN_VISUAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Calendar.MinVisualMinutes = n
		}
	}

	if v := os.Getenv("CALGRID_PEAK_HOURS_START"); v != "" {
		cfg.Calendar.PeakHoursStart = v
	}
	if v := os.Getenv("CALGRID_PEAK_HOURS_END"); v != "" {
		cfg.Calendar.PeakHoursEnd = v
	}

	if v := os.Getenv("CALGRID_VIEW"); v != "" {
		cfg.Display.View = v
	}

	if v := os.Getenv("CALGRID_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("CALGRID_COLOR"); v != "" {
		cfg.UI.Color = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Fields(); err != nil {
		return err
	}
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Calendar.MinVisualMinutes < 1 || c.Calendar.MinVisualMinutes > dateutil.MinutesPerDay {
		return fmt.Errorf("min_visual_minutes must be between 1 and %d, got %d", dateutil.MinutesPerDay, c.Calendar.MinVisualMinutes)
	}
	if c.Calendar.MaxOccurrences < 1 {
		return errors.New("max_occurrences must be positive")
	}
	hasStart := c.Calendar.PeakHoursStart != ""
	hasEnd := c.Calendar.PeakHoursEnd != ""
	if hasStart != hasEnd {
		return errors.New("both peak_hours_start and peak_hours_end must be set, or neither")
	}
	if hasStart {
		if err := validateTime(c.Calendar.PeakHoursStart, "peak_hours_start"); err != nil {
			return err
		}
		if err := validateTime(c.Calendar.PeakHoursEnd, "peak_hours_end"); err != nil {
			return err
		}
		if c.Calendar.PeakHoursStart >= c.Calendar.PeakHoursEnd {
			return errors.New("peak_hours_start must be before peak_hours_end")
		}
	}
	if _, err := c.View(); err != nil {
		return err
	}
	if _, err := c.DisplayModes(); err != nil {
		return err
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	switch c.UI.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.UI.Color)
	}
	if c.UI.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	return nil
}

func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' || !isDigits(t[0:2]) || !isDigits(t[3:5]) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if (t[0:2] > "23" && t != "24:00") || t[3:5] > "59" {
		return fmt.Errorf("%s is not a time of day, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// HasPeakHours returns true if peak hours are configured.
func (c *Config) HasPeakHours() bool {
	return c.Calendar.PeakHoursStart != "" && c.Calendar.PeakHoursEnd != ""
}

// Fields returns the parsed active_time_date_field.
func (c *Config) Fields() (item.FieldPair, error) {
	return item.ParseFieldPair(c.Calendar.ActiveTimeDateField)
}

// WeekStart returns week_starts_on as a weekday. Both names and 0-6 work.
func (c *Config) WeekStart() (time.Weekday, error) {
	s := strings.TrimSpace(c.Calendar.WeekStartsOn)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("%w: got %d", layout.ErrInvalidWeekStart, n)
		}
		return time.Weekday(n), nil
	}
	if wd, ok := dateutil.ParseWeekday(s); ok {
		return wd, nil
	}
	return 0, fmt.Errorf("%w: got %q", layout.ErrInvalidWeekStart, s)
}

// Location returns the display time zone.
func (c *Config) Location() (*time.Location, error) {
	switch tz := strings.TrimSpace(c.Calendar.Timezone); tz {
	case "", "Local", "local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		return loc, nil
	}
}

// View returns the default view.
func (c *Config) View() (layout.View, error) {
	return layout.ParseView(c.Display.View)
}

// DisplayModes returns the per-view cell display modes.
func (c *Config) DisplayModes() (policy.DisplayModes, error) {
	modes := make(policy.DisplayModes, len(c.Display.Modes))
	for name, cd := range c.Display.Modes {
		view, err := layout.ParseView(name)
		if err != nil {
			return nil, fmt.Errorf("display modes: %w", err)
		}
		mode, err := policy.ParseDisplayMode(string(cd.Mode))
		if err != nil {
			return nil, fmt.Errorf("display modes for %s: %w", view, err)
		}
		modes[view] = policy.CellDisplay{Mode: mode, Toggled: cd.Toggled}
	}
	return modes, nil
}

// SetDisplayModes stores modes under their view names.
func (c *Config) SetDisplayModes(modes policy.DisplayModes) {
	c.Display.Modes = make(map[string]policy.CellDisplay, len(modes))
	for view, cd := range modes {
		c.Display.Modes[view.String()] = policy.CellDisplay{Mode: cd.Mode, Toggled: slices.Clone(cd.Toggled)}
	}
}

// LayoutOptions builds the options of a preparation pass.
func (c *Config) LayoutOptions() (layout.Options, error) {
	fields, err := c.Fields()
	if err != nil {
		return layout.Options{}, err
	}
	wso, err := c.WeekStart()
	if err != nil {
		return layout.Options{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return layout.Options{}, err
	}
	return layout.Options{
		Fields:       fields,
		WeekStartsOn: wso,
		Location:     loc,
		MinDuration:  c.Calendar.MinVisualMinutes,
		IDField:      c.Calendar.IDField,
	}, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
