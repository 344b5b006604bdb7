package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/calgrid/internal/item"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Calendar.ActiveTimeDateField != "start-end" {
		t.Errorf("expected active_time_date_field start-end, got %s", cfg.Calendar.ActiveTimeDateField)
	}
	if cfg.Calendar.MinVisualMinutes != 30 {
		t.Errorf("expected min_visual_minutes 30, got %d", cfg.Calendar.MinVisualMinutes)
	}
	if wd, _ := cfg.WeekStart(); wd != time.Monday {
		t.Errorf("expected week to start on monday, got %s", wd)
	}
	if v, _ := cfg.View(); v != layout.Month {
		t.Errorf("expected month view, got %s", v)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Calendar.WeekStartsOn != "monday" {
		t.Errorf("expected default week_starts_on, got %s", cfg.Calendar.WeekStartsOn)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[calendar]
active_time_date_field = "from - to"
week_starts_on = "0"
timezone = "UTC"
min_visual_minutes = 15

[display]
view = "week-time"

[display.modes.week]
mode = "collapse"
toggled = ["2024-01-10"]

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts, err := cfg.LayoutOptions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Fields != (item.FieldPair{Start: "from", End: "to"}) {
		t.Errorf("expected fields from/to, got %+v", opts.Fields)
	}
	if opts.WeekStartsOn != time.Sunday {
		t.Errorf("expected sunday week start, got %s", opts.WeekStartsOn)
	}
	if opts.Location != time.UTC {
		t.Errorf("expected UTC, got %v", opts.Location)
	}
	if opts.MinDuration != 15 {
		t.Errorf("expected min duration 15, got %d", opts.MinDuration)
	}
	if v, _ := cfg.View(); v != layout.WeekTime {
		t.Errorf("expected week_time view, got %s", v)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}

	modes, err := cfg.DisplayModes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !policy.ShouldCollapse(modes, layout.Week, "2024-01-11") {
		t.Error("week cells should collapse")
	}
	if policy.ShouldCollapse(modes, layout.Week, "2024-01-10") {
		t.Error("toggled week cell should be expanded")
	}
	// Defaults not mentioned in the file are kept.
	if !policy.ShouldCollapse(modes, layout.Month, "2024-01-11") {
		t.Error("month cells should still collapse by default")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[calendar]
week_starts_on = "sunday"
timezone = "UTC"

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("CALGRID_WEEK_STARTS_ON", "saturday")
	t.Setenv("CALGRID_VIEW", "day")
	t.Setenv("CALGRID_MIN_VISUAL_MINUTES", "45")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wd, _ := cfg.WeekStart(); wd != time.Saturday {
		t.Errorf("expected saturday from env, got %s", wd)
	}
	if cfg.Calendar.Timezone != "UTC" {
		t.Errorf("expected timezone UTC from file, got %s", cfg.Calendar.Timezone)
	}
	if cfg.Display.View != "day" {
		t.Errorf("expected view day from env, got %s", cfg.Display.View)
	}
	if cfg.Calendar.MinVisualMinutes != 45 {
		t.Errorf("expected min_visual_minutes 45 from env, got %d", cfg.Calendar.MinVisualMinutes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty field pair", func(c *Config) { c.Calendar.ActiveTimeDateField = "-end" }, item.ErrInvalidFieldPair},
		{"three fields", func(c *Config) { c.Calendar.ActiveTimeDateField = "a-b-c" }, item.ErrInvalidFieldPair},
		{"week start out of range", func(c *Config) { c.Calendar.WeekStartsOn = "7" }, layout.ErrInvalidWeekStart},
		{"unknown weekday", func(c *Config) { c.Calendar.WeekStartsOn = "funday" }, layout.ErrInvalidWeekStart},
		{"unknown view", func(c *Config) { c.Display.View = "year" }, layout.ErrUnknownView},
		{"unknown mode", func(c *Config) {
			c.Display.Modes["month"] = policy.CellDisplay{Mode: "stack"}
		}, policy.ErrUnknownMode},
		{"unknown view in modes", func(c *Config) {
			c.Display.Modes["agenda"] = policy.CellDisplay{Mode: policy.Collapse}
		}, layout.ErrUnknownView},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_Plain(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }},
		{"zero min duration", func(c *Config) { c.Calendar.MinVisualMinutes = 0 }},
		{"min duration over a day", func(c *Config) { c.Calendar.MinVisualMinutes = 1441 }},
		{"zero max occurrences", func(c *Config) { c.Calendar.MaxOccurrences = 0 }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"bad color", func(c *Config) { c.UI.Color = "sometimes" }},
		{"negative cache", func(c *Config) { c.UI.CacheSize = -1 }},
		{"peak start only", func(c *Config) { c.Calendar.PeakHoursStart = "09:00" }},
		{"peak end only", func(c *Config) { c.Calendar.PeakHoursEnd = "12:00" }},
		{"peak start after end", func(c *Config) {
			c.Calendar.PeakHoursStart, c.Calendar.PeakHoursEnd = "14:00", "09:00"
		}},
		{"peak bad format", func(c *Config) {
			c.Calendar.PeakHoursStart, c.Calendar.PeakHoursEnd = "9am", "12:00"
		}},
		{"peak minutes out of range", func(c *Config) {
			c.Calendar.PeakHoursStart, c.Calendar.PeakHoursEnd = "09:00", "12:75"
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test.db", filepath.Join(home, "test.db")},
		{"/absolute/path.db", "/absolute/path.db"},
		{"relative/path.db", "relative/path.db"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got := expandPath(tc.input)
			if got != tc.want {
				t.Errorf("expandPath(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.toml")

	cfg := Default()
	cfg.Calendar.WeekStartsOn = "sunday"
	cfg.Calendar.Timezone = "UTC"
	cfg.Display.View = "week"
	cfg.Display.Modes["week"] = policy.CellDisplay{Mode: policy.Collapse, Toggled: []string{"2024-01-10"}}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Calendar.WeekStartsOn != "sunday" {
		t.Errorf("expected week_starts_on sunday, got %s", loaded.Calendar.WeekStartsOn)
	}
	if loaded.Display.View != "week" {
		t.Errorf("expected view week, got %s", loaded.Display.View)
	}
	week := loaded.Display.Modes["week"]
	if week.Mode != policy.Collapse || len(week.Toggled) != 1 {
		t.Errorf("expected collapsed week with one toggle, got %+v", week)
	}
}

func TestSetDisplayModes(t *testing.T) {
	cfg := Default()
	modes, err := cfg.DisplayModes()
	if err != nil {
		t.Fatalf("DisplayModes() error = %v", err)
	}
	modes = modes.Toggle(layout.Month, "2024-02-14")

	cfg.SetDisplayModes(modes)

	month := cfg.Display.Modes["month"]
	if month.Mode != policy.Collapse || len(month.Toggled) != 1 || month.Toggled[0] != "2024-02-14" {
		t.Errorf("month = %+v, want collapse with one toggle", month)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after SetDisplayModes = %v", err)
	}
}

func TestHasPeakHours(t *testing.T) {
	cfg := Default()
	if cfg.HasPeakHours() {
		t.Error("default config should not have peak hours")
	}
	cfg.Calendar.PeakHoursStart, cfg.Calendar.PeakHoursEnd = "09:00", "12:00"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !cfg.HasPeakHours() {
		t.Error("HasPeakHours() = false after setting both ends")
	}
}
