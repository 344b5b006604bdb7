package tui

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Loader prepares the layout of view for the period containing anchor.
type Loader func(ctx context.Context, view layout.View, anchor time.Time) (layout.Layout, error)

// Config configures a browser Model.
type Config struct {
	View         layout.View // Month or Week; other views start on Month
	Anchor       time.Time
	WeekStartsOn time.Weekday
	Modes        policy.DisplayModes
	Now          func() time.Time
	Load         Loader
}

// loadedMsg carries a finished preparation pass.
type loadedMsg struct {
	view   layout.View
	anchor time.Time
	layout layout.Layout
	err    error
}

// Model is the interactive month/week browser.
type Model struct {
	load Loader
	now  func() time.Time
	wso  time.Weekday

	view   layout.View
	anchor time.Time // anchor of the period being displayed
	cursor time.Time
	modes  policy.DisplayModes

	layout  layout.Layout
	loading bool
	err     error

	width int
	keys  keyMap
	help  help.Model
}

// New creates a browser positioned on cfg.Anchor.
func New(cfg Config) Model {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	modes := cfg.Modes
	if modes == nil {
		modes = policy.DisplayModes{}
	}
	view := cfg.View
	if !view.IsCellView() {
		view = layout.Month
	}
	anchor := dateutil.TruncateToDay(cfg.Anchor)

	return Model{
		load:    cfg.Load,
		now:     now,
		wso:     cfg.WeekStartsOn,
		view:    view,
		anchor:  anchor,
		cursor:  anchor,
		modes:   modes,
		loading: true,
		width:   80,
		keys:    newKeyMap(),
		help:    help.New(),
	}
}

// Init loads the first period.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	view, anchor, load := m.view, m.anchor, m.load
	return func() tea.Msg {
		l, err := load(context.Background(), view, anchor)
		return loadedMsg{view: view, anchor: anchor, layout: l, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case loadedMsg:
		// Results for a period the user already left are dropped.
		if msg.view != m.view || !msg.anchor.Equal(m.anchor) {
			return m, nil
		}
		m.layout, m.err, m.loading = msg.layout, msg.err, false
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		return m.moveTo(m.cursor.AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.Right):
		return m.moveTo(m.cursor.AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Up):
		return m.moveTo(m.cursor.AddDate(0, 0, -7))
	case key.Matches(msg, m.keys.Down):
		return m.moveTo(m.cursor.AddDate(0, 0, 7))
	case key.Matches(msg, m.keys.PrevPeriod):
		return m.moveTo(m.shiftPeriod(-1))
	case key.Matches(msg, m.keys.NextPeriod):
		return m.moveTo(m.shiftPeriod(1))
	case key.Matches(msg, m.keys.Today):
		return m.moveTo(m.now().In(m.cursor.Location()))
	case key.Matches(msg, m.keys.Toggle):
		m.modes = m.modes.Toggle(m.view, dateutil.DayKey(m.cursor))
	case key.Matches(msg, m.keys.Mode):
		m.modes = maps.Clone(m.modes)
		cd := m.modes[m.view]
		if cd.Mode == policy.Collapse {
			cd.Mode = policy.ShowAll
		} else {
			cd.Mode = policy.Collapse
		}
		m.modes[m.view] = cd
	case key.Matches(msg, m.keys.SwitchView):
		if m.view == layout.Month {
			m.view = layout.Week
		} else {
			m.view = layout.Month
		}
		return m.reload()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// moveTo moves the cursor and loads a new period when it leaves the current one.
func (m Model) moveTo(day time.Time) (tea.Model, tea.Cmd) {
	m.cursor = dateutil.TruncateToDay(day)
	if m.samePeriod(m.cursor, m.anchor) {
		return m, nil
	}
	return m.reload()
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.anchor = m.cursor
	m.loading = true
	m.err = nil
	return m, m.loadCmd()
}

func (m Model) samePeriod(a, b time.Time) bool {
	if m.view == layout.Month {
		return a.Year() == b.Year() && a.Month() == b.Month()
	}
	return dateutil.StartOfWeek(a, m.wso).Equal(dateutil.StartOfWeek(b, m.wso))
}

// shiftPeriod returns the cursor moved n months (month view) or weeks.
func (m Model) shiftPeriod(n int) time.Time {
	if m.view != layout.Month {
		return m.cursor.AddDate(0, 0, 7*n)
	}
	first := time.Date(m.cursor.Year(), m.cursor.Month()+time.Month(n), 1, 0, 0, 0, 0, m.cursor.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(m.cursor.Day(), last)-1)
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	mode := m.modes[m.view].Mode
	if mode == "" {
		mode = policy.ShowAll
	}
	b.WriteString(titleStyle.Render(PeriodTitle(m.view, m.anchor, m.wso)))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", m.view, mode)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.loading:
		b.WriteString("Loading...\n")
	default:
		b.WriteString(RenderGrid(GridState{
			Dates:   PeriodDates(m.view, m.anchor, m.wso, m.now().In(m.anchor.Location())),
			Buckets: m.layout.Buckets,
			Policy: policy.Policy{
				View:         m.view,
				Modes:        m.modes,
				Anchor:       m.anchor,
				WeekStartsOn: m.wso,
			},
			CellWidth: CellWidth(m.width),
			Cursor:    dateutil.DayKey(m.cursor),
		}))
		b.WriteString("\n")
		if n := len(m.layout.Skipped); n > 0 {
			b.WriteString(warningStyle.Render(fmt.Sprintf("%d items skipped", n)))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Cursor returns the selected day.
func (m Model) Cursor() time.Time {
	return m.cursor
}

// Modes returns the current cell display modes.
func (m Model) Modes() policy.DisplayModes {
	return m.modes
}

// Run starts the browser on the terminal.
func Run(cfg Config) (Model, error) {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	m, _ := final.(Model)
	return m, nil
}
