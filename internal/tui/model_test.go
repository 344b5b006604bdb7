package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

type loadCall struct {
	view   layout.View
	anchor time.Time
}

// fakeLoader prepares testItems and records every call.
type fakeLoader struct {
	calls []loadCall
	err   error
}

func (f *fakeLoader) load(_ context.Context, view layout.View, anchor time.Time) (layout.Layout, error) {
	f.calls = append(f.calls, loadCall{view: view, anchor: anchor})
	if f.err != nil {
		return layout.Layout{}, f.err
	}
	return layout.Prepare(view, testItems, testOpts)
}

func newTestModel(t *testing.T, view layout.View, anchor time.Time) (Model, *fakeLoader) {
	t.Helper()
	f := &fakeLoader{}
	m := New(Config{
		View:         view,
		Anchor:       anchor,
		WeekStartsOn: time.Monday,
		Modes:        policy.DisplayModes{layout.Month: {Mode: policy.Collapse}},
		Now:          func() time.Time { return anchor },
		Load:         f.load,
	})
	m = runCmd(t, m, m.Init())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), f
}

// runCmd executes cmd and feeds its message back into the model.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestModel_InitialLoad(t *testing.T) {
	m, f := newTestModel(t, layout.Month, day(2, 14))

	if len(f.calls) != 1 || f.calls[0].view != layout.Month || !f.calls[0].anchor.Equal(day(2, 14)) {
		t.Fatalf("loader calls = %+v", f.calls)
	}
	out := m.View()
	for _, want := range []string{"February 2024", "month · collapse", "Second", "+1"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestModel_NonCellViewStartsOnMonth(t *testing.T) {
	m, f := newTestModel(t, layout.WeekTime, day(2, 14))
	if m.view != layout.Month || f.calls[0].view != layout.Month {
		t.Errorf("view = %v, want month", m.view)
	}
}

func TestModel_MoveWithinPeriod(t *testing.T) {
	m, f := newTestModel(t, layout.Month, day(2, 14))

	m, cmd := press(t, m, runes("l"))
	if cmd != nil {
		t.Errorf("moving inside the month should not reload")
	}
	if !m.Cursor().Equal(day(2, 15)) {
		t.Errorf("cursor = %s, want Feb 15", m.Cursor())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if !m.Cursor().Equal(day(2, 8)) {
		t.Errorf("cursor = %s, want Feb 8", m.Cursor())
	}
	if len(f.calls) != 1 {
		t.Errorf("loader called %d times, want 1", len(f.calls))
	}
}

func TestModel_MoveAcrossPeriodReloads(t *testing.T) {
	m, f := newTestModel(t, layout.Week, day(2, 11))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if cmd == nil {
		t.Fatal("moving into the next week should reload")
	}
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("view should show loading state:\n%s", m.View())
	}
	m = runCmd(t, m, cmd)

	if len(f.calls) != 2 || !f.calls[1].anchor.Equal(day(2, 12)) {
		t.Errorf("loader calls = %+v, want a second call for Feb 12", f.calls)
	}
	if !strings.Contains(m.View(), "WEEK: Mon Feb 12 - Sun Feb 18, 2024") {
		t.Errorf("view should show the new week:\n%s", m.View())
	}
}

func TestModel_NextPeriodClampsDay(t *testing.T) {
	m, _ := newTestModel(t, layout.Month, day(1, 31))

	m, cmd := press(t, m, runes("n"))
	if cmd == nil {
		t.Fatal("next period should reload")
	}
	if !m.Cursor().Equal(day(2, 29)) {
		t.Errorf("cursor = %s, want Feb 29", m.Cursor())
	}

	m, _ = press(t, m, runes("p"))
	if !m.Cursor().Equal(day(1, 29)) {
		t.Errorf("cursor = %s, want Jan 29", m.Cursor())
	}
}

func TestModel_StaleLoadIgnored(t *testing.T) {
	m, _ := newTestModel(t, layout.Week, day(2, 14))

	stale := loadedMsg{view: layout.Week, anchor: day(1, 1), err: errors.New("stale")}
	updated, _ := m.Update(stale)
	m = updated.(Model)
	if m.err != nil {
		t.Errorf("stale result applied: %v", m.err)
	}
}

func TestModel_LoadError(t *testing.T) {
	f := &fakeLoader{err: errors.New("no such file")}
	m := New(Config{View: layout.Week, Anchor: day(2, 14), Load: f.load})
	m = runCmd(t, m, m.Init())

	if !strings.Contains(m.View(), "Error: no such file") {
		t.Errorf("view should show the error:\n%s", m.View())
	}
}

func TestModel_ToggleCell(t *testing.T) {
	m, _ := newTestModel(t, layout.Month, day(2, 14))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	out := m.View()
	if !strings.Contains(out, "First") || !strings.Contains(out, "Second") {
		t.Errorf("toggled cell should draw every item:\n%s", out)
	}
	if got := m.Modes()[layout.Month].Toggled; len(got) != 1 || got[0] != "2024-02-14" {
		t.Errorf("toggled = %v, want [2024-02-14]", got)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if strings.Contains(m.View(), "First") {
		t.Errorf("second toggle should collapse the cell again:\n%s", m.View())
	}
}

func TestModel_ModeFlipDoesNotShareState(t *testing.T) {
	modes := policy.DisplayModes{layout.Month: {Mode: policy.Collapse}}
	m := New(Config{View: layout.Month, Anchor: day(2, 14), Modes: modes, Load: (&fakeLoader{}).load})

	m, _ = press(t, m, runes("c"))
	if m.Modes()[layout.Month].Mode != policy.ShowAll {
		t.Errorf("mode = %q, want show_all", m.Modes()[layout.Month].Mode)
	}
	if modes[layout.Month].Mode != policy.Collapse {
		t.Errorf("caller's modes were modified")
	}
}

func TestModel_SwitchView(t *testing.T) {
	m, f := newTestModel(t, layout.Month, day(2, 14))

	m, cmd := press(t, m, runes("v"))
	m = runCmd(t, m, cmd)

	if m.view != layout.Week {
		t.Errorf("view = %v, want week", m.view)
	}
	if len(f.calls) != 2 || f.calls[1].view != layout.Week {
		t.Errorf("loader calls = %+v, want a week load", f.calls)
	}
	if !strings.Contains(m.View(), "week · show_all") {
		t.Errorf("view should show the week mode:\n%s", m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, layout.Month, day(2, 14))

	_, cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q should quit")
	}
}
