// Package tui draws prepared calendar layouts in the terminal and provides
// an interactive browser over them.
package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/javiermolinar/calgrid/internal/dateutil"
	"github.com/javiermolinar/calgrid/internal/layout"
	"github.com/javiermolinar/calgrid/internal/policy"
)

var (
	gridBorderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	gridHeaderStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	gridCellStyle    = lipgloss.NewStyle().Padding(0, 1)
	gridTodayStyle   = gridCellStyle.Bold(true)
	gridOutsideStyle = gridCellStyle.Faint(true)
	gridCursorStyle  = gridCellStyle.Reverse(true)
	hiddenCountStyle = lipgloss.NewStyle().Faint(true)
)

// GridState holds the data needed to draw a month or week grid.
type GridState struct {
	Dates     []dateutil.DateInfo
	Buckets   layout.BucketMap
	Policy    policy.Policy
	CellWidth int
	Cursor    string // key of the highlighted cell, "" for none
}

// Label returns the title of an occurrence, falling back to its ID.
func Label(p layout.PositionedItem) string {
	if t := p.Item.Title(); t != "" {
		return t
	}
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("#%d", p.Index)
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// CellWidth returns the content width of one of seven columns in a grid
// drawn width columns wide.
func CellWidth(width int) int {
	// 8 border runes, 2 padding runes per cell
	return max((width-8)/7-2, 6)
}

// PeriodTitle names the period of view that contains anchor.
func PeriodTitle(view layout.View, anchor time.Time, weekStartsOn time.Weekday) string {
	if view == layout.Month {
		return anchor.Format("January 2006")
	}
	ws, we := dateutil.WeekRange(anchor, weekStartsOn)
	return fmt.Sprintf("WEEK: %s - %s", ws.Format("Mon Jan 2"), we.Format("Mon Jan 2, 2006"))
}

// PeriodDates returns the cells drawn for view around anchor.
func PeriodDates(view layout.View, anchor time.Time, weekStartsOn time.Weekday, now time.Time) []dateutil.DateInfo {
	if view == layout.Month {
		return dateutil.MonthDates(anchor, weekStartsOn, now)
	}
	return dateutil.WeekDates(anchor, weekStartsOn, now)
}

// weekdayHeaders returns the short weekday names starting at weekStartsOn.
func weekdayHeaders(weekStartsOn time.Weekday) []string {
	headers := make([]string, 0, 7)
	for i := range 7 {
		headers = append(headers, time.Weekday((int(weekStartsOn)+i)%7).String()[:3])
	}
	return headers
}

// RenderGrid draws the cells of a month or week as a table, one row per week.
func RenderGrid(state GridState) string {
	var (
		rows   [][]string
		styles [][]lipgloss.Style
	)
	for i := 0; i < len(state.Dates); i += 7 {
		week := state.Dates[i:min(i+7, len(state.Dates))]
		row := make([]string, 0, len(week))
		rowStyles := make([]lipgloss.Style, 0, len(week))
		for _, info := range week {
			row = append(row, renderCell(info, state))
			rowStyles = append(rowStyles, cellStyle(info, state))
		}
		rows = append(rows, row)
		styles = append(styles, rowStyles)
	}

	width := state.CellWidth + 2
	t := table.New().
		Headers(weekdayHeaders(state.Policy.WeekStartsOn)...).
		Border(lipgloss.RoundedBorder()).
		BorderRow(true).
		BorderColumn(true).
		BorderStyle(gridBorderStyle).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return gridHeaderStyle.Width(width)
			}
			if row < 0 || row >= len(styles) || col < 0 || col >= len(styles[row]) {
				return gridCellStyle.Width(width)
			}
			return styles[row][col].Width(width)
		})
	return t.Render()
}

func cellStyle(info dateutil.DateInfo, state GridState) lipgloss.Style {
	switch {
	case state.Cursor != "" && info.Date == state.Cursor:
		return gridCursorStyle
	case info.IsCurrentDay:
		return gridTodayStyle
	case !info.IsCurrentMonth && state.Policy.View == layout.Month:
		return gridOutsideStyle
	default:
		return gridCellStyle
	}
}

// renderCell returns the lines drawn in one cell: the day number followed by
// the occurrences the display policy keeps.
func renderCell(info dateutil.DateInfo, state GridState) string {
	key := dateutil.CellKey(info, nil)
	lines := []string{strconv.Itoa(info.Day)}

	if n := len(state.Buckets[key]); n > 1 && state.Policy.Collapsed(key) {
		lines[0] += " " + hiddenCountStyle.Render(fmt.Sprintf("+%d", n-1))
	}

	for _, r := range state.Policy.Visible(key, state.Buckets) {
		prefix := ""
		if !r.Item.IsStart {
			prefix = "◀"
		}
		suffix := ""
		if r.Span > 1 {
			suffix = " →" + strconv.Itoa(r.Span)
		}
		room := state.CellWidth - lipgloss.Width(prefix) - lipgloss.Width(suffix)
		lines = append(lines, prefix+Truncate(Label(r.Item), room)+suffix)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
