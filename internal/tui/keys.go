package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPeriod key.Binding
	NextPeriod key.Binding
	Today      key.Binding
	Toggle     key.Binding
	Mode       key.Binding
	SwitchView key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Left:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		Right:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "prev week")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "next week")),
		PrevPeriod: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev period")),
		NextPeriod: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next period")),
		Today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "expand/collapse cell")),
		Mode:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all/none")),
		SwitchView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "month/week")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.SwitchView, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevPeriod, k.NextPeriod, k.Today},
		{k.Toggle, k.Mode, k.SwitchView},
		{k.Help, k.Quit},
	}
}
