package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	GoalUp    key.Binding
	GoalDown  key.Binding
	Tag       key.Binding
	Todo      key.Binding
	SortWork  key.Binding
	SortBreak key.Binding
	Theme     key.Binding
	Clear     key.Binding
	Review    key.Binding
	Export    key.Binding
	Help      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/stop"),
	),
	GoalUp: key.NewBinding(
		key.WithKeys("up", "+", "="),
		key.WithHelp("↑/+", "goal +30m"),
	),
	GoalDown: key.NewBinding(
		key.WithKeys("down", "-", "_"),
		key.WithHelp("↓/-", "goal -30m"),
	),
	Tag: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tag"),
	),
	Todo: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new todo"),
	),
	SortWork: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "sort tags"),
	),
	SortBreak: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "sort breaks"),
	),
	Theme: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "theme"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear day"),
	),
	Review: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "review"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "todo up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j"),
		key.WithHelp("j", "todo down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Tag, k.Review, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Tag, k.Todo},
		{k.GoalUp, k.GoalDown, k.Clear},
		{k.SortWork, k.SortBreak, k.Theme, k.Export},
		{k.Review, k.Up, k.Down, k.Back, k.Quit},
	}
}
