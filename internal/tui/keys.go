package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New       key.Binding
	Open      key.Binding
	Delete    key.Binding
	All       key.Binding
	PrevProj  key.Binding
	NextProj  key.Binding
	Dashboard key.Binding
	Section   key.Binding
	Left      key.Binding
	Right     key.Binding
	Toggle    key.Binding
	Tasks     key.Binding
	Team      key.Binding
	Settings  key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new project")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Delete:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete project")),
		All:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all projects")),
		PrevProj:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev project")),
		NextProj:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next project")),
		Dashboard: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "project dashboard")),
		Section:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "open section")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "browse sections")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle complete")),
		Tasks:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tasks")),
		Team:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "team")),
		Settings:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Open, k.Section, k.Toggle, k.Back, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Open, k.Delete, k.All, k.PrevProj, k.NextProj},
		{k.Dashboard, k.Section, k.Left, k.Toggle},
		{k.Tasks, k.Team, k.Settings, k.Back, k.Help, k.Quit},
	}
}
