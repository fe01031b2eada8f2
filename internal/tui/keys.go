package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Low    key.Binding
	Medium key.Binding
	High   key.Binding
	Auto   key.Binding
	Reset  key.Binding
	Theme  key.Binding
	Stats  key.Binding
	Record key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Low:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "low")),
	Medium: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "medium")),
	High:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "high")),
	Auto:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto quality")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset faulted")),
	Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Stats:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stats")),
	Record: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "record gif")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Auto, k.Theme, k.Stats, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Low, k.Medium, k.High, k.Auto},
		{k.Reset, k.Theme, k.Stats, k.Record},
		{k.Help, k.Quit},
	}
}
