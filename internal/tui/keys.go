package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Translate    key.Binding
	Up           key.Binding
	Down         key.Binding
	Delete       key.Binding
	Save         key.Binding
	Swap         key.Binding
	CycleSource  key.Binding
	CycleTarget  key.Binding
	SwitchScreen key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Translate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "translate"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save to notes"),
		),
		Swap: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "swap languages"),
		),
		CycleSource: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "source language"),
		),
		CycleTarget: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "target language"),
		),
		SwitchScreen: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch screen"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Translate, k.SwitchScreen, k.Save, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Translate, k.Up, k.Down},
		{k.Swap, k.CycleSource, k.CycleTarget},
		{k.Save, k.Delete, k.SwitchScreen},
		{k.Help, k.Quit},
	}
}
