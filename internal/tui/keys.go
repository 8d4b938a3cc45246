package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Deal      key.Binding
	Hit       key.Binding
	Stand     key.Binding
	Double    key.Binding
	Split     key.Binding
	Surrender key.Binding
	Insure    key.Binding
	NoInsure  key.Binding

	AutoPlay key.Binding
	Pause    key.Binding
	Faster   key.Binding
	Slower   key.Binding

	Hint    key.Binding
	Count   key.Binding
	Stats   key.Binding
	System  key.Binding
	Preset  key.Binding
	NewGame key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Deal:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "bet/deal/next")),
		Hit:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hit")),
		Stand:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stand")),
		Double:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "double")),
		Split:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "split")),
		Surrender: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "surrender")),
		Insure:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "insure")),
		NoInsure:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no insurance")),

		AutoPlay: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "AI on/off")),
		Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause AI")),
		Faster:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),

		Hint:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "strategy hint")),
		Count:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "count")),
		Stats:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "statistics")),
		System:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "counting system")),
		Preset:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "rules preset")),
		NewGame: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new session")),

		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll log")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll log")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Deal, k.Hit, k.Stand, k.Double, k.Split, k.AutoPlay, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Deal, k.Hit, k.Stand, k.Double, k.Split, k.Surrender, k.Insure, k.NoInsure},
		{k.AutoPlay, k.Pause, k.Faster, k.Slower},
		{k.Hint, k.Count, k.Stats, k.System, k.Preset, k.NewGame},
		{k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}
