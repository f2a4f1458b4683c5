package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"
)

// KeyMap defines the application wide keyboard bindings.
type KeyMap struct {
	Quit,
	Help,
	Remeasure key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Remeasure: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "remeasure"),
		),
	}
}

func (k KeyMap) KeyBindings() []key.Binding {
	return []key.Binding{
		k.Remeasure,
		k.Help,
		k.Quit,
	}
}

// helpKeys merges the bindings of the focused component with the
// application ones.
type helpKeys struct {
	app       KeyMap
	component interface {
		ShortHelp() []key.Binding
		FullHelp() [][]key.Binding
	}
}

// ShortHelp implements help.KeyMap.
func (h helpKeys) ShortHelp() []key.Binding {
	return append(h.component.ShortHelp(), h.app.Help, h.app.Quit)
}

// FullHelp implements help.KeyMap.
func (h helpKeys) FullHelp() [][]key.Binding {
	return append(h.component.FullHelp(), h.app.KeyBindings())
}
