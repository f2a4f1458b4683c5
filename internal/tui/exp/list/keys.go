package list

import "github.com/charmbracelet/bubbles/v2/key"

// KeyMap holds the list bindings. Select* bindings move the selection and
// bring it into view; Scroll*, Page* and HalfPage* bindings move the
// viewport and drag the selection along only when it leaves the screen.
type KeyMap struct {
	SelectPrev key.Binding
	SelectNext key.Binding
	First      key.Binding
	Last       key.Binding

	ScrollUp     key.Binding
	ScrollDown   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		SelectPrev: key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous item")),
		SelectNext: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next item")),
		First:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first item")),
		Last:       key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last item")),

		ScrollUp:     key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "scroll a line up")),
		ScrollDown:   key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "scroll a line down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("b", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "f"), key.WithHelp("f", "page down")),
		HalfPageUp:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "half page up")),
		HalfPageDown: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "half page down")),
	}
}

// FullHelp implements help.KeyMap, one column for the selection and two for
// scrolling.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SelectPrev, k.SelectNext, k.First, k.Last},
		{k.ScrollUp, k.ScrollDown},
		{k.PageUp, k.PageDown, k.HalfPageUp, k.HalfPageDown},
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SelectNext, k.SelectPrev, k.PageDown}
}
