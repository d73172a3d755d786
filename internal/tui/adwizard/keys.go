package adwizard

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Quit   key.Binding
	Back   key.Binding
	Next   key.Binding
	Jump   key.Binding
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Focus  key.Binding
	Edit   key.Binding
	Pay    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Back:   key.NewBinding(key.WithKeys("esc", "ctrl+p"), key.WithHelp("esc", "back")),
		Next:   key.NewBinding(key.WithKeys("ctrl+n", "right"), key.WithHelp("→", "next")),
		Jump:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "jump")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "move")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Toggle: key.NewBinding(key.WithKeys("space", "enter"), key.WithHelp("space", "toggle")),
		Focus:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "$EDITOR")),
		Pay:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pay")),
	}
}
