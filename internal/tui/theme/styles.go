package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style

	StageDone    lipgloss.Style
	StageCurrent lipgloss.Style
	StagePending lipgloss.Style

	Container lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Price     lipgloss.Style

	DiffInsert lipgloss.Style
	DiffDelete lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style
}
