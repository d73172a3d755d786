package adwizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/adspot/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonDisabled
	ButtonFocused
)

// Button is a single entry of a ButtonBar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar renders a centered row of buttons.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{buttons: buttons, width: 60}
}

// SetWidth updates the width the bar centers within.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the bar.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}
	s := theme.Current().S()

	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}
	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}

// backNextButtons builds the Back/Next pair. The next button is focused when
// enabled so the primary action stands out.
func backNextButtons(backEnabled, nextEnabled bool, nextLabel string) []Button {
	back := ButtonNormal
	if !backEnabled {
		back = ButtonDisabled
	}
	next := ButtonFocused
	if !nextEnabled {
		next = ButtonDisabled
	}
	return []Button{
		{Label: "← Back", State: back},
		{Label: nextLabel, State: next},
	}
}
