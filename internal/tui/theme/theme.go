package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Diff colors
	DiffInsert string
	DiffDelete string

	styles     *Styles
	stylesOnce sync.Once
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the active theme.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewCatppuccinMocha()
	})
	return current
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		StageDone: lipgloss.NewStyle().
			Foreground(c(t.Success)),
		StageCurrent: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Primary)).
			Bold(true).
			Padding(0, 1),
		StagePending: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Secondary)).
			Padding(1, 2),
		Cursor: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(c(t.Success)),
		Muted: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		Text: lipgloss.NewStyle().
			Foreground(c(t.FgBase)),
		Error: lipgloss.NewStyle().
			Foreground(c(t.Error)).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(c(t.Warning)),
		Price: lipgloss.NewStyle().
			Foreground(c(t.Tertiary)).
			Bold(true),
		DiffInsert: lipgloss.NewStyle().
			Foreground(c(t.DiffInsert)),
		DiffDelete: lipgloss.NewStyle().
			Foreground(c(t.DiffDelete)),
		HintKey: lipgloss.NewStyle().
			Foreground(c(t.FgSubtle)).
			Bold(true),
		HintDesc: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)),
		HintSeparator: lipgloss.NewStyle().
			Foreground(c(t.BgSurface1)),
		ButtonNormal: lipgloss.NewStyle().
			Foreground(c(t.FgBase)).
			Background(c(t.BgSurface0)).
			Padding(0, 2).
			Margin(0, 1),
		ButtonDisabled: lipgloss.NewStyle().
			Foreground(c(t.FgMuted)).
			Background(c(t.BgMantle)).
			Padding(0, 2).
			Margin(0, 1),
		ButtonFocused: lipgloss.NewStyle().
			Foreground(c(t.BgBase)).
			Background(c(t.Secondary)).
			Bold(true).
			Padding(0, 2).
			Margin(0, 1),
	}
}
