package adwizard

import (
	"strings"

	"github.com/mark3labs/adspot/internal/tui/theme"
)

// renderHintBar renders key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "space", "toggle")
// Returns: "↑↓ navigate • space toggle"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	s := theme.Current().S()

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}

// cursorPrefix marks the highlighted row of a list.
func cursorPrefix(active bool) string {
	if active {
		return theme.Current().S().Cursor.Render("▸ ")
	}
	return "  "
}

func checkbox(on bool) string {
	if on {
		return theme.Current().S().Selected.Render("[x]")
	}
	return "[ ]"
}

func radio(on bool) string {
	if on {
		return theme.Current().S().Selected.Render("(•)")
	}
	return "( )"
}
