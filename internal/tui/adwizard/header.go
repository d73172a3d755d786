package adwizard

import (
	"fmt"
	"strings"

	"github.com/mark3labs/adspot/internal/tui/theme"
	"github.com/mark3labs/adspot/internal/wizard"
)

// renderHeader draws the title and the stage indicator. Completed stages are
// checked, the current one is highlighted.
func renderHeader(title string, current wizard.Stage) string {
	s := theme.Current().S()

	parts := make([]string, 0, len(wizard.Stages()))
	for _, st := range wizard.Stages() {
		label := fmt.Sprintf("%d %s", st.Index()+1, st)
		switch {
		case st < current:
			parts = append(parts, s.StageDone.Render("✓ "+label))
		case st == current:
			parts = append(parts, s.StageCurrent.Render(label))
		default:
			parts = append(parts, s.StagePending.Render(label))
		}
	}
	sep := s.Muted.Render(" ─ ")
	return s.HeaderTitle.Render(title) + "\n" + strings.Join(parts, sep)
}
