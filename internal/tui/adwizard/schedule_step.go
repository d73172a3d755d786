package adwizard

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/tui/theme"
	"github.com/mark3labs/adspot/internal/wizard"
)

// scheduleStep picks exactly one airtime plan.
type scheduleStep struct {
	wiz   *wizard.Controller
	plans []catalog.Plan
	keys  keyMap

	cursor int
	err    string
}

func newScheduleStep(wiz *wizard.Controller, plans []catalog.Plan, keys keyMap) *scheduleStep {
	s := &scheduleStep{wiz: wiz, plans: plans, keys: keys}
	s.syncCursor()
	return s
}

// syncCursor moves the cursor onto the chosen plan.
func (s *scheduleStep) syncCursor() {
	chosen := s.wiz.Snapshot().PlanID
	for i, p := range s.plans {
		if p.ID == chosen {
			s.cursor = i
			return
		}
	}
}

func (s *scheduleStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(keyMsg, s.keys.Down):
		if s.cursor < len(s.plans)-1 {
			s.cursor++
		}
	case key.Matches(keyMsg, s.keys.Toggle):
		if len(s.plans) == 0 {
			return nil
		}
		if err := s.wiz.ChoosePlan(s.plans[s.cursor].ID); err != nil {
			s.err = err.Error()
			return nil
		}
		s.err = ""
	}
	return nil
}

func (s *scheduleStep) View() string {
	st := theme.Current().S()
	chosen := s.wiz.Snapshot().PlanID
	var b strings.Builder

	b.WriteString(st.HeaderTitle.Render("Plans") + "\n")
	for i, p := range s.plans {
		line := fmt.Sprintf("%s %s  %s  %s",
			radio(p.ID == chosen), p.Name,
			st.Price.Render(catalog.FormatCents(p.PriceCents)),
			st.Muted.Render(fmt.Sprintf("%d days · %s", p.Days, p.DateRange)))
		b.WriteString(cursorPrefix(i == s.cursor) + line + "\n")
	}

	if len(s.plans) > 0 {
		p := s.plans[s.cursor]
		b.WriteString("\n" + st.HeaderTitle.Render(p.Name) + "\n")
		b.WriteString(fmt.Sprintf("  Impressions: %s\n", formatCount(p.Impressions)))
		b.WriteString(fmt.Sprintf("  Rotation: %s\n", p.Rotation))
		if p.RotationDetails != "" {
			b.WriteString(st.Muted.Render("    "+p.RotationDetails) + "\n")
		}
		if len(p.Addons) > 0 {
			b.WriteString("  Includes:\n")
			for _, a := range p.Addons {
				b.WriteString(st.Selected.Render("    + ") + a + "\n")
			}
		}
	}

	if s.err != "" {
		b.WriteString("\n" + st.Error.Render(s.err) + "\n")
	}
	return b.String()
}

func (s *scheduleStep) hints() string {
	return renderHintBar("↑↓", "move", "space", "choose", "→", "next", "esc", "back")
}

// formatCount groups thousands: 125000 -> "125,000".
func formatCount(n int) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	digits := strconv.Itoa(n)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
