package adwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/tui/theme"
	"github.com/mark3labs/adspot/internal/wizard"
)

// confirmStep summarizes the order and places it.
type confirmStep struct {
	ctx  context.Context
	wiz  *wizard.Controller
	cat  *catalog.Catalog
	sub  wizard.Submitter
	keys keyMap

	viewport viewport.Model
	width    int
	err      string
}

func newConfirmStep(ctx context.Context, wiz *wizard.Controller, cat *catalog.Catalog, sub wizard.Submitter, keys keyMap) *confirmStep {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(14),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return &confirmStep{
		ctx:      ctx,
		wiz:      wiz,
		cat:      cat,
		sub:      sub,
		keys:     keys,
		viewport: vp,
		width:    60,
	}
}

func (c *confirmStep) setSize(width, height int) {
	c.width = width
	c.viewport.SetWidth(width)
	if height < 5 {
		height = 5
	}
	c.viewport.SetHeight(height)
}

// refresh rebuilds the summary from the current wizard state.
func (c *confirmStep) refresh() {
	content := renderMarkdown(orderSummary(c.wiz, c.cat), c.width)
	if diff := scriptDiff(c.cat.Script, c.wiz.Snapshot().Script); diff != "" {
		content += "\n\n" + theme.Current().S().HeaderTitle.Render("Script changes") + "\n" + diff
	}
	c.viewport.SetContent(content)
	c.viewport.GotoTop()
}

func (c *confirmStep) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok && key.Matches(keyMsg, c.keys.Pay) {
		c.pay()
		return nil
	}
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

// pay places the order. The wizard refuses a second submission.
func (c *confirmStep) pay() {
	if _, done := c.wiz.Submitted(); done {
		return
	}
	if c.sub == nil {
		c.err = "Ordering is not available"
		return
	}
	if _, err := c.wiz.Submit(c.ctx, c.sub); err != nil {
		if errors.Is(err, wizard.ErrNoChannels) {
			c.err = "Select at least one station before paying"
			return
		}
		c.err = err.Error()
		return
	}
	c.err = ""
	c.refresh()
}

func (c *confirmStep) View() string {
	s := theme.Current().S()
	var b strings.Builder
	b.WriteString(c.viewport.View())
	b.WriteString("\n")

	if r, ok := c.wiz.Submitted(); ok {
		b.WriteString("\n" + s.Selected.Render(fmt.Sprintf("Order %s placed at %s", r.OrderID, r.PlacedAt.Local().Format("Jan 2 15:04"))) + "\n")
	}
	if c.err != "" {
		b.WriteString("\n" + s.Error.Render(c.err) + "\n")
	}
	return b.String()
}

func (c *confirmStep) hints() string {
	if _, ok := c.wiz.Submitted(); ok {
		return renderHintBar("↑↓", "scroll", "q", "quit")
	}
	return renderHintBar("↑↓", "scroll", "p", "pay "+catalog.FormatCents(c.wiz.Quote().TotalCents), "esc", "back")
}

// orderSummary renders the order as markdown.
func orderSummary(wiz *wizard.Controller, cat *catalog.Catalog) string {
	snap := wiz.Snapshot()
	q := wiz.Quote()
	plan := wiz.Plan()

	names := make([]string, 0, len(snap.Channels))
	for _, id := range snap.Channels {
		if st, ok := cat.Station(id); ok {
			names = append(names, st.Name)
		} else {
			names = append(names, id)
		}
	}
	stations := strings.Join(names, ", ")
	if stations == "" {
		stations = "_none selected_"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", cat.Event.Name)
	if cat.Event.When != "" {
		fmt.Fprintf(&b, "%s\n\n", cat.Event.When)
	}
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Plan | %s |\n", plan.Name)
	fmt.Fprintf(&b, "| Schedule | %d days, %s |\n", plan.Days, plan.DateRange)
	fmt.Fprintf(&b, "| Stations | %s |\n", stations)
	fmt.Fprintf(&b, "| Subtotal | %s |\n", catalog.FormatCents(q.SubtotalCents))
	fmt.Fprintf(&b, "| Tax | %s |\n", catalog.FormatCents(q.TaxCents))
	fmt.Fprintf(&b, "| **Total** | **%s** |\n", catalog.FormatCents(q.TotalCents))
	b.WriteString("\n### Script\n\n")
	for _, line := range strings.Split(snap.Script, "\n") {
		b.WriteString("> " + line + "\n")
	}
	return b.String()
}

// scriptDiff shows how the script departs from the catalog draft. It is
// empty when they match.
func scriptDiff(draft, script string) string {
	if draft == script {
		return ""
	}
	s := theme.Current().S()
	unified := udiff.Unified("draft", "script", draft+"\n", script+"\n")

	lines := strings.Split(strings.TrimRight(unified, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = s.Muted.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = s.DiffInsert.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = s.DiffDelete.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// renderMarkdown renders markdown with glamour, falling back to the raw text.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}
