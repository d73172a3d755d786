package adwizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/tui/theme"
	"github.com/mark3labs/adspot/internal/wizard"
)

type createFocus int

const (
	focusStations createFocus = iota
	focusScript
)

// createStep edits the script and the station selection.
type createStep struct {
	wiz      *wizard.Controller
	stations []catalog.Station
	keys     keyMap

	textarea textarea.Model
	focus    createFocus
	cursor   int
	err      string
	width    int
}

func newCreateStep(wiz *wizard.Controller, stations []catalog.Station, keys keyMap) *createStep {
	ta := textarea.New()
	ta.Placeholder = "Write your ad script..."
	ta.CharLimit = wiz.Budget()
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.KeyMap.LineNext = key.NewBinding(key.WithKeys("down"))

	t := theme.Current()
	styles := textarea.DefaultDarkStyles()
	styles.Cursor.Color = lipgloss.Color(t.Secondary)
	ta.SetStyles(styles)
	ta.SetValue(wiz.Snapshot().Script)

	return &createStep{
		wiz:      wiz,
		stations: stations,
		keys:     keys,
		textarea: ta,
		width:    60,
	}
}

// editing reports whether key presses go to the script editor.
func (c *createStep) editing() bool {
	return c.focus == focusScript
}

func (c *createStep) setWidth(width int) {
	c.width = width
	c.textarea.SetWidth(width)
}

func (c *createStep) focusScript() tea.Cmd {
	c.focus = focusScript
	return c.textarea.Focus()
}

func (c *createStep) focusStations() {
	c.focus = focusStations
	c.textarea.Blur()
}

func (c *createStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if key.Matches(msg, c.keys.Focus) {
			if c.editing() {
				c.focusStations()
				return nil
			}
			return c.focusScript()
		}
		if c.editing() {
			return c.updateScript(msg)
		}
		switch {
		case key.Matches(msg, c.keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, c.keys.Down):
			if c.cursor < len(c.stations)-1 {
				c.cursor++
			}
		case key.Matches(msg, c.keys.Toggle):
			if len(c.stations) > 0 {
				if _, err := c.wiz.ToggleChannel(c.stations[c.cursor].ID); err != nil {
					c.err = err.Error()
				}
			}
		case key.Matches(msg, c.keys.Edit):
			return c.openEditor()
		}
		return nil

	case tea.PasteMsg:
		if c.editing() {
			return c.updateScript(msg)
		}
		return nil

	case ScriptEditedMsg:
		if msg.Err != nil {
			c.err = fmt.Sprintf("editor: %v", msg.Err)
			return nil
		}
		text := strings.TrimRight(msg.Content, "\n")
		if err := c.wiz.SetScriptText(text); err != nil {
			c.err = err.Error()
			return nil
		}
		c.err = ""
		c.textarea.SetValue(text)
		return nil
	}

	if c.editing() {
		var cmd tea.Cmd
		c.textarea, cmd = c.textarea.Update(msg)
		return cmd
	}
	return nil
}

// updateScript feeds msg to the textarea and commits the result to the
// wizard. A rejected edit restores the previous text.
func (c *createStep) updateScript(msg tea.Msg) tea.Cmd {
	prev := c.wiz.Snapshot().Script
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)

	value := c.textarea.Value()
	if value == prev {
		return cmd
	}
	if err := c.wiz.SetScriptText(value); err != nil {
		c.err = err.Error()
		c.textarea.SetValue(prev)
		return cmd
	}
	c.err = ""
	return cmd
}

// openEditor hands the script to $EDITOR through a temp file.
func (c *createStep) openEditor() tea.Cmd {
	tmp, err := os.CreateTemp("", "adspot_script_*.txt")
	if err != nil {
		c.err = fmt.Sprintf("editor: %v", err)
		return nil
	}
	path := tmp.Name()
	if _, err := tmp.WriteString(c.wiz.Snapshot().Script); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		c.err = fmt.Sprintf("editor: %v", err)
		return nil
	}
	_ = tmp.Close()

	cmd, err := editor.Command("adspot", path)
	if err != nil {
		_ = os.Remove(path)
		c.err = fmt.Sprintf("editor: %v", err)
		return nil
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return ScriptEditedMsg{Err: err}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return ScriptEditedMsg{Err: err}
		}
		return ScriptEditedMsg{Content: string(data)}
	})
}

func (c *createStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	remaining := c.wiz.Remaining()
	counter := s.Muted.Render(fmt.Sprintf("%d characters left", remaining))
	if remaining < 20 {
		counter = s.Warning.Render(fmt.Sprintf("%d characters left", remaining))
	}
	b.WriteString(s.HeaderTitle.Render("Script") + "  " + counter + "\n")
	if c.editing() {
		b.WriteString(c.textarea.View())
	} else {
		b.WriteString(s.Text.Width(c.width).Render(c.wiz.Snapshot().Script))
	}
	b.WriteString("\n\n")

	state := c.wiz.State()
	b.WriteString(s.HeaderTitle.Render("Stations") + "\n")
	for i, st := range c.stations {
		active := !c.editing() && i == c.cursor
		b.WriteString(cursorPrefix(active) + checkbox(state.HasChannel(st.ID)) + " " + st.Name + "\n")
	}

	if c.err != "" {
		b.WriteString("\n" + s.Error.Render(c.err) + "\n")
	}
	return b.String()
}

func (c *createStep) hints() string {
	if c.editing() {
		return renderHintBar("tab", "stations", "esc", "done", "ctrl+n", "next")
	}
	pairs := []string{"↑↓", "move", "space", "toggle", "tab", "edit script"}
	if os.Getenv("EDITOR") != "" {
		pairs = append(pairs, "e", "$EDITOR")
	}
	return renderHintBar(append(pairs, "→", "next", "1-4", "jump")...)
}
