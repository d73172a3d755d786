// Package adwizard is the terminal front end of the ad purchase wizard.
package adwizard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/playback"
	"github.com/mark3labs/adspot/internal/tui/theme"
	"github.com/mark3labs/adspot/internal/wizard"
)

// Options wires the model to its collaborators. Player and Submitter may be
// nil; the matching actions then report that they are unavailable.
type Options struct {
	Wizard    *wizard.Controller
	Catalog   *catalog.Catalog
	Player    *playback.Controller
	Submitter wizard.Submitter
}

// Result is what the wizard leaves behind when the program exits.
type Result struct {
	Snapshot  wizard.Snapshot
	Receipt   *wizard.Receipt
	Cancelled bool
}

// Model is the BubbleTea model for the purchase flow.
type Model struct {
	wiz    *wizard.Controller
	cat    *catalog.Catalog
	player *playback.Controller
	keys   keyMap

	create   *createStep
	preview  *previewStep
	schedule *scheduleStep
	confirm  *confirmStep

	width     int
	height    int
	cancelled bool
}

// New builds the model. ctx bounds playback and order submission.
func New(ctx context.Context, opts Options) *Model {
	keys := defaultKeyMap()
	return &Model{
		wiz:      opts.Wizard,
		cat:      opts.Catalog,
		player:   opts.Player,
		keys:     keys,
		create:   newCreateStep(opts.Wizard, opts.Catalog.Stations, keys),
		preview:  newPreviewStep(ctx, opts.Player, opts.Catalog.Auditions, keys),
		schedule: newScheduleStep(opts.Wizard, opts.Catalog.Plans, keys),
		confirm:  newConfirmStep(ctx, opts.Wizard, opts.Catalog, opts.Submitter, keys),
		width:    100,
		height:   36,
	}
}

// Run starts a full-screen program and blocks until the user quits.
func Run(ctx context.Context, opts Options) (*Result, error) {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	fm, ok := final.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return fm.Result(), nil
}

// Result reports the final state.
func (m *Model) Result() *Result {
	r := &Result{Snapshot: m.wiz.Snapshot(), Cancelled: m.cancelled}
	if receipt, ok := m.wiz.Submitted(); ok {
		r.Receipt = &receipt
	}
	return r
}

// Init subscribes to playback changes.
func (m *Model) Init() tea.Cmd {
	if m.player == nil {
		return nil
	}
	return waitForPlayback(m.player.Changes())
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case PlaybackChangedMsg:
		return m, tea.Batch(m.preview.Update(msg), waitForPlayback(m.player.Changes()))

	case playbackClosedMsg:
		return m, nil

	case ToggleDoneMsg, spinner.TickMsg, progressTickMsg:
		return m, m.preview.Update(msg)

	case ScriptEditedMsg:
		return m, m.create.Update(msg)
	}

	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit(true)
	}

	stage := m.wiz.Stage()
	if stage == wizard.StageCreate && m.create.editing() {
		switch msg.String() {
		case "esc":
			m.create.focusStations()
			return m, nil
		case "ctrl+n", "ctrl+p":
		default:
			return m, m.create.Update(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		if stage == wizard.First {
			return m.quit(true)
		}
		return m, m.navigate(m.wiz.Retreat)
	case key.Matches(msg, m.keys.Next):
		return m, m.navigate(m.wiz.Advance)
	case key.Matches(msg, m.keys.Jump):
		target, err := wizard.ParseStage(msg.String())
		if err != nil {
			return m, nil
		}
		return m, m.navigate(func() bool { return m.wiz.JumpTo(target) == nil })
	case msg.String() == "q":
		_, done := m.wiz.Submitted()
		return m.quit(!done)
	}

	return m, m.forward(msg)
}

// navigate runs a stage transition and performs the side effects of leaving
// and entering stages. Leaving Preview silences any audition.
func (m *Model) navigate(move func() bool) tea.Cmd {
	from := m.wiz.Stage()
	if !move() {
		return nil
	}
	to := m.wiz.Stage()
	if from == to {
		return nil
	}
	logger.Debug("Stage %s -> %s", from, to)

	if from == wizard.StagePreview {
		m.preview.stop()
	}
	if from == wizard.StageCreate {
		m.create.focusStations()
	}
	switch to {
	case wizard.StageSchedule:
		m.schedule.syncCursor()
	case wizard.StageConfirm:
		m.confirm.refresh()
	}
	return nil
}

func (m *Model) quit(cancelled bool) (tea.Model, tea.Cmd) {
	m.cancelled = cancelled
	return m, tea.Quit
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	switch m.wiz.Stage() {
	case wizard.StageCreate:
		return m.create.Update(msg)
	case wizard.StagePreview:
		return m.preview.Update(msg)
	case wizard.StageSchedule:
		return m.schedule.Update(msg)
	case wizard.StageConfirm:
		return m.confirm.Update(msg)
	}
	return nil
}

func (m *Model) contentWidth() int {
	w := m.width - 10
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m *Model) resize() {
	w := m.contentWidth()
	m.create.setWidth(w)
	m.confirm.setSize(w, m.height-16)
	if m.wiz.Stage() == wizard.StageConfirm {
		m.confirm.refresh()
	}
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render lays out header, current step, buttons and hints.
func (m *Model) render() string {
	stage := m.wiz.Stage()
	w := m.contentWidth()

	var body, hints string
	switch stage {
	case wizard.StageCreate:
		body, hints = m.create.View(), m.create.hints()
	case wizard.StagePreview:
		body, hints = m.preview.View(), m.preview.hints()
	case wizard.StageSchedule:
		body, hints = m.schedule.View(), m.schedule.hints()
	case wizard.StageConfirm:
		body, hints = m.confirm.View(), m.confirm.hints()
	}

	nextLabel := "Next →"
	if stage == wizard.StageSchedule {
		nextLabel = "Review →"
	}
	bar := NewButtonBar(backNextButtons(stage != wizard.First, stage != wizard.Last, nextLabel))
	bar.SetWidth(w)

	s := theme.Current().S()
	sections := []string{
		renderHeader(m.title(), stage),
		"",
		strings.TrimRight(body, "\n"),
		"",
		bar.Render(),
	}
	box := s.Container.Width(w + 6).Render(strings.Join(sections, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, box, " "+hints))
}

func (m *Model) title() string {
	if m.cat.Event.Name == "" {
		return "Buy radio airtime"
	}
	return "Buy radio airtime · " + m.cat.Event.Name
}
