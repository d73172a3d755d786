package adwizard

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"
	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/playback"
	"github.com/mark3labs/adspot/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.Writer.Profile = colorprofile.Ascii
	os.Exit(m.Run())
}

type fakeSubmitter struct {
	calls int
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ wizard.Snapshot, _ wizard.Quote) (wizard.Receipt, error) {
	f.calls++
	if f.err != nil {
		return wizard.Receipt{}, f.err
	}
	return wizard.Receipt{OrderID: "order-1", PlacedAt: time.Date(2026, 4, 1, 9, 30, 0, 0, time.Local)}, nil
}

type harness struct {
	m      *Model
	wiz    *wizard.Controller
	player *playback.Controller
	sub    *fakeSubmitter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	wiz, err := wizard.FromCatalog(cat, "essential-reach", 450, 650)
	require.NoError(t, err)

	durations := map[string]time.Duration{"1": 20 * time.Millisecond}
	player := playback.New(func(item playback.Item) (playback.Media, error) {
		if d, ok := durations[item.ID]; ok {
			return playback.NewClip(d), nil
		}
		return playback.NewClip(time.Hour), nil
	}, playback.WithSwitchDelay(time.Millisecond))
	items := make([]playback.Item, 0, len(cat.Auditions))
	for _, a := range cat.Auditions {
		items = append(items, playback.Item{ID: a.ID, Source: a.Source})
	}
	require.NoError(t, player.Initialize(items))
	t.Cleanup(func() { _ = player.Dispose() })

	sub := &fakeSubmitter{}
	m := New(context.Background(), Options{Wizard: wiz, Catalog: cat, Player: player, Submitter: sub})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return &harness{m: m, wiz: wiz, player: player, sub: sub}
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	case "ctrl+n":
		return tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Code: []rune(s)[0], Text: s}
}

func (h *harness) send(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.m.Update(press(k))
	}
	return cmd
}

func (h *harness) screen() string {
	return ansi.Strip(h.m.render())
}

// drain runs cmd and any batched commands, returning the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func (h *harness) feed(cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		h.m.Update(msg)
	}
}

func TestNavigation_Keys(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, wizard.StageCreate, h.wiz.Stage())

	h.send("right")
	assert.Equal(t, wizard.StagePreview, h.wiz.Stage())
	h.send("esc")
	assert.Equal(t, wizard.StageCreate, h.wiz.Stage())

	h.send("3")
	assert.Equal(t, wizard.StageSchedule, h.wiz.Stage())
	h.send("9")
	assert.Equal(t, wizard.StageSchedule, h.wiz.Stage())

	h.send("ctrl+n", "right", "right")
	assert.Equal(t, wizard.StageConfirm, h.wiz.Stage())
}

func TestHeader_ShowsStageIndicator(t *testing.T) {
	h := newHarness(t)
	h.send("3")
	screen := h.screen()
	assert.Contains(t, screen, "✓ 1 Create")
	assert.Contains(t, screen, "✓ 2 Preview")
	assert.Contains(t, screen, "3 Schedule")
	assert.Contains(t, screen, "Southern Sunset Country Fest 2025")
}

func TestQuit_CtrlC(t *testing.T) {
	h := newHarness(t)
	cmd := h.send("ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, h.m.Result().Cancelled)
}

func TestEscOnFirstStageCancels(t *testing.T) {
	h := newHarness(t)
	cmd := h.send("esc")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, h.m.Result().Cancelled)
}

func TestCreate_StationSelectionSurvivesNavigation(t *testing.T) {
	h := newHarness(t)

	h.send("space")
	assert.True(t, h.wiz.State().HasChannel("usfm"))

	h.send("down", "down", "enter")
	assert.True(t, h.wiz.State().HasChannel("mix"))

	h.send("right", "esc")
	assert.Equal(t, wizard.StageCreate, h.wiz.Stage())
	screen := h.screen()
	assert.Contains(t, screen, "[x] US FM 103.5")
	assert.Contains(t, screen, "[x] MIX 100.7")
	assert.Contains(t, screen, "[ ] 98.7 The Shark")

	h.send("up", "up", "space")
	assert.False(t, h.wiz.State().HasChannel("usfm"))
}

func TestCreate_TypingRespectsBudget(t *testing.T) {
	h := newHarness(t)
	draft := h.wiz.Snapshot().Script
	left := h.wiz.Remaining()
	require.Greater(t, left, 0)

	h.send("tab")
	require.True(t, h.m.create.editing())

	// Digits go to the editor rather than jumping stages.
	h.send("1")
	assert.Equal(t, wizard.StageCreate, h.wiz.Stage())
	assert.Equal(t, left-1, h.wiz.Remaining())

	for i := 0; i < left+5; i++ {
		h.send("x")
	}
	assert.Equal(t, 0, h.wiz.Remaining())
	assert.Len(t, []rune(h.wiz.Snapshot().Script), 450)
	assert.True(t, strings.HasPrefix(h.wiz.Snapshot().Script, draft))

	h.send("esc")
	assert.False(t, h.m.create.editing())
	assert.Equal(t, wizard.StageCreate, h.wiz.Stage())
	assert.Contains(t, h.screen(), "0 characters left")
}

func TestCreate_EditorResult(t *testing.T) {
	h := newHarness(t)

	h.m.Update(ScriptEditedMsg{Content: "Fresh copy for the fest.\n"})
	assert.Equal(t, "Fresh copy for the fest.", h.wiz.Snapshot().Script)

	h.m.Update(ScriptEditedMsg{Content: strings.Repeat("y", 451)})
	assert.Equal(t, "Fresh copy for the fest.", h.wiz.Snapshot().Script)
	assert.Contains(t, h.screen(), "script too long")

	h.m.Update(ScriptEditedMsg{Err: errors.New("exit status 1")})
	assert.Contains(t, h.screen(), "editor: exit status 1")
	assert.Equal(t, "Fresh copy for the fest.", h.wiz.Snapshot().Script)
}

func TestPreview_ToggleAndSwitch(t *testing.T) {
	h := newHarness(t)
	h.send("2", "down")

	h.feed(h.send("space"))
	assert.Equal(t, "2", h.player.State().ActiveID)
	assert.Contains(t, h.screen(), "Liam's Audition  1:00  playing")

	h.feed(h.send("down", "space"))
	assert.Equal(t, "3", h.player.State().ActiveID)
	screen := h.screen()
	assert.Contains(t, screen, "Serena's Audition  1:00  playing")
	assert.NotContains(t, screen, "Liam's Audition  1:00  playing")

	h.feed(h.send("space"))
	assert.False(t, h.player.State().Playing())
	assert.NotContains(t, h.screen(), "playing")
}

func TestPreview_NaturalEndArrivesAsMessage(t *testing.T) {
	h := newHarness(t)
	h.send("2")

	h.feed(h.send("space"))
	require.Equal(t, "1", h.player.State().ActiveID)

	wait := waitForPlayback(h.player.Changes())
	deadline := time.After(2 * time.Second)
	for h.m.preview.state.Playing() {
		done := make(chan tea.Msg, 1)
		go func() { done <- wait() }()
		select {
		case msg := <-done:
			h.m.Update(msg)
		case <-deadline:
			t.Fatal("natural end never reported")
		}
	}
	assert.NotContains(t, h.screen(), "playing")
}

func TestPreview_LeavingStopsPlayback(t *testing.T) {
	h := newHarness(t)
	h.send("2", "down", "down")

	h.feed(h.send("space"))
	require.Equal(t, "3", h.player.State().ActiveID)

	h.feed(h.send("right"))
	assert.Equal(t, wizard.StageSchedule, h.wiz.Stage())
	assert.False(t, h.player.State().Playing())
}

func TestPreview_LeavingAfterUnreportedEndStaysSilent(t *testing.T) {
	h := newHarness(t)
	h.send("2")

	h.feed(h.send("space"))
	require.Equal(t, "1", h.m.preview.state.ActiveID)

	// The short clip ends, but its notification is never handled.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, "1", h.m.preview.state.ActiveID)

	h.feed(h.send("right"))
	assert.Equal(t, wizard.StageSchedule, h.wiz.Stage())
	assert.False(t, h.player.State().Playing())

	time.Sleep(50 * time.Millisecond)
	assert.False(t, h.player.State().Playing())
}

func TestPreview_LeavingDropsQueuedToggle(t *testing.T) {
	h := newHarness(t)
	h.send("2", "down")

	h.feed(h.send("space"))
	require.Equal(t, "2", h.player.State().ActiveID)

	queued := h.send("down", "space")
	h.feed(h.send("right"))
	assert.Equal(t, wizard.StageSchedule, h.wiz.Stage())
	assert.False(t, h.player.State().Playing())

	// The switch to the third audition only runs now, after leaving.
	h.feed(queued)
	assert.False(t, h.player.State().Playing())
	assert.Empty(t, h.m.preview.err)
	assert.Empty(t, h.m.preview.pending)
}

func TestPreview_ShowsProgress(t *testing.T) {
	h := newHarness(t)
	h.send("2", "down")

	h.feed(h.send("space"))
	require.Equal(t, "2", h.player.State().ActiveID)
	assert.Contains(t, h.screen(), "0:00 / 1:00")

	_, cmd := h.m.Update(progressTickMsg{})
	assert.NotNil(t, cmd, "ticker re-arms while playing")

	h.feed(h.send("space"))
	assert.NotContains(t, h.screen(), " / 1:00")
	_, cmd = h.m.Update(progressTickMsg{})
	assert.Nil(t, cmd, "ticker stops once silent")
}

func TestPreview_AuditionWithoutMedia(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	wiz, err := wizard.FromCatalog(cat, "essential-reach", 450, 650)
	require.NoError(t, err)

	player := playback.New(func(item playback.Item) (playback.Media, error) {
		return playback.NewClip(time.Hour), nil
	}, playback.WithSwitchDelay(0))
	require.NoError(t, player.Initialize([]playback.Item{{ID: "1"}, {ID: "2"}}))
	t.Cleanup(func() { _ = player.Dispose() })

	m := New(context.Background(), Options{Wizard: wiz, Catalog: cat, Player: player})
	m.Update(press("2"))
	m.Update(press("down"))
	m.Update(press("down"))
	_, cmd := m.Update(press("space"))
	assert.Nil(t, cmd)
	assert.Contains(t, ansi.Strip(m.render()), "Serena's Audition has no preview")
	assert.False(t, player.State().Playing())
}

func TestPreview_WithoutPlayer(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	wiz, err := wizard.FromCatalog(cat, "essential-reach", 450, 650)
	require.NoError(t, err)
	m := New(context.Background(), Options{Wizard: wiz, Catalog: cat})
	assert.Nil(t, m.Init())

	m.Update(press("2"))
	_, cmd := m.Update(press("space"))
	assert.Nil(t, cmd)
	assert.Contains(t, ansi.Strip(m.render()), "Audio preview is not available")
}

func TestSchedule_ChoosePlan(t *testing.T) {
	h := newHarness(t)
	h.send("3")
	assert.Contains(t, h.screen(), "(•) Essential Reach")

	h.send("down", "space")
	assert.Equal(t, "market-impact", h.wiz.Snapshot().PlanID)
	screen := h.screen()
	assert.Contains(t, screen, "(•) Market Impact")
	assert.Contains(t, screen, "$499.00")
	assert.Contains(t, screen, "Impressions: 50,000")
	assert.Contains(t, screen, "Social Media Boost")

	// Leaving and returning keeps the cursor on the chosen plan.
	h.send("esc", "right")
	assert.Equal(t, 1, h.m.schedule.cursor)
}

func TestConfirm_SummaryAndPay(t *testing.T) {
	h := newHarness(t)
	h.send("3", "down", "space", "4")

	screen := h.screen()
	assert.Contains(t, screen, "Market Impact")
	assert.Contains(t, screen, "$32.43")
	assert.Contains(t, screen, "$531.43")
	assert.Contains(t, screen, "none selected")

	h.send("p")
	assert.Equal(t, 0, h.sub.calls)
	assert.Contains(t, h.screen(), "Select at least one station before paying")

	h.send("1", "down", "space", "4", "p")
	assert.Equal(t, 1, h.sub.calls)
	receipt, ok := h.wiz.Submitted()
	require.True(t, ok)
	assert.Equal(t, "order-1", receipt.OrderID)
	assert.Contains(t, h.screen(), "Order order-1 placed")
	assert.Contains(t, h.screen(), "98.7 The Shark")

	h.send("p")
	assert.Equal(t, 1, h.sub.calls)

	cmd := h.send("q")
	require.NotNil(t, cmd)
	res := h.m.Result()
	assert.False(t, res.Cancelled)
	require.NotNil(t, res.Receipt)
	assert.Equal(t, "order-1", res.Receipt.OrderID)
}

func TestConfirm_SubmitFailureKeepsOrderOpen(t *testing.T) {
	h := newHarness(t)
	h.sub.err = errors.New("gateway down")
	h.send("space", "4", "p")

	assert.Contains(t, h.screen(), "gateway down")
	_, ok := h.wiz.Submitted()
	assert.False(t, ok)

	h.sub.err = nil
	h.send("p")
	_, ok = h.wiz.Submitted()
	assert.True(t, ok)
}

func TestConfirm_ShowsScriptDiff(t *testing.T) {
	h := newHarness(t)
	h.m.Update(tea.WindowSizeMsg{Width: 120, Height: 90})
	h.m.Update(ScriptEditedMsg{Content: "Completely new copy."})
	h.send("4")

	screen := h.screen()
	assert.Contains(t, screen, "Script changes")
	assert.Contains(t, screen, "+Completely new copy.")
}

func TestScriptDiff(t *testing.T) {
	assert.Empty(t, scriptDiff("same", "same"))

	diff := ansi.Strip(scriptDiff("line one\nline two", "line one\nline 2"))
	assert.Contains(t, diff, "-line two")
	assert.Contains(t, diff, "+line 2")
	assert.Contains(t, diff, "--- draft")
	assert.Contains(t, diff, "+++ script")
}

func TestView_RendersCanvas(t *testing.T) {
	h := newHarness(t)
	require.NotPanics(t, func() { _ = h.m.View() })

	cat, err := catalog.Default()
	require.NoError(t, err)
	wiz, err := wizard.FromCatalog(cat, "essential-reach", 450, 650)
	require.NoError(t, err)
	m := New(context.Background(), Options{Wizard: wiz, Catalog: cat})
	m.width, m.height = 0, 0
	view := m.View()
	assert.True(t, view.AltScreen)
}

func TestButtonBar(t *testing.T) {
	bar := NewButtonBar(backNextButtons(false, true, "Next →"))
	bar.SetWidth(40)
	out := ansi.Strip(bar.Render())
	assert.Contains(t, out, "← Back")
	assert.Contains(t, out, "Next →")
	assert.Empty(t, NewButtonBar(nil).Render())
}

func TestRenderHintBar(t *testing.T) {
	assert.Equal(t, "↑↓ move • space toggle", ansi.Strip(renderHintBar("↑↓", "move", "space", "toggle")))
	assert.Empty(t, renderHintBar("odd"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "125,000", formatCount(125000))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "-1,000", formatCount(-1000))
	assert.Equal(t, "0:03", formatDuration(3*time.Second))
	assert.Equal(t, "1:00", formatDuration(time.Minute))
}
