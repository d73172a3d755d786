package adwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/playback"
	"github.com/mark3labs/adspot/internal/tui/theme"
)

// previewStep lists the auditions and toggles their playback. The player
// may be nil when no audio backend is available.
type previewStep struct {
	parent    context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	player    *playback.Controller
	auditions []catalog.Audition
	available map[string]bool
	keys      keyMap

	cursor   int
	state    playback.State
	pending  string
	spinner  spinner.Model
	progress progress.Model
	ticking  bool
	err      string
}

// progressInterval is how often the playing audition's position is redrawn.
const progressInterval = 250 * time.Millisecond

func newPreviewStep(ctx context.Context, player *playback.Controller, auditions []catalog.Audition, keys keyMap) *previewStep {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Current().S().Cursor

	p := &previewStep{
		parent:    ctx,
		player:    player,
		auditions: auditions,
		available: make(map[string]bool),
		keys:      keys,
		spinner:   sp,
		progress: progress.New(
			progress.WithDefaultBlend(),
			progress.WithWidth(24),
			progress.WithoutPercentage(),
		),
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	if player != nil {
		p.state = player.State()
		for _, id := range player.Items() {
			p.available[id] = true
		}
	}
	return p
}

func progressTick() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg { return progressTickMsg{} })
}

// watchProgress starts the redraw ticker while something plays.
func (p *previewStep) watchProgress() tea.Cmd {
	if p.ticking || !p.state.Playing() {
		return nil
	}
	p.ticking = true
	return progressTick()
}

func toggleCmd(ctx context.Context, player *playback.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		st, err := player.Toggle(ctx, id)
		return ToggleDoneMsg{ID: id, State: st, Err: err}
	}
}

// waitForPlayback delivers the next published playback state.
func waitForPlayback(ch <-chan playback.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return playbackClosedMsg{}
		}
		return PlaybackChangedMsg{State: st}
	}
}

// stop silences every audition and drops toggles still queued from this
// stage. It does not rely on the last state the step has seen.
func (p *previewStep) stop() {
	p.cancel()
	p.ctx, p.cancel = context.WithCancel(p.parent)
	p.pending = ""
	if p.player == nil {
		return
	}
	if err := p.player.Stop(); err != nil && !errors.Is(err, playback.ErrSuperseded) {
		logger.Warn("Stopping previews: %v", err)
	}
	p.state = p.player.State()
}

func (p *previewStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.auditions)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keys.Toggle):
			if len(p.auditions) == 0 {
				return nil
			}
			if p.player == nil {
				p.err = "Audio preview is not available"
				return nil
			}
			id := p.auditions[p.cursor].ID
			if !p.available[id] {
				p.err = fmt.Sprintf("%s has no preview", p.name(id))
				return nil
			}
			p.pending = id
			p.err = ""
			return tea.Batch(toggleCmd(p.ctx, p.player, id), p.spinner.Tick)
		}

	case ToggleDoneMsg:
		if msg.ID == p.pending {
			p.pending = ""
		}
		switch {
		case msg.Err == nil:
			p.state = msg.State
		case errors.Is(msg.Err, playback.ErrSuperseded), errors.Is(msg.Err, context.Canceled):
		default:
			p.err = fmt.Sprintf("Could not play %s: %v", p.name(msg.ID), msg.Err)
			p.state = p.player.State()
		}
		return p.watchProgress()

	case PlaybackChangedMsg:
		p.state = msg.State
		return p.watchProgress()

	case progressTickMsg:
		p.ticking = false
		return p.watchProgress()

	case spinner.TickMsg:
		if p.pending == "" {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (p *previewStep) name(id string) string {
	for _, a := range p.auditions {
		if a.ID == id {
			return a.Name
		}
	}
	return id
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (p *previewStep) View() string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.HeaderTitle.Render("Auditions") + "\n")
	for i, a := range p.auditions {
		icon := "▶"
		status := ""
		switch {
		case p.pending == a.ID:
			icon = p.spinner.View()
		case p.state.IsActive(a.ID):
			icon = s.Selected.Render("■")
			status = s.Selected.Render("  playing")
		}
		line := fmt.Sprintf("%s %s  %s", icon, a.Name, s.Muted.Render(formatDuration(a.Duration)))
		b.WriteString(cursorPrefix(i == p.cursor) + line + status + "\n")
		if p.state.IsActive(a.ID) && p.pending != a.ID {
			b.WriteString("      " + p.progressLine(a) + "\n")
		}
		b.WriteString("      " + s.Muted.Render(fmt.Sprintf("Voice: %s · Music: %s", a.Voice, a.Music)) + "\n")
	}

	if p.err != "" {
		b.WriteString("\n" + s.Error.Render(p.err) + "\n")
	}
	return b.String()
}

// progressLine renders how far the playing audition has got.
func (p *previewStep) progressLine(a catalog.Audition) string {
	pos, err := p.player.Position(a.ID)
	if err != nil || a.Duration <= 0 {
		return ""
	}
	pos = min(pos, a.Duration)
	percent := float64(pos) / float64(a.Duration)
	return p.progress.ViewAs(percent) + " " + theme.Current().S().Muted.Render(
		formatDuration(pos)+" / "+formatDuration(a.Duration))
}

func (p *previewStep) hints() string {
	return renderHintBar("↑↓", "move", "space", "play/stop", "→", "next", "esc", "back")
}
