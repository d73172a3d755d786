package adwizard

import "github.com/mark3labs/adspot/internal/playback"

// PlaybackChangedMsg carries a state published by the playback controller,
// including natural ends that no key press caused.
type PlaybackChangedMsg struct {
	State playback.State
}

// playbackClosedMsg is sent once the controller's change feed closes.
type playbackClosedMsg struct{}

// progressTickMsg redraws the playing audition's position.
type progressTickMsg struct{}

// ToggleDoneMsg reports the outcome of a preview toggle.
type ToggleDoneMsg struct {
	ID    string
	State playback.State
	Err   error
}

// ScriptEditedMsg carries the script returned from $EDITOR.
type ScriptEditedMsg struct {
	Content string
	Err     error
}
