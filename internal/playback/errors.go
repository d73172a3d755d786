package playback

import "errors"

var (
	// ErrPlaybackStartFailed is returned when the media primitive refuses to
	// play. Nothing is left active.
	ErrPlaybackStartFailed = errors.New("playback start failed")
	// ErrPlaybackStopFailed is returned when pausing or rewinding fails.
	ErrPlaybackStopFailed = errors.New("playback stop failed")
	// ErrSuperseded is returned by a switch whose effect was cancelled by a
	// newer request.
	ErrSuperseded = errors.New("playback request superseded")
	ErrUnknownItem        = errors.New("unknown playback item")
	ErrNotInitialized     = errors.New("playback controller not initialized")
	ErrAlreadyInitialized = errors.New("playback controller already initialized")
	ErrDisposed           = errors.New("playback controller disposed")
)
