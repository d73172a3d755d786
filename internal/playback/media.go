package playback

import "time"

// Media is the playback primitive behind a single item. Implementations may
// reject Play with an error; the ended handler fires when playback reaches the
// end on its own, never as a result of Pause.
type Media interface {
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	Playing() bool
	Position() time.Duration
	SetEndedHandler(fn func())
	Close() error
}

// Item describes one playable entry of the catalog.
type Item struct {
	ID     string
	Source string
}

// Opener creates the media primitive for an item.
type Opener func(item Item) (Media, error)
