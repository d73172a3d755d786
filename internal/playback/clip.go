package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrClipClosed is returned by operations on a closed Clip.
var ErrClipClosed = errors.New("clip closed")

// Clip is a clock-driven Media with a fixed duration. It decodes nothing: it
// tracks a position against wall time and fires the ended handler when the
// position reaches the duration.
type Clip struct {
	mu       sync.Mutex
	duration time.Duration
	offset   time.Duration // position at the last pause/seek
	started  time.Time     // zero while paused
	timer    *time.Timer
	gen      uint64 // invalidates timers armed before the latest play/seek/pause
	onEnded  func()
	closed   bool
}

// NewClip returns a paused clip positioned at zero.
func NewClip(duration time.Duration) *Clip {
	return &Clip{duration: duration}
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	return c.duration
}

// Play starts or resumes playback. Playing a clip that reached its end
// restarts it from zero.
func (c *Clip) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClipClosed
	}
	if c.duration <= 0 {
		return fmt.Errorf("clip has no playable duration")
	}
	if !c.started.IsZero() {
		return nil
	}
	if c.offset >= c.duration {
		c.offset = 0
	}
	c.startLocked()
	return nil
}

func (c *Clip) startLocked() {
	c.started = time.Now()
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.duration-c.offset, func() { c.finish(gen) })
}

func (c *Clip) haltLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Clip) finish(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.started.IsZero() {
		c.mu.Unlock()
		return
	}
	c.offset = c.duration
	c.started = time.Time{}
	c.timer = nil
	fn := c.onEnded
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pause halts playback, keeping the position.
func (c *Clip) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClipClosed
	}
	if c.started.IsZero() {
		return nil
	}
	c.offset = c.positionLocked()
	c.started = time.Time{}
	c.haltLocked()
	return nil
}

// Seek moves the position, clamped to [0, duration].
func (c *Clip) Seek(pos time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClipClosed
	}
	pos = max(0, min(pos, c.duration))
	playing := !c.started.IsZero()
	if playing {
		c.haltLocked()
	}
	c.offset = pos
	if playing {
		c.startLocked()
	}
	return nil
}

// Playing reports whether the clock is running.
func (c *Clip) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.started.IsZero()
}

// Position returns the current playback position.
func (c *Clip) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Clip) positionLocked() time.Duration {
	if c.started.IsZero() {
		return c.offset
	}
	return min(c.offset+time.Since(c.started), c.duration)
}

// SetEndedHandler registers fn to run when playback reaches the end.
// fn runs on a timer goroutine.
func (c *Clip) SetEndedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnded = fn
}

// Close stops the clock and rejects further use. Closing twice is a no-op.
func (c *Clip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.offset = c.positionLocked()
	c.started = time.Time{}
	c.haltLocked()
	c.onEnded = nil
	c.closed = true
	return nil
}
