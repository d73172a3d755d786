// Package playback keeps at most one preview item playing at a time.
//
// A Controller owns the media primitives of a fixed catalog. Switching from
// one item to another is an ordered pipeline: the active id is cleared, every
// other playing item is stopped and rewound (concurrently, each followed by a
// short settle delay), and only then is the requested item started. The new
// active id is committed after Play succeeds. Each request takes a token; a
// pipeline whose token is no longer current does not commit and leaves its
// target stopped.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/adspot/internal/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultSwitchDelay is the settle pause after stopping an item during a switch.
const DefaultSwitchDelay = 50 * time.Millisecond

// Controller enforces single-item playback across a registry of media.
type Controller struct {
	open  Opener
	delay time.Duration

	// opMu serializes pipelines that touch media.
	opMu sync.Mutex

	mu       sync.Mutex
	items    map[string]Media
	order    []string
	active   string
	token    uint64
	ready    bool
	disposed bool

	chMu    sync.Mutex
	changes chan State
	closed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithSwitchDelay overrides the settle pause between stopping and starting.
func WithSwitchDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// New creates a controller that opens media through open.
// Call Initialize before toggling.
func New(open Opener, opts ...Option) *Controller {
	c := &Controller{
		open:    open,
		delay:   DefaultSwitchDelay,
		changes: make(chan State, 8),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize opens media for every item in catalog order.
// On failure all media opened so far are closed and the controller stays empty.
func (c *Controller) Initialize(items []Item) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	switch {
	case c.disposed:
		c.mu.Unlock()
		return ErrDisposed
	case c.ready:
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.mu.Unlock()

	opened := make(map[string]Media, len(items))
	order := make([]string, 0, len(items))
	fail := func(err error) error {
		for _, id := range order {
			_ = opened[id].Close()
		}
		return err
	}

	for _, item := range items {
		if item.ID == "" {
			return fail(fmt.Errorf("playback item with empty id"))
		}
		if _, dup := opened[item.ID]; dup {
			return fail(fmt.Errorf("duplicate playback item %q", item.ID))
		}
		m, err := c.open(item)
		if err != nil {
			return fail(fmt.Errorf("opening %s: %w", item.ID, err))
		}
		id := item.ID
		m.SetEndedHandler(func() { c.handleEnded(id) })
		opened[id] = m
		order = append(order, id)
	}

	c.mu.Lock()
	c.items = opened
	c.order = order
	c.ready = true
	c.mu.Unlock()

	logger.Debug("Playback initialized with %d items", len(order))
	return nil
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{ActiveID: c.active}
}

// Changes delivers state snapshots as they are committed. Slow readers miss
// intermediate snapshots but always receive the latest one. The channel is
// closed by Dispose.
func (c *Controller) Changes() <-chan State {
	return c.changes
}

// Items returns the registered ids in catalog order.
func (c *Controller) Items() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Position reports the playback position of an item.
func (c *Controller) Position(id string) (time.Duration, error) {
	c.mu.Lock()
	m, ok := c.items[id]
	c.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	return m.Position(), nil
}

// Toggle stops id when it is the active item and otherwise switches playback
// to it. The returned state is the one committed by this request.
func (c *Controller) Toggle(ctx context.Context, id string) (State, error) {
	if err := ctx.Err(); err != nil {
		return c.State(), err
	}
	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return State{}, err
	}
	target, ok := c.items[id]
	if !ok {
		st := State{ActiveID: c.active}
		c.mu.Unlock()
		return st, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	c.token++
	tok := c.token
	stopping := c.active == id
	c.mu.Unlock()

	c.opMu.Lock()
	defer c.opMu.Unlock()

	if stopping {
		return c.stopActive(tok, id, target)
	}
	return c.switchTo(ctx, tok, id, target)
}

// Stop silences every item and supersedes any request still in flight.
// A Toggle issued after Stop begins wins over it and Stop reports
// ErrSuperseded.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if err := c.usableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.token++
	tok := c.token
	prev := c.active
	c.active = ""
	c.mu.Unlock()
	if prev != "" {
		c.publish(State{})
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if _, err := c.begin(tok); err != nil {
		c.mu.Unlock()
		return err
	}
	all := make([]entry, 0, len(c.order))
	for _, id := range c.order {
		all = append(all, entry{id: id, media: c.items[id]})
	}
	c.mu.Unlock()

	logger.Debug("Stopping all playback (was %q)", prev)

	var g errgroup.Group
	for _, e := range all {
		if e.id != prev && !e.media.Playing() {
			continue
		}
		g.Go(func() error {
			if err := stop(e.media); err != nil {
				return fmt.Errorf("%s: %w", e.id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Stop failed: %v", err)
		return fmt.Errorf("%w: %w", ErrPlaybackStopFailed, err)
	}
	return nil
}

func (c *Controller) usableLocked() error {
	switch {
	case c.disposed:
		return ErrDisposed
	case !c.ready:
		return ErrNotInitialized
	}
	return nil
}

// begin re-checks the request under the state lock once the pipeline runs.
func (c *Controller) begin(tok uint64) (State, error) {
	if c.disposed {
		return State{}, ErrDisposed
	}
	if c.token != tok {
		return State{ActiveID: c.active}, ErrSuperseded
	}
	return State{}, nil
}

func (c *Controller) stopActive(tok uint64, id string, target Media) (State, error) {
	c.mu.Lock()
	if st, err := c.begin(tok); err != nil {
		c.mu.Unlock()
		return st, err
	}
	if c.active == id {
		c.active = ""
	}
	st := State{ActiveID: c.active}
	c.mu.Unlock()
	c.publish(st)

	logger.Debug("Stopping %s", id)
	if err := stop(target); err != nil {
		logger.Warn("Failed to stop %s: %v", id, err)
		return st, fmt.Errorf("%w: %s: %w", ErrPlaybackStopFailed, id, err)
	}
	return st, nil
}

type entry struct {
	id    string
	media Media
}

func (c *Controller) switchTo(ctx context.Context, tok uint64, id string, target Media) (State, error) {
	c.mu.Lock()
	if st, err := c.begin(tok); err != nil {
		c.mu.Unlock()
		return st, err
	}
	prev := c.active
	c.active = ""
	others := make([]entry, 0, len(c.order))
	for _, oid := range c.order {
		if oid != id {
			others = append(others, entry{id: oid, media: c.items[oid]})
		}
	}
	c.mu.Unlock()
	if prev != "" {
		c.publish(State{})
	}

	logger.Debug("Switching playback %q -> %q", prev, id)

	var g errgroup.Group
	for _, o := range others {
		if o.id != prev && !o.media.Playing() {
			continue
		}
		g.Go(func() error {
			if err := stop(o.media); err != nil {
				return fmt.Errorf("%s: %w", o.id, err)
			}
			c.settle(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Switch to %s aborted: %v", id, err)
		return State{}, fmt.Errorf("%w: %w", ErrPlaybackStopFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return State{}, fmt.Errorf("switching to %s: %w", id, err)
	}

	c.mu.Lock()
	st, err := c.begin(tok)
	c.mu.Unlock()
	if err != nil {
		return st, err
	}

	if err := start(target); err != nil {
		_ = stop(target)
		logger.Warn("Failed to start %s: %v", id, err)
		return c.State(), fmt.Errorf("%w: %s: %w", ErrPlaybackStartFailed, id, err)
	}

	c.mu.Lock()
	if st, err := c.begin(tok); err != nil {
		c.mu.Unlock()
		// A newer request owns the registry now; do not leave our item running.
		_ = stop(target)
		return st, err
	}
	c.active = id
	c.mu.Unlock()
	c.publish(State{ActiveID: id})

	// Very short media may have ended before the commit above.
	if !target.Playing() {
		c.handleEnded(id)
	}
	return c.State(), nil
}

func (c *Controller) settle(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (c *Controller) handleEnded(id string) {
	c.mu.Lock()
	if c.active != id {
		c.mu.Unlock()
		return
	}
	c.active = ""
	c.mu.Unlock()

	logger.Debug("Playback of %s finished", id)
	c.publish(State{})
}

func (c *Controller) publish(st State) {
	c.chMu.Lock()
	defer c.chMu.Unlock()
	if c.closed {
		return
	}
	for {
		select {
		case c.changes <- st:
			return
		default:
			select {
			case <-c.changes:
			default:
			}
		}
	}
}

// Dispose stops and closes every media primitive. Calls after the first are no-ops.
// A switch in flight finishes first and does not commit.
func (c *Controller) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	c.token++
	c.mu.Unlock()

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	items, order := c.items, c.order
	c.items, c.order = nil, nil
	c.active = ""
	c.ready = false
	c.mu.Unlock()

	var errs []error
	for _, id := range order {
		m := items[id]
		m.SetEndedHandler(nil)
		if err := stop(m); err != nil {
			errs = append(errs, fmt.Errorf("stopping %s: %w", id, err))
		}
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", id, err))
		}
	}

	c.publish(State{})
	c.chMu.Lock()
	c.closed = true
	close(c.changes)
	c.chMu.Unlock()

	logger.Debug("Playback disposed (%d items)", len(order))
	return errors.Join(errs...)
}

func stop(m Media) error {
	if err := m.Pause(); err != nil {
		return err
	}
	return m.Seek(0)
}

func start(m Media) error {
	if err := m.Seek(0); err != nil {
		return err
	}
	return m.Play()
}
