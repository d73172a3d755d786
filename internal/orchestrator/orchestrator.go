// Package orchestrator assembles a purchase session: catalog, wizard,
// audio preview, the embedded order log, and a front end (TUI or MCP).
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/config"
	"github.com/mark3labs/adspot/internal/hooks"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/mcpserver"
	"github.com/mark3labs/adspot/internal/nats"
	"github.com/mark3labs/adspot/internal/orders"
	"github.com/mark3labs/adspot/internal/playback"
	"github.com/mark3labs/adspot/internal/tui/adwizard"
	"github.com/mark3labs/adspot/internal/wizard"
)

// Orchestrator owns every component of one session.
type Orchestrator struct {
	cfg *config.Config

	catalog *catalog.Catalog
	wizard  *wizard.Controller
	player  *playback.Controller
	events  *nats.Embedded
	orders  *orders.Store
	submit  wizard.Submitter
	mcp     *mcpserver.Server

	// mu guards the lifecycle fields and component teardown.
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

// New creates an orchestrator. Nothing is started until Start.
func New(cfg *config.Config) (*Orchestrator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{cfg: cfg, ctx: ctx, cancel: cancel}, nil
}

// LoadCatalog returns the configured catalog, validated against the script
// budget.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	var (
		c   *catalog.Catalog
		err error
	)
	if cfg.Catalog != "" {
		c, err = catalog.Load(cfg.Catalog)
	} else {
		c, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := c.Validate(cfg.ScriptBudget); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

// NewPlayer builds a playback controller over simulated clips with each
// audition's duration.
func NewPlayer(c *catalog.Catalog, switchDelay time.Duration) (*playback.Controller, error) {
	durations := make(map[string]time.Duration, len(c.Auditions))
	items := make([]playback.Item, 0, len(c.Auditions))
	for _, a := range c.Auditions {
		durations[a.ID] = a.Duration
		items = append(items, playback.Item{ID: a.ID, Source: a.Source})
	}

	player := playback.New(func(item playback.Item) (playback.Media, error) {
		return playback.NewClip(durations[item.ID]), nil
	}, playback.WithSwitchDelay(switchDelay))
	if err := player.Initialize(items); err != nil {
		return nil, err
	}
	return player, nil
}

// OpenOrderLog starts the embedded NATS server under cfg.DataDir.
func OpenOrderLog(ctx context.Context, cfg *config.Config) (*nats.Embedded, error) {
	dir := filepath.Join(cfg.DataDir, "nats")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create NATS data directory: %w", err)
	}
	return nats.Open(ctx, dir)
}

// Start builds every component. On failure whatever was started is stopped.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopped {
		return errors.New("orchestrator already stopped")
	}
	if o.started {
		return errors.New("orchestrator already started")
	}
	o.started = true
	logger.Info("Starting session '%s'", o.cfg.Session)

	var err error
	if o.catalog, err = LoadCatalog(o.cfg); err != nil {
		return err
	}
	if o.wizard, err = wizard.FromCatalog(o.catalog, o.cfg.DefaultPlan, o.cfg.ScriptBudget, o.cfg.TaxRateBPS); err != nil {
		return fmt.Errorf("failed to create wizard: %w", err)
	}
	if o.player, err = NewPlayer(o.catalog, o.cfg.SwitchDelay); err != nil {
		return errors.Join(fmt.Errorf("failed to initialize playback: %w", err), o.stopLocked())
	}
	if o.events, err = OpenOrderLog(o.ctx, o.cfg); err != nil {
		return errors.Join(fmt.Errorf("failed to open order log: %w", err), o.stopLocked())
	}
	o.orders = orders.NewStore(o.events.JS, o.events.Stream, o.cfg.Session)

	hookCfg, err := LoadHooks()
	if err != nil {
		return errors.Join(err, o.stopLocked())
	}
	o.submit = hooks.WrapSubmitter(o.orders, hookCfg, hooksDir(), o.cfg.Session)

	logger.Info("Session '%s' ready: %d stations, %d auditions, %d plans",
		o.cfg.Session, len(o.catalog.Stations), len(o.catalog.Auditions), len(o.catalog.Plans))
	return nil
}

// LoadHooks reads the optional hooks file from the working directory.
func LoadHooks() (*hooks.Config, error) {
	return hooks.LoadConfig(hooksDir())
}

func hooksDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// Submitter returns what the front ends submit orders through: the order
// store, followed by any order_placed hooks.
func (o *Orchestrator) Submitter() wizard.Submitter {
	return o.submit
}

// Wizard returns the session's wizard controller.
func (o *Orchestrator) Wizard() *wizard.Controller {
	return o.wizard
}

// Orders returns the session's order store.
func (o *Orchestrator) Orders() *orders.Store {
	return o.orders
}

// RunTUI runs the interactive wizard until the user quits.
func (o *Orchestrator) RunTUI() (*adwizard.Result, error) {
	return adwizard.Run(o.ctx, adwizard.Options{
		Wizard:    o.wizard,
		Catalog:   o.catalog,
		Player:    o.player,
		Submitter: o.submit,
	})
}

// Serve exposes the wizard over MCP on addr and returns its URL. The
// server runs until Stop.
func (o *Orchestrator) Serve(addr string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started || o.stopped {
		return "", errors.New("orchestrator is not running")
	}
	if o.mcp != nil {
		return "", errors.New("MCP server already running")
	}
	o.mcp = mcpserver.New(o.wizard, o.catalog, o.submit, o.player)
	if _, err := o.mcp.Start(o.ctx, addr); err != nil {
		o.mcp = nil
		return "", err
	}
	return o.mcp.URL(), nil
}

// Stop shuts every component down. It is safe to call more than once.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopLocked()
}

func (o *Orchestrator) stopLocked() error {
	if o.stopped {
		return nil
	}
	o.stopped = true
	logger.Info("Stopping session '%s'", o.cfg.Session)

	var errs []error
	if o.cancel != nil {
		o.cancel()
	}
	if o.mcp != nil {
		if err := o.mcp.Stop(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if o.player != nil {
		if err := o.player.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("playback dispose: %w", err))
		}
	}
	if o.events != nil {
		if err := o.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("NATS shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
