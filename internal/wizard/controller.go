// Package wizard drives the linear Create → Preview → Schedule → Confirm flow
// and the selections each stage edits. Selections survive stage changes for
// the lifetime of a Controller.
package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/logger"
)

// Snapshot is a read-only copy of the wizard state.
type Snapshot struct {
	Stage    Stage    `json:"stage"`
	Channels []string `json:"channels"`
	PlanID   string   `json:"plan_id"`
	Script   string   `json:"script"`
}

// Quote is the price derived from the chosen plan.
type Quote struct {
	PlanID        string `json:"plan_id"`
	PlanName      string `json:"plan_name"`
	SubtotalCents int64  `json:"subtotal_cents"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`
}

// Receipt is what the submission collaborator hands back.
type Receipt struct {
	OrderID  string    `json:"order_id"`
	PlacedAt time.Time `json:"placed_at"`
}

// Submitter receives the final selections once the user confirms.
type Submitter interface {
	Submit(ctx context.Context, snap Snapshot, quote Quote) (Receipt, error)
}

// Config configures a Controller.
type Config struct {
	Plans        []catalog.Plan
	DefaultPlan  string
	ScriptBudget int
	TaxRateBPS   int
	Script       string
}

// Controller owns the wizard State. It is not safe for concurrent use;
// callers serialize access.
type Controller struct {
	rules   Rules
	plans   map[string]catalog.Plan
	taxBPS  int64
	state   State
	receipt *Receipt
}

// New creates a controller positioned at the first stage.
func New(cfg Config) (*Controller, error) {
	if cfg.ScriptBudget <= 0 {
		return nil, fmt.Errorf("script budget must be positive, got %d", cfg.ScriptBudget)
	}
	plans := make(map[string]catalog.Plan, len(cfg.Plans))
	ids := make([]string, 0, len(cfg.Plans))
	for _, p := range cfg.Plans {
		plans[p.ID] = p
		ids = append(ids, p.ID)
	}
	rules := Rules{Plans: ids, DefaultPlan: cfg.DefaultPlan, ScriptBudget: cfg.ScriptBudget}

	initial, err := rules.Initial(cfg.Script)
	if err != nil {
		return nil, err
	}
	return &Controller{
		rules:  rules,
		plans:  plans,
		taxBPS: int64(cfg.TaxRateBPS),
		state:  initial,
	}, nil
}

// FromCatalog builds a controller whose plans and draft script come from c.
func FromCatalog(c *catalog.Catalog, defaultPlan string, scriptBudget, taxRateBPS int) (*Controller, error) {
	return New(Config{
		Plans:        c.Plans,
		DefaultPlan:  defaultPlan,
		ScriptBudget: scriptBudget,
		TaxRateBPS:   taxRateBPS,
		Script:       c.Script,
	})
}

// Stage returns the current stage.
func (c *Controller) Stage() Stage {
	return c.state.Stage
}

// State returns the current state value.
func (c *Controller) State() State {
	return c.state
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Stage:    c.state.Stage,
		Channels: c.state.Channels(),
		PlanID:   c.state.PlanID,
		Script:   c.state.Script,
	}
}

// Advance moves forward one stage and reports whether it moved.
func (c *Controller) Advance() bool {
	var moved bool
	c.state, moved = Advance(c.state)
	return moved
}

// Retreat moves back one stage and reports whether it moved.
func (c *Controller) Retreat() bool {
	var moved bool
	c.state, moved = Retreat(c.state)
	return moved
}

// JumpTo moves directly to stage.
func (c *Controller) JumpTo(stage Stage) error {
	next, err := JumpTo(c.state, stage)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// ToggleChannel flips channel id and returns whether it is now selected.
func (c *Controller) ToggleChannel(id string) (bool, error) {
	next, err := ToggleChannel(c.state, id)
	if err != nil {
		return false, err
	}
	c.state = next
	return next.HasChannel(id), nil
}

// ChoosePlan selects one of the known plans.
func (c *Controller) ChoosePlan(id string) error {
	next, err := c.rules.ChoosePlan(c.state, id)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// SetScriptText replaces the script when it fits the character budget.
func (c *Controller) SetScriptText(text string) error {
	next, err := c.rules.SetScript(c.state, text)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Budget is the maximum script length in characters.
func (c *Controller) Budget() int {
	return c.rules.ScriptBudget
}

// Remaining is the number of characters left in the script budget.
func (c *Controller) Remaining() int {
	return c.rules.Remaining(c.state.Script)
}

// Plan returns the currently chosen plan.
func (c *Controller) Plan() catalog.Plan {
	return c.plans[c.state.PlanID]
}

// Quote prices the chosen plan. Tax is truncated to whole cents.
func (c *Controller) Quote() Quote {
	p := c.plans[c.state.PlanID]
	tax := p.PriceCents * c.taxBPS / 10000
	return Quote{
		PlanID:        p.ID,
		PlanName:      p.Name,
		SubtotalCents: p.PriceCents,
		TaxCents:      tax,
		TotalCents:    p.PriceCents + tax,
	}
}

// Submitted returns the receipt of a successful submission, if any.
func (c *Controller) Submitted() (Receipt, bool) {
	if c.receipt == nil {
		return Receipt{}, false
	}
	return *c.receipt, true
}

// Submit hands the final snapshot and quote to s. It is only allowed at the
// confirm stage, with at least one station, and succeeds at most once.
func (c *Controller) Submit(ctx context.Context, s Submitter) (Receipt, error) {
	switch {
	case c.receipt != nil:
		return *c.receipt, ErrAlreadySubmitted
	case c.state.Stage != StageConfirm:
		return Receipt{}, ErrNotAtConfirm
	case len(c.state.channels) == 0:
		return Receipt{}, ErrNoChannels
	}

	snap, quote := c.Snapshot(), c.Quote()
	receipt, err := s.Submit(ctx, snap, quote)
	if err != nil {
		return Receipt{}, fmt.Errorf("submitting order: %w", err)
	}
	c.receipt = &receipt
	logger.Info("Order %s submitted: plan=%s stations=%d total=%s",
		receipt.OrderID, quote.PlanID, len(snap.Channels), catalog.FormatCents(quote.TotalCents))
	return receipt, nil
}
