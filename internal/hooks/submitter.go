package hooks

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/wizard"
)

// OrderPayload is written to the stdin of order_placed hooks.
type OrderPayload struct {
	Session  string          `json:"session"`
	Receipt  wizard.Receipt  `json:"receipt"`
	Snapshot wizard.Snapshot `json:"snapshot"`
	Quote    wizard.Quote    `json:"quote"`
}

// Submitter runs the order_placed hooks after next accepts an order. Hook
// failures are logged and never fail the submission.
type Submitter struct {
	next    wizard.Submitter
	hooks   []*HookConfig
	workDir string
	session string
}

// WrapSubmitter returns next unchanged when cfg has no order_placed hooks.
func WrapSubmitter(next wizard.Submitter, cfg *Config, workDir, session string) wizard.Submitter {
	if cfg == nil || len(cfg.Hooks.OrderPlaced) == 0 {
		return next
	}
	return &Submitter{next: next, hooks: cfg.Hooks.OrderPlaced, workDir: workDir, session: session}
}

// Submit implements wizard.Submitter.
func (s *Submitter) Submit(ctx context.Context, snap wizard.Snapshot, quote wizard.Quote) (wizard.Receipt, error) {
	receipt, err := s.next.Submit(ctx, snap, quote)
	if err != nil {
		return receipt, err
	}

	payload, err := json.Marshal(OrderPayload{Session: s.session, Receipt: receipt, Snapshot: snap, Quote: quote})
	if err != nil {
		logger.Warn("Encoding order %s for hooks: %v", receipt.OrderID, err)
		return receipt, nil
	}
	out, err := ExecuteAll(ctx, s.hooks, s.workDir, Variables{
		Session: s.session,
		OrderID: receipt.OrderID,
		Plan:    quote.PlanID,
		Total:   catalog.FormatCents(quote.TotalCents),
	}, payload)
	if err != nil {
		logger.Warn("order_placed hooks interrupted: %v", err)
	} else if out != "" {
		logger.Info("order_placed hooks for %s:\n%s", receipt.OrderID, out)
	}
	return receipt, nil
}

// RunCancelled runs the order_cancelled hooks for id and returns their output.
func RunCancelled(ctx context.Context, cfg *Config, workDir, session, id string) (string, error) {
	if cfg == nil {
		return "", nil
	}
	payload, _ := json.Marshal(map[string]string{"session": session, "order_id": id})
	return ExecuteAll(ctx, cfg.Hooks.OrderCancelled, workDir, Variables{Session: session, OrderID: id}, payload)
}
