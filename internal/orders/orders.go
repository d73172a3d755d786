// Package orders records confirmed ad purchases as events on the embedded
// JetStream log. Nothing is charged; the event is the order.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/nats"
	"github.com/mark3labs/adspot/internal/wizard"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	ActionPlaced    = "placed"
	ActionCancelled = "cancelled"
)

// ErrUnknownOrder is returned when cancelling an order that was never placed.
var ErrUnknownOrder = errors.New("unknown order")

// Event is one entry of the order log.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Session   string          `json:"session"`
	Action    string          `json:"action"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// Order is a placed purchase reconstructed from the log.
type Order struct {
	ID        string       `json:"id"`
	Session   string       `json:"session"`
	PlacedAt  time.Time    `json:"placed_at"`
	Stations  []string     `json:"stations"`
	Script    string       `json:"script"`
	Quote     wizard.Quote `json:"quote"`
	Cancelled bool         `json:"cancelled"`
}

type placedMeta struct {
	Stations []string     `json:"stations"`
	Script   string       `json:"script"`
	Quote    wizard.Quote `json:"quote"`
}

// Store publishes and replays order events for one session.
type Store struct {
	js      jetstream.JetStream
	stream  jetstream.Stream
	session string
	now     func() time.Time
	newID   func() string
	replay  func(ctx context.Context, stream jetstream.Stream, filter string) (jetstream.Consumer, error)
}

// NewStore returns a Store writing to session's subject.
func NewStore(js jetstream.JetStream, stream jetstream.Stream, session string) *Store {
	return &Store{
		js:      js,
		stream:  stream,
		session: session,
		now:     time.Now,
		newID:   uuid.NewString,
		replay:  nats.CreateConsumer,
	}
}

// Session is the session new orders are recorded under.
func (s *Store) Session() string {
	return s.session
}

// Submit records a placed order. It satisfies wizard.Submitter.
func (s *Store) Submit(ctx context.Context, snap wizard.Snapshot, quote wizard.Quote) (wizard.Receipt, error) {
	meta, err := json.Marshal(placedMeta{Stations: snap.Channels, Script: snap.Script, Quote: quote})
	if err != nil {
		return wizard.Receipt{}, fmt.Errorf("failed to marshal order: %w", err)
	}
	ev := Event{
		ID:        s.newID(),
		Timestamp: s.now().UTC(),
		Session:   s.session,
		Action:    ActionPlaced,
		Meta:      meta,
	}
	if err := s.publish(ctx, ev); err != nil {
		return wizard.Receipt{}, err
	}
	return wizard.Receipt{OrderID: ev.ID, PlacedAt: ev.Timestamp}, nil
}

// Cancel marks a previously placed order as cancelled.
func (s *Store) Cancel(ctx context.Context, id string) error {
	list, err := s.List(ctx, s.session)
	if err != nil {
		return err
	}
	found := false
	for _, o := range list {
		if o.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}
	return s.publish(ctx, Event{
		ID:        id,
		Timestamp: s.now().UTC(),
		Session:   s.session,
		Action:    ActionCancelled,
	})
}

func (s *Store) publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	subject := nats.SubjectForEvent(ev.Session, nats.EventTypeOrder)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish %s event to %s: %v", ev.Action, subject, err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	logger.Debug("Order event published: id=%s action=%s seq=%d", ev.ID, ev.Action, ack.Sequence)
	return nil
}

// List replays session's events and returns its orders oldest first.
func (s *Store) List(ctx context.Context, session string) ([]Order, error) {
	consumer, err := s.replay(ctx, s.stream, nats.SubjectForEvent(session, nats.EventTypeOrder))
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	byID := make(map[string]*Order)
	const batchSize = 500
	malformed := 0
	for {
		batch, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			logger.Error("Fetching order events for session %s: %v", session, err)
			return nil, fmt.Errorf("failed to fetch order events: %w", err)
		}
		n := 0
		for msg := range batch.Messages() {
			n++
			var ev Event
			if err := json.Unmarshal(msg.Data(), &ev); err != nil {
				malformed++
			} else {
				apply(byID, ev)
			}
			_ = msg.Ack()
		}
		if err := batch.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) {
			logger.Error("Reading order events for session %s: %v", session, err)
			return nil, fmt.Errorf("failed to read order events: %w", err)
		}
		if n < batchSize {
			break
		}
	}
	if malformed > 0 {
		logger.Warn("Skipped %d malformed order events for session %s", malformed, session)
	}

	out := make([]Order, 0, len(byID))
	for _, o := range byID {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PlacedAt.Before(out[j].PlacedAt)
	})
	return out, nil
}

// Reset deletes every event of the store's session.
func (s *Store) Reset(ctx context.Context) error {
	if err := nats.PurgeSession(ctx, s.stream, s.session); err != nil {
		return err
	}
	logger.Info("Order log of session %s reset", s.session)
	return nil
}

func apply(byID map[string]*Order, ev Event) {
	switch ev.Action {
	case ActionPlaced:
		var meta placedMeta
		if err := json.Unmarshal(ev.Meta, &meta); err != nil {
			logger.Warn("Order %s has unreadable meta: %v", ev.ID, err)
			return
		}
		byID[ev.ID] = &Order{
			ID:       ev.ID,
			Session:  ev.Session,
			PlacedAt: ev.Timestamp,
			Stations: meta.Stations,
			Script:   meta.Script,
			Quote:    meta.Quote,
		}
	case ActionCancelled:
		if o, ok := byID[ev.ID]; ok {
			o.Cancelled = true
		}
	}
}
