package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName = "adspot_events"

	// EventTypeOrder is the only event family recorded today.
	EventTypeOrder = "orders"

	retention = 90 * 24 * time.Hour
)

// SubjectForSession matches every event of a session.
// Example: "adspot.orders.default" is matched by "adspot.*.default".
func SubjectForSession(session string) string {
	return fmt.Sprintf("adspot.*.%s", session)
}

// SubjectForEvent is the subject one event type is published on.
// Example: "adspot.orders.default"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("adspot.%s.%s", eventType, session)
}

// SetupStream creates or updates the stream capturing all adspot subjects.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"adspot.>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   retention,
	})
}

// CreateConsumer creates an ephemeral consumer that replays every event on
// filter from the start of the stream.
func CreateConsumer(ctx context.Context, stream jetstream.Stream, filter string) (jetstream.Consumer, error) {
	return stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
}

// PurgeSession removes every event recorded for session.
func PurgeSession(ctx context.Context, stream jetstream.Stream, session string) error {
	if err := stream.Purge(ctx, jetstream.WithPurgeSubject(SubjectForSession(session))); err != nil {
		return fmt.Errorf("failed to purge session %s: %w", session, err)
	}
	return nil
}
