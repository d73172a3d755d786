package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "adspot.orders.default", SubjectForEvent("default", EventTypeOrder))
	assert.Equal(t, "adspot.*.default", SubjectForSession("default"))
}

func TestOpen_PublishAndConsume(t *testing.T) {
	ctx := context.Background()
	e, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Close()) }()

	for _, session := range []string{"s1", "s2", "s1"} {
		_, err = e.JS.Publish(ctx, SubjectForEvent(session, EventTypeOrder), []byte(`{}`))
		require.NoError(t, err)
	}

	info, err := e.Stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, StreamName, info.Config.Name)
	assert.Equal(t, uint64(3), info.State.Msgs)

	cons, err := CreateConsumer(ctx, e.Stream, SubjectForEvent("s1", EventTypeOrder))
	require.NoError(t, err)
	batch, err := cons.FetchNoWait(10)
	require.NoError(t, err)
	n := 0
	for msg := range batch.Messages() {
		n++
		assert.Equal(t, "adspot.orders.s1", msg.Subject())
		require.NoError(t, msg.Ack())
	}
	assert.Equal(t, 2, n)
}

func TestPurgeSession(t *testing.T) {
	ctx := context.Background()
	e, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Close()) }()

	for _, session := range []string{"s1", "s2", "s1"} {
		_, err = e.JS.Publish(ctx, SubjectForEvent(session, EventTypeOrder), []byte(`{}`))
		require.NoError(t, err)
	}

	require.NoError(t, PurgeSession(ctx, e.Stream, "s1"))

	info, err := e.Stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)

	cons, err := CreateConsumer(ctx, e.Stream, SubjectForSession("s2"))
	require.NoError(t, err)
	batch, err := cons.FetchNoWait(10)
	require.NoError(t, err)
	n := 0
	for msg := range batch.Messages() {
		n++
		assert.Equal(t, "adspot.orders.s2", msg.Subject())
	}
	assert.Equal(t, 1, n)
}

func TestSetupStream_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, e.Close()) }()

	_, err = SetupStream(ctx, e.JS)
	require.NoError(t, err)
}

func TestShutdown_Nil(t *testing.T) {
	assert.NoError(t, Shutdown(nil, nil))
}
