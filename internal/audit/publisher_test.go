package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/store/memory"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

type captureSink struct {
	events []audit.Event
}

func (c *captureSink) Append(_ context.Context, event audit.Event) error {
	c.events = append(c.events, event)
	return nil
}

func TestPublisherEmit(t *testing.T) {
	ctx := context.Background()
	driver := id.NewPrincipalID()
	actor := id.NewPrincipalID()

	t.Run("stamps id, category, and timestamp", func(t *testing.T) {
		store := memory.New()
		pub := audit.NewPublisher(store)

		err := pub.Emit(ctx, audit.Event{Kind: audit.KindDriverRegistered, Driver: driver, Actor: actor})
		require.NoError(t, err)

		events, err := pub.List(ctx, driver)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.NotEmpty(t, events[0].ID)
		assert.Equal(t, audit.CategoryOperations, events[0].Category)
		assert.False(t, events[0].Timestamp.IsZero())
	})

	t.Run("picks up the request id from context", func(t *testing.T) {
		store := memory.New()
		pub := audit.NewPublisher(store)
		reqCtx := requestcontext.WithRequestID(ctx, "req-123")

		require.NoError(t, pub.Emit(reqCtx, audit.Event{Kind: audit.KindValueSubmitted, Driver: driver, Actor: actor}))

		events, err := pub.List(ctx, driver)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "req-123", events[0].RequestID)
	})

	t.Run("fans out to extra sinks after the store accepts", func(t *testing.T) {
		store := memory.New()
		sink := &captureSink{}
		pub := audit.NewPublisher(store, sink)

		require.NoError(t, pub.Emit(ctx, audit.Event{Kind: audit.KindPaused, Actor: actor}))
		require.Len(t, sink.events, 1)
		assert.Equal(t, audit.CategorySecurity, sink.events[0].Category)
	})

	t.Run("stamps every event in one request with the shared now", func(t *testing.T) {
		store := memory.New()
		pub := audit.NewPublisher(store)
		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		reqCtx := requestcontext.WithTime(ctx, now)

		require.NoError(t, pub.Emit(reqCtx, audit.Event{Kind: audit.KindDriverRegistered, Driver: driver, Actor: actor}))
		require.NoError(t, pub.Emit(reqCtx, audit.Event{Kind: audit.KindValueSubmitted, Driver: driver, Actor: actor}))

		events, err := pub.List(ctx, driver)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.True(t, events[0].Timestamp.Equal(now))
		assert.True(t, events[1].Timestamp.Equal(now))
	})

	t.Run("keeps a caller-provided timestamp", func(t *testing.T) {
		store := memory.New()
		pub := audit.NewPublisher(store)
		at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

		require.NoError(t, pub.Emit(ctx, audit.Event{
			Kind: audit.KindDriverRegistered, Driver: driver, Actor: actor, Timestamp: at,
		}))

		events, err := pub.List(ctx, driver)
		require.NoError(t, err)
		assert.True(t, events[len(events)-1].Timestamp.Equal(at))
	})
}

// TestEventCarriesNoValueFields pins the confidentiality property: the wire
// form of an audit event has no field that could carry a submitted value or
// a ciphertext handle.
func TestEventCarriesNoValueFields(t *testing.T) {
	event := audit.Event{
		ID:        "evt-1",
		Kind:      audit.KindValueSubmitted,
		Category:  audit.CategoryCompliance,
		Driver:    id.NewPrincipalID(),
		Actor:     id.NewPrincipalID(),
		RequestID: "req-9",
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	allowed := map[string]struct{}{
		"id": {}, "kind": {}, "category": {}, "driver": {},
		"actor": {}, "request_id": {}, "timestamp": {},
	}
	for name := range fields {
		_, ok := allowed[name]
		assert.True(t, ok, "unexpected audit field %q", name)
	}
}

func TestWorker(t *testing.T) {
	store := memory.New()
	inbox := make(chan audit.Event, 1)
	worker := audit.NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	driver := id.NewPrincipalID()
	inbox <- audit.Event{ID: "evt-1", Kind: audit.KindDriverRegistered, Driver: driver}

	require.Eventually(t, func() bool {
		events, err := store.ListByDriver(context.Background(), driver)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// TestChannelSinkFanOut runs the full asynchronous path: the publisher queues
// the event through a ChannelSink and a worker delivers it to the slow sink.
func TestChannelSinkFanOut(t *testing.T) {
	ctx := context.Background()
	driver := id.NewPrincipalID()

	store := memory.New()
	broker := memory.New()
	inbox := make(chan audit.Event, 4)
	pub := audit.NewPublisher(store, audit.NewChannelSink(inbox))
	worker := audit.NewWorker(broker, inbox)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = worker.Run(runCtx) }()

	require.NoError(t, pub.Emit(ctx, audit.Event{Kind: audit.KindDriverRegistered, Driver: driver}))

	require.Eventually(t, func() bool {
		events, err := broker.ListByDriver(ctx, driver)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

// TestChannelSinkNeverBlocks pins that a full queue sheds events instead of
// stalling the caller; the primary store keeps the durable record either way.
func TestChannelSinkNeverBlocks(t *testing.T) {
	inbox := make(chan audit.Event, 1)
	sink := audit.NewChannelSink(inbox)

	require.NoError(t, sink.Append(context.Background(), audit.Event{ID: "evt-1"}))
	require.NoError(t, sink.Append(context.Background(), audit.Event{ID: "evt-2"}))

	queued := <-inbox
	assert.Equal(t, "evt-1", queued.ID)
	select {
	case extra := <-inbox:
		t.Fatalf("expected the overflow event to be dropped, got %q", extra.ID)
	default:
	}
}
