package audit

import (
	"context"

	"github.com/google/uuid"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and writes
// through the storage layer so tests can swap sinks easily. Optional extra
// sinks (broker publishers) receive the same event after the store accepts it.
type Publisher struct {
	store Store
	sinks []Sink
}

func NewPublisher(store Store, sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks}
}

// Emit stamps and persists an event. The event ID, category, request ID and
// timestamp are filled here so call sites only name the operation and parties.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = event.Kind.Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx).UTC()
	}

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// List returns the events recorded for one driver, oldest first.
func (p *Publisher) List(ctx context.Context, driver id.PrincipalID) ([]Event, error) {
	return p.store.ListByDriver(ctx, driver)
}
