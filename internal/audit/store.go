package audit

import (
	"context"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Store is an append-only audit log. Implementations must never reorder or
// rewrite events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDriver(ctx context.Context, driver id.PrincipalID) ([]Event, error)
}

// Sink is a write-only destination for fan-out (message brokers, exporters).
// Stores are sinks; not every sink is queryable.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
