// Package redisstore persists audit events to a Redis stream. Streams are
// append-only, which matches the audit contract, and XRANGE gives ordered
// reads for operational queries.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

const streamKey = "audit:events"

// Store writes events to a single Redis stream, one entry per event, payload
// JSON under the "event" field.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]any{"event": payload},
	}).Err()
}

// ListByDriver scans the stream and filters client-side. Audit reads are an
// operational path, not a hot path; a scan keeps the write side index-free.
func (s *Store) ListByDriver(ctx context.Context, driver id.PrincipalID) ([]audit.Event, error) {
	entries, err := s.client.XRange(ctx, streamKey, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read audit stream: %w", err)
	}

	var events []audit.Event
	for _, entry := range entries {
		raw, ok := entry.Values["event"].(string)
		if !ok {
			continue
		}
		var event audit.Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("decode audit event %s: %w", entry.ID, err)
		}
		if event.Driver == driver {
			events = append(events, event)
		}
	}
	return events, nil
}
