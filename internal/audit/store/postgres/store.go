// Package postgres persists audit events to an append-only table. The table
// doubles as an outbox: the kafka publisher can be pointed at it later
// without changing the write path.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
)

// Store implements audit.Store on PostgreSQL. Use the pgx stdlib driver to
// open the *sql.DB handed in here.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the DDL the store expects. Applied by the operator or a test
// harness; the store itself never migrates.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id          UUID PRIMARY KEY,
    kind        TEXT NOT NULL,
    category    TEXT NOT NULL,
    driver_id   UUID NOT NULL,
    actor_id    UUID NOT NULL,
    request_id  TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_driver_idx ON audit_events (driver_id, occurred_at);
`

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const q = `
        INSERT INTO audit_events (id, kind, category, driver_id, actor_id, request_id, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, q,
		event.ID,
		string(event.Kind),
		string(event.Category),
		event.Driver.String(),
		event.Actor.String(),
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByDriver(ctx context.Context, driver id.PrincipalID) ([]audit.Event, error) {
	const q = `
        SELECT id, kind, category, driver_id, actor_id, request_id, occurred_at
        FROM audit_events
        WHERE driver_id = $1
        ORDER BY occurred_at`
	rows, err := s.db.QueryContext(ctx, q, driver.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			kind     string
			category string
			driverID string
			actorID  string
		)
		if err := rows.Scan(&event.ID, &kind, &category, &driverID, &actorID, &event.RequestID, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Kind = audit.Kind(kind)
		event.Category = audit.EventCategory(category)
		// Lifecycle events carry no driver, stored as the nil UUID, so decode
		// through the codec rather than the strict parser.
		if err := event.Driver.UnmarshalText([]byte(driverID)); err != nil {
			return nil, fmt.Errorf("decode driver id: %w", err)
		}
		if err := event.Actor.UnmarshalText([]byte(actorID)); err != nil {
			return nil, fmt.Errorf("decode actor id: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
