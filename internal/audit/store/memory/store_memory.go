// Package memory provides the in-memory audit store used in local mode and
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Store keeps events in an append-only slice per driver plus a global log.
type Store struct {
	mu       sync.RWMutex
	all      []audit.Event
	byDriver map[id.PrincipalID][]audit.Event
}

func New() *Store {
	return &Store{byDriver: make(map[id.PrincipalID][]audit.Event)}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, event)
	if !event.Driver.IsNil() {
		s.byDriver[event.Driver] = append(s.byDriver[event.Driver], event)
	}
	return nil
}

func (s *Store) ListByDriver(_ context.Context, driver id.PrincipalID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.byDriver[driver]...), nil
}

// All returns every recorded event, oldest first. Used by tests asserting
// log-wide properties.
func (s *Store) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.all...)
}
