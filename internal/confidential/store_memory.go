package confidential

import (
	"context"
	"sync"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/coprocessor"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

// Store holds at most one value handle and one result handle per driver.
// A missing entry is the distinguishable unset state and reads back as the
// zero Handle; it is never conflated with an encrypted zero.
type Store struct {
	mu      sync.RWMutex
	values  map[id.PrincipalID]coprocessor.Handle
	results map[id.PrincipalID]coprocessor.Handle
}

func NewStore() *Store {
	return &Store{
		values:  make(map[id.PrincipalID]coprocessor.Handle),
		results: make(map[id.PrincipalID]coprocessor.Handle),
	}
}

func (s *Store) SetValue(_ context.Context, driver id.PrincipalID, h coprocessor.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[driver] = h
}

func (s *Store) Value(_ context.Context, driver id.PrincipalID) coprocessor.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[driver]
}

func (s *Store) SetResult(_ context.Context, driver id.PrincipalID, h coprocessor.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[driver] = h
}

func (s *Store) Result(_ context.Context, driver id.PrincipalID) coprocessor.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[driver]
}

// Wipe removes both entries for a driver. Deregistration calls this so a
// later re-registration starts from the unset state, not a stale ciphertext.
func (s *Store) Wipe(_ context.Context, driver id.PrincipalID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, driver)
	delete(s.results, driver)
}
