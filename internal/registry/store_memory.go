package registry

import (
	"context"
	"sync"

	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
	"github.com/ClarenceRuth/cipher-shipment-stream/pkg/platform/sentinel"
)

// Store is the in-memory membership arena: a backing slice for ordered
// iteration and pagination, an index map for O(1) lookup, and a cached count
// maintained synchronously on every mutation.
//
// Removal is swap-remove: the last element overwrites the removed slot and
// the slice shrinks by one. Backing order is therefore NOT stable across
// removals; pagination callers see the current order, nothing more.
type Store struct {
	mu      sync.RWMutex
	entries []id.PrincipalID
	index   map[id.PrincipalID]int
	count   int
}

func NewStore() *Store {
	return &Store{index: make(map[id.PrincipalID]int)}
}

func (s *Store) Add(_ context.Context, driver id.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[driver]; ok {
		return sentinel.ErrConflict
	}
	s.index[driver] = len(s.entries)
	s.entries = append(s.entries, driver)
	s.count = len(s.entries)
	return nil
}

// AddBatch appends every driver in one critical section and syncs the cached
// count once, after the loop. Callers are responsible for dedupe.
func (s *Store) AddBatch(_ context.Context, drivers []id.PrincipalID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, driver := range drivers {
		s.index[driver] = len(s.entries)
		s.entries = append(s.entries, driver)
	}
	s.count = len(s.entries)
}

func (s *Store) Remove(_ context.Context, driver id.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.removeLocked(driver); err != nil {
		return err
	}
	s.count = len(s.entries)
	return nil
}

// RemoveBatch removes every driver in one critical section, skipping
// non-members, and syncs the cached count once. Returns the drivers actually
// removed.
func (s *Store) RemoveBatch(_ context.Context, drivers []id.PrincipalID) []id.PrincipalID {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := make([]id.PrincipalID, 0, len(drivers))
	for _, driver := range drivers {
		if err := s.removeLocked(driver); err == nil {
			removed = append(removed, driver)
		}
	}
	s.count = len(s.entries)
	return removed
}

// removeLocked swap-removes one entry. Callers must hold s.mu.
func (s *Store) removeLocked(driver id.PrincipalID) error {
	pos, ok := s.index[driver]
	if !ok {
		return sentinel.ErrNotFound
	}
	last := len(s.entries) - 1
	moved := s.entries[last]
	s.entries[pos] = moved
	s.index[moved] = pos
	s.entries = s.entries[:last]
	delete(s.index, driver)
	return nil
}

func (s *Store) Contains(_ context.Context, driver id.PrincipalID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[driver]
	return ok
}

// Count returns the cached count, never a recount.
func (s *Store) Count(context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Page returns up to limit entries starting at offset in current backing
// order. Offsets at or past the count are out of range.
func (s *Store) Page(_ context.Context, offset, limit int) ([]id.PrincipalID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 || offset >= len(s.entries) {
		return nil, sentinel.ErrNotFound
	}
	end := offset + limit
	if limit < 0 || end > len(s.entries) {
		end = len(s.entries)
	}
	return append([]id.PrincipalID{}, s.entries[offset:end]...), nil
}

// Snapshot copies the full backing list in current order, for tests
// asserting arena invariants.
func (s *Store) Snapshot(context.Context) []id.PrincipalID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.PrincipalID{}, s.entries...)
}
