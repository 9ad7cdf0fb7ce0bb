package history

import (
	"sync"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

// Store is the canonical owner-scoped history collection, the single source
// of truth for anything rendering history. It is the only mutable shared
// state in the engine and is written exclusively by reconciliation output,
// optimistic inserts, and deletion transitions.
type Store struct {
	ownerID string

	mu      sync.RWMutex
	records []model.SessionRecord
	index   map[string]int
}

// NewStore returns an empty store scoped to ownerID.
func NewStore(ownerID string) *Store {
	return &Store{
		ownerID: ownerID,
		index:   make(map[string]int),
	}
}

// OwnerID reports the owner this store is scoped to.
func (s *Store) OwnerID() string { return s.ownerID }

// Replace installs the output of a reconciliation pass wholesale. Callers
// enforce the fail-open rule (a failed or empty fetch never reaches
// Replace); the store itself just swaps state.
func (s *Store) Replace(records []model.SessionRecord) {
	next := make([]model.SessionRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if _, dup := index[rec.ID]; dup {
			continue
		}
		index[rec.ID] = len(next)
		next = append(next, rec.Clone())
	}

	s.mu.Lock()
	s.records = next
	s.index = index
	s.mu.Unlock()
}

// UpsertOptimistic inserts or overwrites a provisional record so the UI
// reflects a new session with zero latency.
func (s *Store) UpsertOptimistic(rec model.SessionRecord) {
	rec.Optimistic = true

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[rec.ID]; ok {
		s.records[i] = rec.Clone()
		return
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec.Clone())
}

// restore reinserts a snapshot removed by a failed delete, preserving its
// optimistic flag.
func (s *Store) restore(rec model.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[rec.ID]; ok {
		s.records[i] = rec.Clone()
		return
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec.Clone())
}

// Remove deletes a record by id, returning the removed snapshot so a
// failed delete can roll it back.
func (s *Store) Remove(id string) (model.SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.SessionRecord{}, false
	}
	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].ID] = j
	}
	return removed, true
}

// All returns a snapshot of the current records.
func (s *Store) All() []model.SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SessionRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out
}

// Len reports the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
