package history

import (
	"sync"
	"time"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

// OptimisticBuffer holds locally created records that have not yet been
// confirmed against an authoritative fetch. Adding is synchronous and does
// no I/O, so callers get immediate feedback.
type OptimisticBuffer struct {
	mu      sync.Mutex
	pending []model.SessionRecord
}

// NewOptimisticBuffer returns an empty buffer.
func NewOptimisticBuffer() *OptimisticBuffer {
	return &OptimisticBuffer{}
}

// Add enters a draft record into the buffer. The record is forced
// Optimistic=true and, unless it already carries a temp id, receives a
// fresh one. Missing timestamps default to now so the entry sorts sensibly
// before the server clock arrives.
func (b *OptimisticBuffer) Add(rec model.SessionRecord) model.SessionRecord {
	rec.Optimistic = true
	if rec.ID == "" {
		rec.ID = model.NewTempID()
	}
	if rec.CreatedAt == nil {
		now := time.Now().UTC()
		rec.CreatedAt = &now
	}

	b.mu.Lock()
	b.pending = append(b.pending, rec.Clone())
	b.mu.Unlock()
	return rec
}

// List returns a snapshot of pending records.
func (b *OptimisticBuffer) List() []model.SessionRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.SessionRecord, 0, len(b.pending))
	for _, rec := range b.pending {
		out = append(out, rec.Clone())
	}
	return out
}

// ClearConfirmed drops pending records whose ids appear in ids.
func (b *OptimisticBuffer) ClearConfirmed(ids []string) {
	if len(ids) == 0 {
		return
	}
	confirmed := make(map[string]bool, len(ids))
	for _, id := range ids {
		confirmed[id] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.pending[:0]
	for _, rec := range b.pending {
		if !confirmed[rec.ID] {
			kept = append(kept, rec)
		}
	}
	b.pending = kept
}

// AdoptID swaps a pending record's temp id for the authoritative id echoed
// by a persist call. The record stays in the buffer, still optimistic, so
// the next reconciliation confirms it via the identical-id fast path.
func (b *OptimisticBuffer) AdoptID(tempID, authoritativeID string) bool {
	if tempID == "" || authoritativeID == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.pending {
		if b.pending[i].ID == tempID {
			b.pending[i].ID = authoritativeID
			return true
		}
	}
	return false
}
