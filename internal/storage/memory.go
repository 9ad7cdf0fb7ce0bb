package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBackend is an in-memory Backend suitable for development and tests.
// Two knobs exist for exercising the engine's failure paths: SuppressIDEcho
// forces the heuristic reconciliation path, and FailFetch simulates a
// transient backend outage.
type MemoryBackend struct {
	// SuppressIDEcho makes Persist return an empty id even though the
	// record was stored.
	SuppressIDEcho bool

	mu        sync.Mutex
	byOwner   map[string][]RawRecord
	failFetch error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{byOwner: make(map[string][]RawRecord)}
}

// FailFetch makes subsequent FetchAll calls return err; pass nil to heal.
func (m *MemoryBackend) FailFetch(err error) {
	m.mu.Lock()
	m.failFetch = err
	m.mu.Unlock()
}

func (m *MemoryBackend) FetchAll(_ context.Context, ownerID string) ([]RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFetch != nil {
		return nil, m.failFetch
	}

	records := m.byOwner[ownerID]
	out := make([]RawRecord, 0, len(records))
	for _, rec := range records {
		copied := make(RawRecord, len(rec))
		for k, v := range rec {
			copied[k] = v
		}
		out = append(out, copied)
	}
	return out, nil
}

func (m *MemoryBackend) Persist(_ context.Context, ownerID string, fields map[string]any) (string, error) {
	id := uuid.NewString()

	rec := make(RawRecord, len(fields)+3)
	for k, v := range fields {
		rec[k] = v
	}
	rec["docId"] = id
	rec["userId"] = ownerID
	if _, ok := rec["timestamp"]; !ok {
		rec["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}

	m.mu.Lock()
	m.byOwner[ownerID] = append(m.byOwner[ownerID], rec)
	m.mu.Unlock()

	if m.SuppressIDEcho {
		return "", nil
	}
	return id, nil
}

func (m *MemoryBackend) Remove(_ context.Context, ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.byOwner[ownerID]
	for i, rec := range records {
		if rec["docId"] == id {
			m.byOwner[ownerID] = append(records[:i], records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
