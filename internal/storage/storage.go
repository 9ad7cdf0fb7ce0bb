// Package storage defines the persistent-store collaborator consumed by the
// history engine, plus its concrete realizations. The engine never assumes a
// particular store technology; everything behind this interface is
// transport-agnostic.
package storage

import "context"

// RawRecord is an unparsed backend payload. Field names and value shapes
// vary per backend; the history normalizer is the sole adapter boundary.
type RawRecord = map[string]any

// Backend is the abstract persistent store for one feature's sessions.
type Backend interface {
	// FetchAll returns every persisted session for the owner. A failure
	// must not be interpreted as an empty history.
	FetchAll(ctx context.Context, ownerID string) ([]RawRecord, error)

	// Persist stores a new session and may return the authoritative id
	// immediately. An empty id with nil error is valid: the caller then
	// relies on heuristic reconciliation against a later FetchAll.
	Persist(ctx context.Context, ownerID string, fields map[string]any) (string, error)

	// Remove deletes a session. found=false with nil error means the record
	// was already gone, which callers treat as success.
	Remove(ctx context.Context, ownerID, id string) (bool, error)
}
