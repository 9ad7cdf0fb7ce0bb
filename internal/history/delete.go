package history

import (
	"context"
	"log"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
	"github.com/hireprep/hireprep/backend/internal/storage"
)

// DeletionCoordinator performs optimistic removal with server confirmation.
// Each request moves Requested -> OptimisticallyRemoved -> Confirmed on
// success or "not found" (a record already gone is an acceptable terminal
// state, not an error), or -> RolledBack on a genuine collaborator failure,
// reinserting the removed snapshot.
type DeletionCoordinator struct {
	backend storage.Backend
}

// NewDeletionCoordinator wires a coordinator to the backend collaborator.
func NewDeletionCoordinator(backend storage.Backend) *DeletionCoordinator {
	return &DeletionCoordinator{backend: backend}
}

// Delete removes id from the store immediately, then confirms with the
// backend. An empty id fails fast before any collaborator call.
func (d *DeletionCoordinator) Delete(ctx context.Context, store *Store, id string) error {
	if id == "" {
		return ErrIdentifierMissing
	}

	snapshot, existed := store.Remove(id)

	// Temp ids never reached the backend; the local removal is the whole
	// operation.
	if model.IsTempID(id) {
		return nil
	}

	found, err := d.backend.Remove(ctx, store.OwnerID(), id)
	if err != nil {
		if existed {
			store.restore(snapshot)
		}
		log.Printf("[history] delete %s rolled back: %v", id, err)
		return &DeleteError{ID: id, Err: err}
	}
	if !found {
		log.Printf("[history] delete %s: already gone, treated as success", id)
	}
	return nil
}
