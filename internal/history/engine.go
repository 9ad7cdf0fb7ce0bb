package history

import (
	"context"
	"log"
	"sync"
	"time"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
	"github.com/hireprep/hireprep/backend/internal/storage"
)

// Draft is the feature-facing input for a new history entry.
type Draft struct {
	Score    *float64
	Feedback string
	Extra    map[string]any
}

// Engine ties the optimistic buffer, the reconciler, the owner-scoped
// stores, and the deletion coordinator together over one backend
// collaborator. Feature services hold one Engine per feature.
//
// Writes flow exactly one way: user action -> buffer (immediate) ->
// background persist -> background fetch -> merge -> store. A failed or
// empty fetch leaves the store untouched (fail-open). Nothing in the engine
// retries; callers decide that.
type Engine struct {
	feature    string
	backend    storage.Backend
	reconciler *Reconciler

	persistTimeout time.Duration

	mu     sync.Mutex
	owners map[string]*ownerScope
	closed bool

	// persistWG lets tests wait for background persists to settle.
	persistWG sync.WaitGroup
}

// ownerScope is the per-owner state: one buffer, one canonical store.
// mu serializes the buffer+store write pairs (Submit's dual insert,
// Refresh's list-merge-replace window) so neither can interleave with
// the other and drop a record from the store.
type ownerScope struct {
	mu     sync.Mutex
	buffer *OptimisticBuffer
	store  *Store
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	Match          MatchOptions
	PersistTimeout time.Duration
}

// NewEngine builds an engine for one feature over the given backend.
func NewEngine(feature string, backend storage.Backend, opts EngineOptions) *Engine {
	timeout := opts.PersistTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Engine{
		feature:        feature,
		backend:        backend,
		reconciler:     NewReconciler(opts.Match),
		persistTimeout: timeout,
		owners:         make(map[string]*ownerScope),
	}
}

// Feature reports which feature this engine records.
func (e *Engine) Feature() string { return e.feature }

func (e *Engine) scope(ownerID string) (*ownerScope, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}
	sc, ok := e.owners[ownerID]
	if !ok {
		sc = &ownerScope{
			buffer: NewOptimisticBuffer(),
			store:  NewStore(ownerID),
		}
		e.owners[ownerID] = sc
	}
	return sc, nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Submit records a new session optimistically and dispatches the persist
// call in the background. The returned record carries a temp id and is
// already visible through Records/Project. The persist call runs on its own
// context so tearing down the request does not abort it; its result is
// discarded if the engine has been closed meanwhile.
func (e *Engine) Submit(ctx context.Context, ownerID string, draft Draft) (model.SessionRecord, error) {
	sc, err := e.scope(ownerID)
	if err != nil {
		return model.SessionRecord{}, err
	}

	rec := model.SessionRecord{
		OwnerID:  ownerID,
		Score:    draft.Score,
		Feedback: draft.Feedback,
		Extra:    draft.Extra,
	}
	sc.mu.Lock()
	rec = sc.buffer.Add(rec)
	sc.store.UpsertOptimistic(rec)
	sc.mu.Unlock()

	fields := persistFields(rec)
	tempID := rec.ID

	e.persistWG.Add(1)
	go func() {
		defer e.persistWG.Done()

		pctx, cancel := context.WithTimeout(context.Background(), e.persistTimeout)
		defer cancel()

		authID, err := e.backend.Persist(pctx, ownerID, fields)
		if e.isClosed() {
			return // owning context torn down; discard the result
		}
		if err != nil {
			// The optimistic entry stays visible; a later fetch or retry
			// by the caller decides its fate.
			log.Printf("[history] %s persist for owner=%s failed: %v", e.feature, ownerID, err)
			return
		}
		if authID != "" {
			// Fast path: the next merge confirms by identical id.
			sc.buffer.AdoptID(tempID, authID)
		}
	}()

	return rec, nil
}

// Refresh fetches the authoritative list, reconciles it with pending
// optimistic records, and installs the merged set. On fetch failure, a nil
// list, or an empty list the previous state is retained unchanged — the
// fail-open rule — and no error is surfaced for the transient case.
func (e *Engine) Refresh(ctx context.Context, ownerID string) ([]model.SessionRecord, error) {
	sc, err := e.scope(ownerID)
	if err != nil {
		return nil, err
	}

	raw, err := e.backend.FetchAll(ctx, ownerID)
	if e.isClosed() {
		return nil, ErrEngineClosed
	}
	if err != nil {
		log.Printf("[history] %s fetch for owner=%s failed, keeping local state: %v", e.feature, ownerID, err)
		return sc.store.All(), nil
	}
	if len(raw) == 0 {
		return sc.store.All(), nil
	}

	authoritative := make([]model.SessionRecord, 0, len(raw))
	for _, payload := range raw {
		rec := Normalize(payload)
		if rec.OwnerID == "" {
			rec.OwnerID = ownerID
		}
		authoritative = append(authoritative, rec)
	}

	// The merge window is serialized per owner so a Submit landing here
	// cannot be wiped from the store by Replace.
	sc.mu.Lock()
	defer sc.mu.Unlock()

	pending := sc.buffer.List()
	merged := e.reconciler.Merge(authoritative, pending)
	sc.buffer.ClearConfirmed(e.reconciler.Confirmed(authoritative, pending))

	sc.store.Replace(merged)
	return sc.store.All(), nil
}

// Records returns the current canonical snapshot without refreshing.
func (e *Engine) Records(ownerID string) ([]model.SessionRecord, error) {
	sc, err := e.scope(ownerID)
	if err != nil {
		return nil, err
	}
	return sc.store.All(), nil
}

// Project applies query controls over the current snapshot.
func (e *Engine) Project(ownerID string, controls Controls) ([]model.SessionRecord, error) {
	records, err := e.Records(ownerID)
	if err != nil {
		return nil, err
	}
	return Project(records, controls), nil
}

// Export renders the owner's history as delimited text.
func (e *Engine) Export(ownerID string, columns []string, delimiter string) (string, error) {
	records, err := e.Project(ownerID, Controls{SortKey: SortByCreatedAt, SortDirection: "desc"})
	if err != nil {
		return "", err
	}
	return ToDelimitedText(records, columns, delimiter), nil
}

// Delete runs the deletion coordinator for one record.
func (e *Engine) Delete(ctx context.Context, ownerID, id string) error {
	sc, err := e.scope(ownerID)
	if err != nil {
		return err
	}
	coordinator := NewDeletionCoordinator(e.backend)
	if err := coordinator.Delete(ctx, sc.store, id); err != nil {
		return err
	}
	// Drop any matching pending entry so a confirmed delete cannot
	// resurrect through a later merge.
	sc.buffer.ClearConfirmed([]string{id})
	return nil
}

// Close flips the liveness flag; in-flight persist and fetch results are
// discarded rather than applied to a torn-down engine.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// WaitForPersists blocks until background persist calls have settled. Test
// helper; production callers never need it.
func (e *Engine) WaitForPersists() {
	e.persistWG.Wait()
}

func persistFields(rec model.SessionRecord) map[string]any {
	fields := make(map[string]any, len(rec.Extra)+3)
	for k, v := range rec.Extra {
		fields[k] = v
	}
	if rec.Score != nil {
		fields["score"] = *rec.Score
	}
	fields["feedback"] = rec.Feedback
	if rec.CreatedAt != nil {
		fields["timestamp"] = rec.CreatedAt.UTC().Format(time.RFC3339)
	}
	return fields
}
