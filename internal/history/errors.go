package history

import "errors"

var (
	// ErrIdentifierMissing marks a delete or persist attempted without a
	// usable id. It is a precondition failure and is returned before any
	// collaborator call is made.
	ErrIdentifierMissing = errors.New("record identifier is required")

	// ErrOwnerRequired marks an operation invoked without an owner scope.
	ErrOwnerRequired = errors.New("owner id is required")

	// ErrEngineClosed is returned when an operation reaches an engine whose
	// owning context has been torn down.
	ErrEngineClosed = errors.New("history engine is closed")
)

// DeleteError wraps a genuine collaborator failure during deletion, after the
// optimistic removal has been rolled back.
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string {
	return "delete " + e.ID + ": " + e.Err.Error()
}

func (e *DeleteError) Unwrap() error { return e.Err }
