package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix tags locally generated identifiers so they can never collide
// with the authoritative id space of any backend.
const TempIDPrefix = "tmp-"

// SessionRecord is one entry in a feature's owner-scoped history. Records are
// created optimistically on the client path and later confirmed against the
// persistent store.
type SessionRecord struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"ownerId"`
	Score      *float64       `json:"score"`
	Feedback   string         `json:"feedback"`
	CreatedAt  *time.Time     `json:"createdAt"`
	Optimistic bool           `json:"optimistic"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// NewTempID returns a fresh identifier for an optimistic record.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was locally generated.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Score helpers keep "no score" distinct from a real zero.

// ScoreOf wraps a concrete score value.
func ScoreOf(v float64) *float64 {
	return &v
}

// ScoreEqual treats two nil scores as equal and a nil score as unequal to
// any concrete value.
func ScoreEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Clone returns a copy of the record with its own Extra map, so callers can
// hold snapshots without aliasing store state.
func (r SessionRecord) Clone() SessionRecord {
	out := r
	if r.Extra != nil {
		out.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
