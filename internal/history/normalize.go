package history

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

// Field precedence lists for the payload shapes the backends are known to
// emit. First present key wins.
var (
	idKeys        = []string{"docId", "id", "_id", "sessionId"}
	ownerKeys     = []string{"userId", "ownerId", "uid"}
	scoreKeys     = []string{"score", "averageScore", "rating", "posture_score"}
	feedbackKeys  = []string{"feedback", "message", "summary"}
	timestampKeys = []string{"timestamp", "createdAt", "startedAt"}
)

// Normalize adapts an arbitrary backend payload into a canonical
// SessionRecord. It is total: malformed input degrades to a record with
// nil score and nil timestamp rather than failing. A missing score stays
// nil so callers can distinguish "no score" from a real zero.
func Normalize(raw map[string]any) model.SessionRecord {
	rec := model.SessionRecord{}
	if raw == nil {
		return rec
	}

	claimed := make(map[string]bool, 8)

	if key, v, ok := firstPresent(raw, idKeys); ok {
		rec.ID = asString(v)
		claimed[key] = true
	}
	if key, v, ok := firstPresent(raw, ownerKeys); ok {
		rec.OwnerID = asString(v)
		claimed[key] = true
	}
	if key, v, ok := firstPresent(raw, scoreKeys); ok {
		rec.Score = asScore(v)
		claimed[key] = true
	}
	if key, v, ok := firstPresent(raw, feedbackKeys); ok {
		rec.Feedback = asString(v)
		claimed[key] = true
	}
	if key, v, ok := firstPresent(raw, timestampKeys); ok {
		rec.CreatedAt = asTimestamp(v)
		claimed[key] = true
	}

	for k, v := range raw {
		if claimed[k] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		rec.Extra[k] = v
	}

	return rec
}

func firstPresent(raw map[string]any, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func asScore(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return model.ScoreOf(n)
	case float32:
		return model.ScoreOf(float64(n))
	case int:
		return model.ScoreOf(float64(n))
	case int64:
		return model.ScoreOf(float64(n))
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return model.ScoreOf(f)
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return model.ScoreOf(f)
		}
	}
	return nil
}

// asTimestamp accepts a Firestore-style server clock object, an RFC3339/ISO
// string, or epoch seconds. Anything else yields the nil sentinel, which
// sorts last in the query view.
func asTimestamp(v any) *time.Time {
	switch ts := v.(type) {
	case time.Time:
		if ts.IsZero() {
			return nil
		}
		t := ts.UTC()
		return &t
	case map[string]any:
		sec := asScore(ts["seconds"])
		if sec == nil {
			sec = asScore(ts["_seconds"])
		}
		if sec == nil {
			return nil
		}
		var nanos int64
		if n := asScore(ts["nanos"]); n != nil {
			nanos = int64(*n)
		}
		t := time.Unix(int64(*sec), nanos).UTC()
		return &t
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, ts); err == nil {
				u := t.UTC()
				return &u
			}
		}
		if f, err := strconv.ParseFloat(ts, 64); err == nil {
			t := time.Unix(int64(f), 0).UTC()
			return &t
		}
		return nil
	case float64:
		t := time.Unix(int64(ts), 0).UTC()
		return &t
	case int64:
		t := time.Unix(ts, 0).UTC()
		return &t
	case int:
		t := time.Unix(int64(ts), 0).UTC()
		return &t
	default:
		return nil
	}
}
