package history

import (
	"strings"
	"unicode"

	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

// DefaultFeedbackPrefixLen bounds the normalized-feedback prefix used for
// heuristic matching.
const DefaultFeedbackPrefixLen = 80

// MatchOptions tunes the heuristic used when a pending record and an
// authoritative record share no id. The rule itself (score equality plus
// normalized-feedback overlap) is fixed; only the prefix bound is
// configurable. A too-small bound risks false positives, the failure mode
// this matcher must avoid.
type MatchOptions struct {
	FeedbackPrefixLen int
}

func (o MatchOptions) prefixLen() int {
	if o.FeedbackPrefixLen <= 0 {
		return DefaultFeedbackPrefixLen
	}
	return o.FeedbackPrefixLen
}

// Reconciler merges optimistic records with an authoritative list.
type Reconciler struct {
	opts MatchOptions
}

// NewReconciler builds a Reconciler with the supplied options.
func NewReconciler(opts MatchOptions) *Reconciler {
	return &Reconciler{opts: opts}
}

// Merge folds pending optimistic records into the authoritative list.
// Authoritative records are ground truth and always survive. A pending
// record is dropped once an authoritative counterpart is found, either by
// identical non-empty id (persist echoed the id) or by the fuzzy heuristic.
// Unmatched pending records are kept, still optimistic, until a later fetch
// can confirm them. The result is deduplicated by id with authoritative
// copies winning, and is returned unsorted. Merge is idempotent: repeating
// it with the same inputs yields the same set.
func (r *Reconciler) Merge(authoritative, pending []model.SessionRecord) []model.SessionRecord {
	result := make([]model.SessionRecord, 0, len(authoritative)+len(pending))
	seen := make(map[string]bool, len(authoritative)+len(pending))

	for _, auth := range authoritative {
		auth.Optimistic = false
		if auth.ID != "" && seen[auth.ID] {
			continue
		}
		if auth.ID != "" {
			seen[auth.ID] = true
		}
		result = append(result, auth)
	}

	for _, p := range pending {
		if r.matches(authoritative, p) {
			continue // the authoritative copy already represents it
		}
		if p.ID != "" && seen[p.ID] {
			continue // id collision: authoritative wins
		}
		if p.ID != "" {
			seen[p.ID] = true
		}
		p.Optimistic = true
		result = append(result, p)
	}

	return result
}

// Confirmed reports the ids of pending records that an authoritative
// counterpart represents, by identical id or by the heuristic. These are
// exactly the pending records Merge drops; clearing them from the buffer
// terminates their provisional lifecycle. Absence from Merge's output is
// not a usable signal for this: a pending record confirmed through the
// id fast path shares its id with the surviving authoritative copy.
func (r *Reconciler) Confirmed(authoritative, pending []model.SessionRecord) []string {
	var ids []string
	for _, p := range pending {
		if r.matches(authoritative, p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *Reconciler) matches(authoritative []model.SessionRecord, p model.SessionRecord) bool {
	for _, auth := range authoritative {
		if p.ID != "" && p.ID == auth.ID {
			return true
		}
	}
	// No shared id: fall back to the fuzzy heuristic. Score equality and
	// feedback overlap are required jointly so two distinct sessions are
	// never merged on one weak signal alone.
	for _, auth := range authoritative {
		if !model.ScoreEqual(p.Score, auth.Score) {
			continue
		}
		if r.feedbackOverlaps(p.Feedback, auth.Feedback) {
			return true
		}
	}
	return false
}

func (r *Reconciler) feedbackOverlaps(a, b string) bool {
	na := normalizeFeedback(a, r.opts.prefixLen())
	nb := normalizeFeedback(b, r.opts.prefixLen())
	if na == "" || nb == "" {
		// Empty feedback carries no signal; require the score path to have
		// agreed on something more than two blanks.
		return na == nb && na != ""
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// normalizeFeedback lower-cases, strips non-word runes, collapses
// whitespace, and truncates to a bounded prefix.
func normalizeFeedback(s string, prefixLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		default:
			// punctuation and symbols are stripped outright
		}
	}
	out := strings.TrimSpace(b.String())
	runes := []rune(out)
	if len(runes) > prefixLen {
		out = string(runes[:prefixLen])
	}
	return out
}
