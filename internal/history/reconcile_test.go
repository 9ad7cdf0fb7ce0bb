package history_test

import (
	"testing"

	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

func rec(id string, score *float64, feedback string) model.SessionRecord {
	return model.SessionRecord{ID: id, OwnerID: "owner-1", Score: score, Feedback: feedback}
}

func ids(records []model.SessionRecord) map[string]bool {
	out := make(map[string]bool, len(records))
	for _, r := range records {
		out[r.ID] = true
	}
	return out
}

func TestMergeIdenticalIDFastPath(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc1", model.ScoreOf(85), "Great professional attire and grooming"),
	}
	pending := []model.SessionRecord{
		// persist echoed doc1 and the buffer adopted it
		rec("doc1", model.ScoreOf(85), "Great professional attire"),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 1 {
		t.Fatalf("expected 1 record, got %d", len(merged))
	}
	if merged[0].ID != "doc1" || merged[0].Optimistic {
		t.Fatalf("authoritative copy must win: %+v", merged[0])
	}
}

// Confirmed must report fast-path matches even though the shared id also
// appears in Merge's output as the authoritative copy.
func TestConfirmedReportsFastPathAndHeuristicMatches(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc1", model.ScoreOf(85), "Great professional attire and grooming"),
		rec("doc2", model.ScoreOf(60), "Solid posture overall, keep it up"),
	}
	pending := []model.SessionRecord{
		rec("doc1", model.ScoreOf(85), "Great professional attire"), // adopted id
		rec("tmp-t1", model.ScoreOf(60), "Solid posture overall"),   // heuristic
		rec("tmp-t2", model.ScoreOf(30), "Entirely different session"),
	}

	confirmed := make(map[string]bool)
	for _, id := range r.Confirmed(authoritative, pending) {
		confirmed[id] = true
	}

	if !confirmed["doc1"] {
		t.Fatal("fast-path match not reported confirmed")
	}
	if !confirmed["tmp-t1"] {
		t.Fatal("heuristic match not reported confirmed")
	}
	if confirmed["tmp-t2"] {
		t.Fatal("unmatched pending record wrongly reported confirmed")
	}
}

func TestMergeHeuristicMatch(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc2", model.ScoreOf(85), "Great professional attire, very sharp"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(85), "Great professional attire"),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 1 {
		t.Fatalf("expected heuristic match to drop the pending record, got %d records", len(merged))
	}
	if merged[0].ID != "doc2" {
		t.Fatalf("expected doc2 retained, got %s", merged[0].ID)
	}
}

func TestMergeScoreMismatchKeepsPending(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc3", model.ScoreOf(70), "Great professional attire"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(85), "Great professional attire"),
	}

	merged := r.Merge(authoritative, pending)
	got := ids(merged)
	if !got["doc3"] || !got["tmp-t1"] {
		t.Fatalf("score mismatch must keep both records, got %v", got)
	}
}

func TestMergeFeedbackMismatchKeepsPending(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc4", model.ScoreOf(85), "Needs a more formal jacket"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(85), "Great professional attire"),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 2 {
		t.Fatalf("feedback mismatch must keep both records, got %d", len(merged))
	}
}

func TestMergeBothNilScoresMatch(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc5", nil, "Answered five questions"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", nil, "answered FIVE questions!"),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 1 || merged[0].ID != "doc5" {
		t.Fatalf("nil scores with overlapping feedback must match: %+v", merged)
	}
}

func TestMergeNilScoreDoesNotMatchZero(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc6", model.ScoreOf(0), "Posture needs work"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", nil, "Posture needs work"),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 2 {
		t.Fatalf("nil score must not equal zero, got %d records", len(merged))
	}
}

func TestMergeEmptyFeedbackNeverMatches(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc7", model.ScoreOf(50), ""),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(50), ""),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 2 {
		t.Fatal("two blank feedbacks carry no matching signal")
	}
}

func TestMergeNoMatchKeepsPendingOptimistic(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(85), "Great professional attire"),
	}

	merged := r.Merge(nil, pending)
	if len(merged) != 1 || merged[0].ID != "tmp-t1" || !merged[0].Optimistic {
		t.Fatalf("unmatched pending record must survive optimistic: %+v", merged)
	}
}

func TestMergeIdempotent(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc1", model.ScoreOf(85), "Great professional attire and grooming"),
		rec("doc2", model.ScoreOf(60), "Shoulders slouched"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(85), "Great professional attire"),
		rec("tmp-t2", model.ScoreOf(40), "Completely unrelated feedback"),
	}

	once := r.Merge(authoritative, pending)
	again := r.Merge(authoritative, once)

	a, b := ids(once), ids(again)
	if len(a) != len(b) {
		t.Fatalf("merge not idempotent: %v vs %v", a, b)
	}
	for id := range a {
		if !b[id] {
			t.Fatalf("merge not idempotent, %s lost on repeat", id)
		}
	}
}

func TestMergeDeduplicatesByID(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{})

	authoritative := []model.SessionRecord{
		rec("doc1", model.ScoreOf(85), "first copy"),
		rec("doc1", model.ScoreOf(85), "duplicate copy"),
	}

	merged := r.Merge(authoritative, nil)
	if len(merged) != 1 {
		t.Fatalf("expected dedup by id, got %d records", len(merged))
	}
	if merged[0].Feedback != "first copy" {
		t.Fatalf("first occurrence must win, got %q", merged[0].Feedback)
	}
}

func TestMergePrefixTruncationBoundsComparison(t *testing.T) {
	r := history.NewReconciler(history.MatchOptions{FeedbackPrefixLen: 10})

	// Identical inside the prefix window, divergent beyond it.
	authoritative := []model.SessionRecord{
		rec("doc8", model.ScoreOf(90), "excellent answer covering data structures"),
	}
	pending := []model.SessionRecord{
		rec("tmp-t1", model.ScoreOf(90), "excellent answer but rambling at the end"),
	}

	merged := r.Merge(authoritative, pending)
	if len(merged) != 1 {
		t.Fatalf("prefix-bounded overlap should match, got %d records", len(merged))
	}
}
