package history_test

import (
	"testing"

	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

func TestStoreReplaceDeduplicates(t *testing.T) {
	s := history.NewStore("owner-1")
	s.Replace([]model.SessionRecord{
		rec("doc1", model.ScoreOf(1), "a"),
		rec("doc1", model.ScoreOf(2), "b"),
		rec("doc2", model.ScoreOf(3), "c"),
	})

	if s.Len() != 2 {
		t.Fatalf("expected dedup on replace, got %d", s.Len())
	}
}

func TestStoreUpsertOptimisticForcesFlag(t *testing.T) {
	s := history.NewStore("owner-1")
	r := rec("tmp-t1", model.ScoreOf(85), "looks sharp")
	r.Optimistic = false
	s.UpsertOptimistic(r)

	all := s.All()
	if len(all) != 1 || !all[0].Optimistic {
		t.Fatalf("upserted record must be optimistic: %+v", all)
	}
}

func TestStoreRemoveReturnsSnapshot(t *testing.T) {
	s := history.NewStore("owner-1")
	s.Replace([]model.SessionRecord{
		rec("doc1", model.ScoreOf(1), "a"),
		rec("doc2", model.ScoreOf(2), "b"),
		rec("doc3", model.ScoreOf(3), "c"),
	})

	snapshot, ok := s.Remove("doc2")
	if !ok || snapshot.Feedback != "b" {
		t.Fatalf("unexpected snapshot: %+v ok=%v", snapshot, ok)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 records after remove, got %d", s.Len())
	}
	// interior removal must keep the remaining ids addressable
	if _, ok := s.Remove("doc3"); !ok {
		t.Fatal("doc3 unaddressable after interior removal")
	}
	if _, ok := s.Remove("doc2"); ok {
		t.Fatal("second remove of doc2 must report absence")
	}
}

func TestStoreAllReturnsCopies(t *testing.T) {
	s := history.NewStore("owner-1")
	r := rec("doc1", model.ScoreOf(1), "a")
	r.Extra = map[string]any{"k": "v"}
	s.Replace([]model.SessionRecord{r})

	got := s.All()
	got[0].Extra["k"] = "mutated"

	if s.All()[0].Extra["k"] != "v" {
		t.Fatal("All must return defensive copies")
	}
}
