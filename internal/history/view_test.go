package history_test

import (
	"strings"
	"testing"
	"time"

	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

func tsRec(id string, score *float64, feedback string, at time.Time) model.SessionRecord {
	r := rec(id, score, feedback)
	r.CreatedAt = &at
	return r
}

func sampleRecords() []model.SessionRecord {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	noDate := rec("doc4", model.ScoreOf(90), "posture upright")
	return []model.SessionRecord{
		tsRec("doc1", model.ScoreOf(85), "great attire", base.Add(2*time.Hour)),
		tsRec("doc2", model.ScoreOf(40), "slouching badly", base),
		tsRec("doc3", nil, "no score yet", base.Add(time.Hour)),
		noDate,
	}
}

func TestProjectSearchAcrossFields(t *testing.T) {
	got := history.Project(sampleRecords(), history.Controls{SearchTerm: "SLOUCH"})
	if len(got) != 1 || got[0].ID != "doc2" {
		t.Fatalf("expected doc2 for feedback search, got %+v", got)
	}

	got = history.Project(sampleRecords(), history.Controls{SearchTerm: "85"})
	if len(got) != 1 || got[0].ID != "doc1" {
		t.Fatalf("expected doc1 for score search, got %+v", got)
	}

	got = history.Project(sampleRecords(), history.Controls{SearchTerm: "2026-08-01T14"})
	if len(got) != 1 || got[0].ID != "doc1" {
		t.Fatalf("expected doc1 for date search, got %+v", got)
	}
}

func TestProjectSearchExtras(t *testing.T) {
	records := sampleRecords()
	records[0].Extra = map[string]any{"ats_score": 61.5}

	got := history.Project(records, history.Controls{SearchTerm: "61.5"})
	if len(got) != 1 || got[0].ID != "doc1" {
		t.Fatalf("expected extras to be searchable, got %+v", got)
	}
}

func TestProjectSortByTimestampNilLast(t *testing.T) {
	got := history.Project(sampleRecords(), history.Controls{SortKey: history.SortByCreatedAt, SortDirection: "desc"})
	order := []string{"doc1", "doc3", "doc2", "doc4"}
	for i, want := range order {
		if got[i].ID != want {
			t.Fatalf("desc order wrong at %d: got %s want %s", i, got[i].ID, want)
		}
	}

	got = history.Project(sampleRecords(), history.Controls{SortKey: history.SortByCreatedAt, SortDirection: "asc"})
	order = []string{"doc2", "doc3", "doc1", "doc4"}
	for i, want := range order {
		if got[i].ID != want {
			t.Fatalf("asc order wrong at %d: got %s want %s (nil timestamp must stay last)", i, got[i].ID, want)
		}
	}
}

func TestProjectSortByScoreNilLast(t *testing.T) {
	got := history.Project(sampleRecords(), history.Controls{SortKey: history.SortByScore, SortDirection: "desc"})
	order := []string{"doc4", "doc1", "doc2", "doc3"}
	for i, want := range order {
		if got[i].ID != want {
			t.Fatalf("score desc wrong at %d: got %s want %s", i, got[i].ID, want)
		}
	}
}

func TestProjectLatestOnlyFollowsCurrentSort(t *testing.T) {
	got := history.Project(sampleRecords(), history.Controls{SortKey: history.SortByScore, SortDirection: "asc", LatestOnly: true})
	if len(got) != 1 || got[0].ID != "doc2" {
		t.Fatalf("latestOnly must follow the current sort, got %+v", got)
	}

	got = history.Project(sampleRecords(), history.Controls{SortKey: history.SortByCreatedAt, SortDirection: "desc", LatestOnly: true})
	if len(got) != 1 || got[0].ID != "doc1" {
		t.Fatalf("latestOnly under timestamp desc must pick doc1, got %+v", got)
	}
}

func TestProjectDeterministicUnderPermutation(t *testing.T) {
	records := sampleRecords()
	reversed := make([]model.SessionRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	controls := history.Controls{SearchTerm: "", SortKey: history.SortByScore, SortDirection: "desc"}
	a := history.Project(records, controls)
	b := history.Project(reversed, controls)

	if len(a) != len(b) {
		t.Fatal("projection length differs under permutation")
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("projection order differs under permutation at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestExportSanitization(t *testing.T) {
	r := rec("doc1", model.ScoreOf(85), "Line1,has a comma\nand a newline")
	out := history.ToDelimitedText([]model.SessionRecord{r}, []string{"id", "score", "feedback"}, ",")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + one row, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "id,score,feedback" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != `doc1,85,"Line1,has a comma and a newline"` {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestExportQuoteEscaping(t *testing.T) {
	r := rec("doc1", nil, `said "hello" there`)
	out := history.ToDelimitedText([]model.SessionRecord{r}, []string{"feedback"}, ",")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[1] != `"said ""hello"" there"` {
		t.Fatalf("unexpected quoting: %q", lines[1])
	}
}

func TestExportExtraColumns(t *testing.T) {
	r := rec("doc1", model.ScoreOf(85), "fine")
	r.Extra = map[string]any{"questionCount": 5}
	out := history.ToDelimitedText([]model.SessionRecord{r}, []string{"id", "questionCount"}, ";")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[1] != "doc1;5" {
		t.Fatalf("unexpected extras row: %q", lines[1])
	}
}
