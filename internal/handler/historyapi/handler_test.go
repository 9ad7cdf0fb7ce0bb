package historyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
	"github.com/hireprep/hireprep/backend/internal/storage"
)

func newTestServer(t *testing.T, backend storage.Backend) (*history.Engine, http.Handler) {
	t.Helper()
	engine := history.NewEngine("resume", backend, history.EngineOptions{})
	t.Cleanup(engine.Close)

	r := chi.NewRouter()
	New(engine).RegisterRoutes(r)
	return engine, r
}

func TestListRequiresUserID(t *testing.T) {
	_, router := newTestServer(t, storage.NewMemoryBackend())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListReturnsRecords(t *testing.T) {
	backend := storage.NewMemoryBackend()
	engine, router := newTestServer(t, backend)

	score := 85.0
	if _, err := engine.Submit(context.Background(), "user-1", history.Draft{
		Score:    &score,
		Feedback: "Strong resume with clear impact statements",
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	engine.WaitForPersists()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?userId=user-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var records []model.SessionRecord
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Feedback != "Strong resume with clear impact statements" {
		t.Fatalf("unexpected feedback: %q", records[0].Feedback)
	}
}

func TestListAppliesControls(t *testing.T) {
	backend := storage.NewMemoryBackend()
	engine, router := newTestServer(t, backend)

	for _, feedback := range []string{"Great posture overall", "Needs a firmer handshake"} {
		if _, err := engine.Submit(context.Background(), "user-1", history.Draft{Feedback: feedback}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	engine.WaitForPersists()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?userId=user-1&search=handshake", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []model.SessionRecord
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 1 || !strings.Contains(records[0].Feedback, "handshake") {
		t.Fatalf("search filter not applied: %+v", records)
	}
}

func TestDeleteValidation(t *testing.T) {
	_, router := newTestServer(t, storage.NewMemoryBackend())

	for _, body := range []string{`{}`, `{"userId":"user-1"}`, `not json`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/history/delete", strings.NewReader(body))
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestDeleteSucceeds(t *testing.T) {
	backend := storage.NewMemoryBackend()
	engine, router := newTestServer(t, backend)

	if _, err := engine.Submit(context.Background(), "user-1", history.Draft{Feedback: "to be deleted"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	engine.WaitForPersists()
	if _, err := engine.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	records, err := engine.Records("user-1")
	if err != nil || len(records) != 1 {
		t.Fatalf("expected 1 record before delete, got %d (err=%v)", len(records), err)
	}

	body := `{"userId":"user-1","docId":"` + records[0].ID + `"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/history/delete", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	after, err := engine.Records("user-1")
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("record still present after delete: %+v", after)
	}
}

// failingRemoveBackend wraps a backend so Remove always reports a hard
// failure.
type failingRemoveBackend struct {
	storage.Backend
}

func (f *failingRemoveBackend) Remove(context.Context, string, string) (bool, error) {
	return false, errors.New("backend unavailable")
}

func TestDeleteBackendFailureReturns502(t *testing.T) {
	backend := storage.NewMemoryBackend()
	engine, router := newTestServer(t, &failingRemoveBackend{Backend: backend})

	if _, err := engine.Submit(context.Background(), "user-1", history.Draft{Feedback: "sticky"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	engine.WaitForPersists()
	if _, err := engine.Refresh(context.Background(), "user-1"); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	records, _ := engine.Records("user-1")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	body := `{"userId":"user-1","docId":"` + records[0].ID + `"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/history/delete", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}

	// Rollback keeps the record visible.
	after, _ := engine.Records("user-1")
	if len(after) != 1 {
		t.Fatalf("expected rollback to restore the record, got %d", len(after))
	}
}

func TestExport(t *testing.T) {
	backend := storage.NewMemoryBackend()
	engine, router := newTestServer(t, backend)

	score := 72.5
	if _, err := engine.Submit(context.Background(), "user-1", history.Draft{
		Score:    &score,
		Feedback: "Solid, concise answers",
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	engine.WaitForPersists()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history/export?userId=user-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "resume-history.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "id,createdAt,score,feedback" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Solid, concise answers"`) {
		t.Fatalf("feedback cell not quoted: %q", lines[1])
	}
}
