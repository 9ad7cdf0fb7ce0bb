package historyapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hireprep/hireprep/backend/internal/history"
	"github.com/hireprep/hireprep/backend/pkg/utils"
)

// Handler serves the history endpoints for one feature's engine.
type Handler struct {
	engine *history.Engine
}

// New creates a history handler bound to one feature engine.
func New(engine *history.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the history routes under the feature prefix, e.g.
// /resume/history.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.handleList)
	r.Post("/history/delete", h.handleDelete)
	r.Get("/history/export", h.handleExport)
}

// handleList refreshes from the persistent store (fail-open) and projects
// the result through the query controls.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if _, err := h.engine.Refresh(r.Context(), ownerID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	latestOnly, _ := strconv.ParseBool(r.URL.Query().Get("latestOnly"))
	controls := history.Controls{
		SearchTerm:    r.URL.Query().Get("search"),
		SortKey:       r.URL.Query().Get("sortKey"),
		SortDirection: r.URL.Query().Get("sortDir"),
		LatestOnly:    latestOnly,
	}

	records, err := h.engine.Project(ownerID, controls)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
		DocID  string `json:"docId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" || payload.DocID == "" {
		utils.RespondError(w, http.StatusBadRequest, "missing userId or docId")
		return
	}

	err := h.engine.Delete(r.Context(), payload.UserID, payload.DocID)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
	case errors.Is(err, history.ErrIdentifierMissing), errors.Is(err, history.ErrOwnerRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		// Genuine failure: the optimistic removal has been rolled back.
		utils.RespondError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if _, err := h.engine.Refresh(r.Context(), ownerID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	columns := []string{history.ColID, history.ColCreatedAt, history.ColScore, history.ColFeedback}
	text, err := h.engine.Export(ownerID, columns, ",")
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("%s-history.csv", h.engine.Feature())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
