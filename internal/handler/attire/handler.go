package attire

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireprep/hireprep/backend/internal/service/attire"
	"github.com/hireprep/hireprep/backend/pkg/utils"
)

// Handler serves attire feedback requests.
type Handler struct {
	svc *attire.Service
}

// New creates an attire handler.
func New(svc *attire.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the attire routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID      string `json:"userId"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	record, err := h.svc.Analyze(r.Context(), payload.UserID, payload.Description)
	if err != nil {
		if errors.Is(err, attire.ErrDescriptionRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}
