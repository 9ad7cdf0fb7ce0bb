package review

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hireprep/hireprep/backend/internal/service/review"
	"github.com/hireprep/hireprep/backend/pkg/utils"
)

// Handler serves resume review requests.
type Handler struct {
	svc *review.Service
}

// New creates a review handler.
func New(svc *review.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the review routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID         string `json:"userId"`
		ResumeText     string `json:"resumeText"`
		JobDescription string `json:"jobDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	result, err := h.svc.Analyze(r.Context(), payload.UserID, payload.ResumeText, payload.JobDescription)
	if err != nil {
		if errors.Is(err, review.ErrEmptyResume) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}
