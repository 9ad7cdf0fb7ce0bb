package interview

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	interviewModel "github.com/hireprep/hireprep/backend/internal/model/interview"
	aiService "github.com/hireprep/hireprep/backend/internal/service/ai"
	interviewService "github.com/hireprep/hireprep/backend/internal/service/interview"
	"github.com/hireprep/hireprep/backend/pkg/utils"
)

// Handler serves mock-interview sessions.
type Handler struct {
	svc      *interviewService.Service
	aiSvc    *aiService.Service // nil disables the SSE stream
	profiles interviewModel.Store
}

// New creates an interview handler.
func New(svc *interviewService.Service, aiSvc *aiService.Service, profiles interviewModel.Store) *Handler {
	return &Handler{svc: svc, aiSvc: aiSvc, profiles: profiles}
}

// RegisterRoutes mounts the interview routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profiles", h.handleProfiles)
	r.Post("/start", h.handleStart)
	r.Post("/answer", h.handleAnswer)
	r.Get("/stream/{sessionID}", h.handleStream)
	r.Post("/finish", h.handleFinish)
}

func (h *Handler) handleProfiles(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profiles.List())
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID        string `json:"userId"`
		ProfileID     string `json:"profileId"`
		Position      string `json:"position"`
		Difficulty    string `json:"difficulty"`
		QuestionLimit int    `json:"questionLimit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	session, opening, err := h.svc.Start(r.Context(), payload.UserID, payload.ProfileID,
		payload.Position, payload.Difficulty, payload.QuestionLimit)
	if err != nil {
		if errors.Is(err, interviewService.ErrProfileRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"opening": opening,
	})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Answer    string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eval, complete, err := h.svc.Answer(r.Context(), payload.SessionID, payload.Answer)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"evaluation": eval,
			"complete":   complete,
		})
	case errors.Is(err, interviewService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, interviewService.ErrAnswerRequired),
		errors.Is(err, interviewService.ErrSessionComplete):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.svc.Finish(r.Context(), payload.SessionID)
	if err != nil {
		if errors.Is(err, interviewService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, record)
}

// handleStream streams the next interviewer question token by token over
// Server-Sent Events. It does not mutate the session; the client submits
// the answer through /answer as usual.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if h.aiSvc == nil || !h.aiSvc.StreamingEnabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.svc.Session(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	profile, found := h.profiles.FindByID(session.ProfileID)
	if !found {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	transcript, err := h.svc.Transcript(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)

	reader, err := h.aiSvc.StreamNextQuestion(r.Context(), profile, session.Position,
		session.Difficulty, interviewService.Turns(transcript))
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return
	}
	defer reader.Close()

	utils.SendSSEEvent(w, flusher, "start", map[string]string{"sessionId": sessionID})

	for {
		chunk, err := reader.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[interview] stream for session=%s failed: %v", sessionID, err)
			utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": "stream interrupted"})
			return
		}
		if chunk.Content != "" {
			utils.SendSSEChunk(w, flusher, map[string]string{"content": chunk.Content})
		}
	}

	utils.SendSSEEvent(w, flusher, "end", map[string]any{"sessionId": sessionID, "finished": true})
}
