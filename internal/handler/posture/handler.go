package posture

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	postureAnalysis "github.com/hireprep/hireprep/backend/internal/analysis/posture"
	postureService "github.com/hireprep/hireprep/backend/internal/service/posture"
	"github.com/hireprep/hireprep/backend/pkg/utils"
)

const sessionRecordTimeout = 10 * time.Second

// Handler serves posture scoring over plain HTTP and the live WebSocket
// channel.
type Handler struct {
	svc      *postureService.Service
	upgrader websocket.Upgrader
}

// New creates a posture handler.
func New(svc *postureService.Service) *Handler {
	return &Handler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the posture routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
	r.Get("/live", h.handleLive)
}

// handleAnalyze scores a batch of frames and records the session average.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string                  `json:"userId"`
		Frames []postureAnalysis.Frame `json:"frames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if len(payload.Frames) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "frames are required")
		return
	}

	results := make([]postureService.FrameResult, 0, len(payload.Frames))
	scores := make([]float64, 0, len(payload.Frames))
	for _, frame := range payload.Frames {
		res := h.svc.ScoreFrame(frame)
		results = append(results, res)
		scores = append(scores, res.Score)
	}

	record, err := h.svc.RecordSession(r.Context(), payload.UserID, scores)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"frames": results,
		"record": record,
	})
}

// Inbound frames over the live socket; type is "frame" or "finish".
type liveMessage struct {
	Type  string                `json:"type"`
	Frame postureAnalysis.Frame `json:"frame"`
}

type liveResult struct {
	Type     string  `json:"type"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// handleLive runs the live posture loop: one scored verdict per inbound
// frame, session summary recorded on "finish" or disconnect.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[posture] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[posture] live session opened for owner=%s", ownerID)

	var scores []float64
	defer func() {
		// Record whatever was scored even on an abrupt disconnect. The
		// request context is gone by now, so use a fresh one.
		if len(scores) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), sessionRecordTimeout)
		defer cancel()
		if _, err := h.svc.RecordSession(ctx, ownerID, scores); err != nil {
			log.Printf("[posture] failed to record live session for owner=%s: %v", ownerID, err)
		}
	}()

	for {
		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[posture] live session read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "frame":
			res := h.svc.ScoreFrame(msg.Frame)
			scores = append(scores, res.Score)
			out := liveResult{Type: "result", Score: res.Score, Feedback: res.Feedback}
			if err := conn.WriteJSON(out); err != nil {
				log.Printf("[posture] live session write error: %v", err)
				return
			}
		case "finish":
			record, err := h.svc.RecordSession(r.Context(), ownerID, scores)
			scores = nil // already recorded, skip the deferred path
			if err != nil {
				if errors.Is(err, postureService.ErrNoFrames) {
					_ = conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
					return
				}
				log.Printf("[posture] failed to record live session for owner=%s: %v", ownerID, err)
				_ = conn.WriteJSON(map[string]any{"type": "error", "error": "failed to record session"})
				return
			}
			_ = conn.WriteJSON(map[string]any{"type": "summary", "record": record})
			return
		default:
			_ = conn.WriteJSON(map[string]any{"type": "error", "error": "unknown message type"})
		}
	}
}
