package attire

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
	"github.com/hireprep/hireprep/backend/internal/service/ai"
)

var ErrDescriptionRequired = errors.New("outfit description is required")

// Neutral verdict used when the model is unavailable or returns garbage.
const (
	neutralScore    = 50.0
	neutralFeedback = "Analysis temporarily unavailable. Default neutral score applied."
)

// Service rates interview attire through the AI collaborator, degrading to
// a neutral verdict rather than failing the request.
type Service struct {
	aiSvc  *ai.Service // nil means neutral verdicts only
	engine *history.Engine
}

// NewService wires the attire service.
func NewService(aiSvc *ai.Service, engine *history.Engine) *Service {
	return &Service{aiSvc: aiSvc, engine: engine}
}

// Analyze rates the outfit description and records the session
// optimistically.
func (s *Service) Analyze(ctx context.Context, ownerID, description string) (model.SessionRecord, error) {
	if strings.TrimSpace(description) == "" {
		return model.SessionRecord{}, ErrDescriptionRequired
	}

	score, feedback := neutralScore, neutralFeedback
	if s.aiSvc != nil {
		got, text, err := s.aiSvc.ScoreAttire(ctx, description)
		if err != nil {
			log.Printf("[attire] model scoring failed, applying neutral verdict: %v", err)
		} else {
			score, feedback = got, text
		}
	}

	return s.engine.Submit(ctx, ownerID, history.Draft{
		Score:    model.ScoreOf(score),
		Feedback: feedback,
	})
}
