package posture

import (
	"context"
	"errors"
	"fmt"

	"github.com/hireprep/hireprep/backend/internal/analysis/posture"
	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

var ErrNoFrames = errors.New("no frames were analyzed")

// FrameResult is the per-frame verdict sent back over the live channel.
type FrameResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Service scores posture frames and records per-session summaries.
type Service struct {
	engine *history.Engine
}

// NewService wires the posture service.
func NewService(engine *history.Engine) *Service {
	return &Service{engine: engine}
}

// ScoreFrame rates one camera frame.
func (s *Service) ScoreFrame(frame posture.Frame) FrameResult {
	score := posture.Score(frame)
	return FrameResult{Score: score, Feedback: posture.Feedback(score)}
}

// RecordSession submits the session average into posture history once a
// live session ends.
func (s *Service) RecordSession(ctx context.Context, ownerID string, scores []float64) (model.SessionRecord, error) {
	if len(scores) == 0 {
		return model.SessionRecord{}, ErrNoFrames
	}

	total := 0.0
	for _, v := range scores {
		total += v
	}
	avg := total / float64(len(scores))

	return s.engine.Submit(ctx, ownerID, history.Draft{
		Score:    model.ScoreOf(avg),
		Feedback: posture.Feedback(avg),
		Extra: map[string]any{
			"frameCount": len(scores),
			"summary":    fmt.Sprintf("Averaged %.1f over %d frames", avg, len(scores)),
		},
	})
}
