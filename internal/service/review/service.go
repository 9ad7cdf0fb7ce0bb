package review

import (
	"context"
	"errors"
	"strings"

	"github.com/hireprep/hireprep/backend/internal/analysis/resume"
	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
)

var ErrEmptyResume = errors.New("could not extract text from resume")

// Service scores resume text and records each review in the resume history.
type Service struct {
	skills []string
	engine *history.Engine
}

// NewService builds a review service over the given skills inventory; an
// empty inventory falls back to the package default.
func NewService(skills []string, engine *history.Engine) *Service {
	return &Service{skills: skills, engine: engine}
}

// Result pairs the analysis with the optimistic history record created
// for it.
type Result struct {
	Analysis resume.Analysis     `json:"analysis"`
	Record   model.SessionRecord `json:"record"`
}

// Analyze scores the resume and submits the review optimistically. The
// returned record is already visible in history while the persist call
// completes in the background.
func (s *Service) Analyze(ctx context.Context, ownerID, text, jobDescription string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyResume
	}

	analysis := resume.Analyze(text, jobDescription, s.skills)

	extra := map[string]any{
		"skills_found": analysis.SkillsFound,
		"ats_score":    analysis.ATSScore,
	}
	if analysis.Similarity != nil {
		extra["similarity_with_jd"] = *analysis.Similarity
	}

	record, err := s.engine.Submit(ctx, ownerID, history.Draft{
		Score:    model.ScoreOf(analysis.Score),
		Feedback: resume.FeedbackLine(analysis),
		Extra:    extra,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Analysis: analysis, Record: record}, nil
}
