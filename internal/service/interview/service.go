package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hireprep/hireprep/backend/internal/history"
	model "github.com/hireprep/hireprep/backend/internal/model/history"
	interviewModel "github.com/hireprep/hireprep/backend/internal/model/interview"
	"github.com/hireprep/hireprep/backend/internal/service/ai"
)

var (
	ErrProfileRequired = errors.New("profile id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrAnswerRequired  = errors.New("answer is required")
	ErrSessionComplete = errors.New("interview already complete")
)

// Patterns that mark an answer as pasted straight from an AI assistant.
// Such answers short-circuit evaluation with a zero score.
var pastedAIPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bchatgpt\b`),
	regexp.MustCompile(`(?i)\bgpt-?\d?\b`),
	regexp.MustCompile(`(?i)\bopenai\b`),
	regexp.MustCompile(`(?i)generated by`),
	regexp.MustCompile(`(?i)as an ai (assistant|language model)`),
	regexp.MustCompile(`(?i)assistant said`),
}

const defaultQuestionLimit = 5

// Service runs mock-interview sessions: question generation, answer
// evaluation, and submission of the finished interview into history.
type Service struct {
	profiles interviewModel.Store
	aiSvc    *ai.Service // nil means heuristic fallbacks only
	engine   *history.Engine

	mu       sync.RWMutex
	sessions map[string]interviewModel.Session
	messages map[string][]interviewModel.Message
	scores   map[string][]float64
}

// NewService bootstraps the in-memory interview service.
func NewService(profiles interviewModel.Store, aiSvc *ai.Service, engine *history.Engine) *Service {
	return &Service{
		profiles: profiles,
		aiSvc:    aiSvc,
		engine:   engine,
		sessions: make(map[string]interviewModel.Session),
		messages: make(map[string][]interviewModel.Message),
		scores:   make(map[string][]float64),
	}
}

// Start provisions a session and produces the opening question.
func (s *Service) Start(ctx context.Context, ownerID, profileID, position, difficulty string, questionLimit int) (interviewModel.Session, interviewModel.Message, error) {
	if profileID == "" {
		return interviewModel.Session{}, interviewModel.Message{}, ErrProfileRequired
	}
	profile, ok := s.profiles.FindByID(profileID)
	if !ok {
		return interviewModel.Session{}, interviewModel.Message{}, ErrProfileRequired
	}
	if questionLimit <= 0 {
		questionLimit = defaultQuestionLimit
	}

	session := interviewModel.Session{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		ProfileID:     profileID,
		Position:      position,
		Difficulty:    difficulty,
		QuestionLimit: questionLimit,
		CreatedAt:     time.Now().UTC(),
	}

	question := profile.Opening
	if s.aiSvc != nil {
		generated, err := s.aiSvc.NextQuestion(ctx, profile, position, difficulty, nil)
		if err != nil {
			log.Printf("[interview] question generation failed, using profile opening: %v", err)
		} else if generated != "" {
			question = generated
		}
	}

	opening := interviewModel.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      "assistant",
		Content:   question,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = []interviewModel.Message{opening}
	s.mu.Unlock()

	return session, opening, nil
}

// Answer evaluates one answer and, when the interview is not yet complete,
// produces the next question.
func (s *Service) Answer(ctx context.Context, sessionID, answer string) (ai.Evaluation, bool, error) {
	if strings.TrimSpace(answer) == "" {
		return ai.Evaluation{}, false, ErrAnswerRequired
	}

	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	transcript := append([]interviewModel.Message(nil), s.messages[sessionID]...)
	asked := len(s.scores[sessionID])
	s.mu.RUnlock()
	if !ok {
		return ai.Evaluation{}, false, ErrSessionNotFound
	}
	if asked >= session.QuestionLimit {
		return ai.Evaluation{}, true, ErrSessionComplete
	}

	lastQuestion := ""
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == "assistant" {
			lastQuestion = transcript[i].Content
			break
		}
	}

	var eval ai.Evaluation
	switch {
	case looksPasted(answer):
		log.Printf("[interview] detected likely AI-pasted answer in session=%s", sessionID)
		eval = ai.Evaluation{
			Score:        0,
			Improvement:  "It appears your answer includes AI-generated content. Please respond in your own words so we can evaluate your thinking.",
			NextQuestion: "Please re-answer in your own words: " + lastQuestion,
		}
	case s.aiSvc != nil:
		var err error
		profile, _ := s.profiles.FindByID(session.ProfileID)
		eval, err = s.aiSvc.Evaluate(ctx, profile, session.Position, session.Difficulty, lastQuestion, answer)
		if err != nil {
			log.Printf("[interview] evaluation failed, falling back to heuristics: %v", err)
			eval = heuristicEvaluation(answer)
		}
	default:
		eval = heuristicEvaluation(answer)
	}

	complete := asked+1 >= session.QuestionLimit
	if complete {
		eval.NextQuestion = "The interview is now complete. Thank you for participating! You can review your feedback above."
	} else if eval.NextQuestion == "" {
		eval.NextQuestion = nextCannedQuestion(asked + 1)
	}

	now := time.Now().UTC()
	userMsg := interviewModel.Message{
		ID: uuid.NewString(), SessionID: sessionID, Role: "user", Content: answer, CreatedAt: now,
	}
	nextMsg := interviewModel.Message{
		ID: uuid.NewString(), SessionID: sessionID, Role: "assistant", Content: eval.NextQuestion, CreatedAt: now,
	}

	s.mu.Lock()
	s.messages[sessionID] = append(s.messages[sessionID], userMsg, nextMsg)
	s.scores[sessionID] = append(s.scores[sessionID], eval.Score)
	s.mu.Unlock()

	return eval, complete, nil
}

// Finish closes the session and records its summary in the interview
// history. The returned record is the optimistic entry, already visible.
func (s *Service) Finish(ctx context.Context, sessionID string) (model.SessionRecord, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	scores := s.scores[sessionID]
	if ok {
		delete(s.sessions, sessionID)
		delete(s.messages, sessionID)
		delete(s.scores, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return model.SessionRecord{}, ErrSessionNotFound
	}

	var score *float64
	if len(scores) > 0 {
		total := 0.0
		for _, v := range scores {
			total += v
		}
		avg := total / float64(len(scores))
		score = model.ScoreOf(avg)
	}

	feedback := fmt.Sprintf("Completed a %s %s mock interview with %d answered questions",
		session.Difficulty, session.Position, len(scores))

	return s.engine.Submit(ctx, session.OwnerID, history.Draft{
		Score:    score,
		Feedback: feedback,
		Extra: map[string]any{
			"profileId":     session.ProfileID,
			"questionCount": len(scores),
			"position":      session.Position,
			"difficulty":    session.Difficulty,
		},
	})
}

// Session retrieves a session by identifier.
func (s *Service) Session(sessionID string) (interviewModel.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return interviewModel.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Transcript returns stored messages for the session.
func (s *Service) Transcript(sessionID string) ([]interviewModel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := make([]interviewModel.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Turns converts a transcript into model history turns.
func Turns(messages []interviewModel.Message) []ai.Turn {
	turns := make([]ai.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, ai.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

func looksPasted(answer string) bool {
	for _, pat := range pastedAIPatterns {
		if pat.MatchString(answer) {
			return true
		}
	}
	return false
}

// heuristicEvaluation is the un-keyed fallback: rewards substance and
// concrete detail, stays deliberately mid-band.
func heuristicEvaluation(answer string) ai.Evaluation {
	words := len(strings.Fields(answer))
	switch {
	case words < 15:
		return ai.Evaluation{
			Score:       3,
			Positive:    "You gave a direct answer.",
			Improvement: "Expand with a concrete situation, the action you took, and the outcome.",
		}
	case words < 60:
		return ai.Evaluation{
			Score:       6,
			Positive:    "Your answer has a clear core.",
			Improvement: "Add measurable results or a specific example to strengthen it.",
		}
	default:
		return ai.Evaluation{
			Score:       7,
			Positive:    "Detailed answer with good substance.",
			Improvement: "Tighten the structure: lead with the outcome, then the supporting detail.",
		}
	}
}

var cannedQuestions = []string{
	"Tell me about a project you are most proud of and your specific contribution.",
	"Describe a time you received difficult feedback. How did you respond?",
	"Walk me through how you would approach a problem you have never seen before.",
	"What is a technical or professional skill you are currently improving, and how?",
	"Describe a situation where you had to deliver under a tight deadline.",
}

func nextCannedQuestion(idx int) string {
	return cannedQuestions[idx%len(cannedQuestions)]
}
