package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hireprep/hireprep/backend/internal/config"
	"github.com/hireprep/hireprep/backend/internal/model/interview"
)

// Service encapsulates the chat-model functionality shared by the mock
// interview and attire features.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service, compiling the shared prompt chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled reports whether SSE streaming is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Turn is one prior exchange fed back as model history.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// NextQuestion generates one interview question in the given profile's
// style.
func (s *Service) NextQuestion(ctx context.Context, profile interview.Profile, position, difficulty string, transcript []Turn) (string, error) {
	input := map[string]any{
		"system":  interviewerSystemPrompt(profile, position, difficulty),
		"history": historyMessages(transcript),
		"query":   "Ask the next interview question. One concise question only, no preamble.",
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated question for profile=%s, length=%d", profile.ID, len(response.Content))
	return strings.TrimSpace(response.Content), nil
}

// StreamNextQuestion streams the next question's chunks for SSE delivery.
func (s *Service) StreamNextQuestion(ctx context.Context, profile interview.Profile, position, difficulty string, transcript []Turn) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input := map[string]any{
		"system":  interviewerSystemPrompt(profile, position, difficulty),
		"history": historyMessages(transcript),
		"query":   "Ask the next interview question. One concise question only, no preamble.",
	}

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	return stream, nil
}

// Evaluation is the structured verdict for one answer.
type Evaluation struct {
	Score        float64 `json:"score"`
	Positive     string  `json:"positive_feedback"`
	Improvement  string  `json:"improvement"`
	NextQuestion string  `json:"next_question"`
}

// Evaluate scores one answer against its question, returning strict JSON
// parsed into an Evaluation.
func (s *Service) Evaluate(ctx context.Context, profile interview.Profile, position, difficulty, question, answer string) (Evaluation, error) {
	input := map[string]any{
		"system":  interviewerSystemPrompt(profile, position, difficulty),
		"history": []*schema.Message(nil),
		"query":   evaluationPrompt(question, answer),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to run AI chain: %w", err)
	}

	eval, err := parseEvaluation(response.Content)
	if err != nil {
		return Evaluation{}, fmt.Errorf("model returned unusable evaluation: %w", err)
	}
	return eval, nil
}

// ScoreAttire rates an outfit description for interview suitability.
func (s *Service) ScoreAttire(ctx context.Context, description string) (float64, string, error) {
	input := map[string]any{
		"system":  attireSystemPrompt,
		"history": []*schema.Message(nil),
		"query":   "Outfit description: " + description,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return 0, "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	var verdict struct {
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(response.Content)), &verdict); err != nil {
		return 0, "", fmt.Errorf("model returned unusable attire verdict: %w", err)
	}
	return verdict.Score, verdict.Feedback, nil
}

func historyMessages(transcript []Turn) []*schema.Message {
	const historyLimit = 10

	if len(transcript) == 0 {
		return nil
	}

	startIdx := 0
	if len(transcript) > historyLimit {
		startIdx = len(transcript) - historyLimit
	}

	history := make([]*schema.Message, 0, len(transcript)-startIdx)
	for _, turn := range transcript[startIdx:] {
		switch turn.Role {
		case "user":
			history = append(history, schema.UserMessage(turn.Content))
		case "assistant":
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}

func parseEvaluation(raw string) (Evaluation, error) {
	var eval Evaluation
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &eval); err != nil {
		return Evaluation{}, err
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 10 {
		eval.Score = 10
	}
	return eval, nil
}

// stripCodeFence unwraps ```json fences and trims to the outermost JSON
// object, tolerating chatter around the payload.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
