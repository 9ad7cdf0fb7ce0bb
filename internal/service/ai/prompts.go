package ai

import (
	"fmt"
	"strings"

	"github.com/hireprep/hireprep/backend/internal/model/interview"
)

const attireSystemPrompt = `You are an image-description based interview attire coach.
Rate the described outfit for a professional job interview.
Respond with ONLY a JSON object: {"score": <0-100>, "feedback": "<2-3 sentence summary>"}.
Be encouraging but honest. Focus on constructive feedback.`

// interviewerSystemPrompt builds the system prompt steering question style
// for one interviewer profile.
func interviewerSystemPrompt(profile interview.Profile, position, difficulty string) string {
	if position == "" {
		position = "General"
	}
	if difficulty == "" {
		difficulty = "Beginner"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, an AI interviewer for a %s (%s level) role in %s.\n",
		profile.Name, position, difficulty, profile.Category)
	fmt.Fprintf(&b, "Tone: %s.\n", profile.Tone)
	if profile.PromptHint != "" {
		b.WriteString(profile.PromptHint)
		b.WriteString("\n")
	}
	if len(profile.FocusAreas) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s.\n", strings.Join(profile.FocusAreas, ", "))
	}
	b.WriteString("Never provide a general opening statement; ask concrete questions.")
	return b.String()
}

func evaluationPrompt(question, answer string) string {
	return fmt.Sprintf(
		"Provide ONLY a JSON object with keys: score (0-10), positive_feedback, improvement, next_question.\n"+
			"NO extra text outside JSON. Be concise but insightful in your feedback.\n\n"+
			"Question:\n%s\n\nAnswer:\n%s\n\n"+
			"Next Action: Provide the next interview question relevant to the role.",
		question, answer)
}
