package interview

import "time"

// Session captures one mock-interview run for an owner.
type Session struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	ProfileID     string    `json:"profileId"`
	Position      string    `json:"position"`
	Difficulty    string    `json:"difficulty"`
	QuestionLimit int       `json:"questionLimit"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Message persists individual interview turns.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
