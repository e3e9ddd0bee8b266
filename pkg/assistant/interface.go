package assistant

import (
	"context"
	"time"
)

type Role string

const (
	USER      Role = "user"
	ASSISTANT Role = "assistant"
	SYSTEM    Role = "system"
)

type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Reply is what the assistant says back for one user utterance.
type Reply struct {
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Mood       map[string]any `json:"mood"`
}

// Responder produces the assistant's reply to a transcribed utterance.
type Responder interface {
	GenerateReply(ctx context.Context, text, sessionID string) (Reply, error)
}

// ChatModel is a single non-streaming chat completion against some LLM backend.
type ChatModel interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
	Name() string
}

// HistoryStore keeps the per-session conversation used as model context.
type HistoryStore interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]Message, error)
	Append(ctx context.Context, sessionID string, msgs ...Message) error
}
