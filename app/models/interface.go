package models

import "context"

// Interface is the chat and embedding capability the knowledge store and the agent depend on.
type Interface interface {
	Name() string
	Think(ctx context.Context, messages []Message, temp float64, maxTokens int) (string, error)
	EmbedText(ctx context.Context, input string) ([]float32, error)
	Close() error
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
