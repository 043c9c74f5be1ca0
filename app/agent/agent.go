package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/models"
	"DocAnalystAI/app/rag"
)

// Asker answers one natural-language question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

type turn struct {
	question string
	answer   string
}

var _ Asker = &Agent{}

// Agent answers questions from the knowledge store. It keeps the last few question/answer pairs so a
// later question can refer to earlier answers, which is why calls are serialized.
type Agent struct {
	model       models.Interface
	store       rag.Interface
	cfg         configs.AgentConfig
	maxResults  int
	temperature float64
	maxTokens   int
	now         func() time.Time

	mu      sync.Mutex
	history []turn
}

func New(model models.Interface, store rag.Interface, cfg *configs.Config) *Agent {
	return &Agent{
		model:       model,
		store:       store,
		cfg:         cfg.Agent,
		maxResults:  cfg.Knowledge.MaxResults,
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
		now:         time.Now,
	}
}

func (a *Agent) Name() string {
	return a.cfg.Name
}

func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	docs, err := a.store.Search(ctx, question, nil, a.maxResults)
	if err != nil {
		return "", fmt.Errorf("search knowledge base: %w", err)
	}
	slog.Debug("🔎 Retrieved context", "question", question, "chunks", len(docs))

	messages := []models.Message{{
		Role:    models.RoleSystem,
		Content: buildSystemPrompt(a.cfg.Name, a.cfg.Description, a.cfg.Instructions, a.cfg.ExpectedOutput, a.now()),
	}}
	for _, t := range a.history {
		messages = append(messages,
			models.Message{Role: models.RoleUser, Content: t.question},
			models.Message{Role: models.RoleAssistant, Content: t.answer},
		)
	}
	messages = append(messages, models.Message{Role: models.RoleUser, Content: buildQuestionPrompt(question, docs)})

	answer, err := a.model.Think(ctx, messages, a.temperature, a.maxTokens)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)

	a.remember(question, answer)
	return answer, nil
}

func (a *Agent) remember(question, answer string) {
	if a.cfg.HistoryTurns <= 0 {
		return
	}
	a.history = append(a.history, turn{question: question, answer: answer})
	if over := len(a.history) - a.cfg.HistoryTurns; over > 0 {
		a.history = a.history[over:]
	}
}
