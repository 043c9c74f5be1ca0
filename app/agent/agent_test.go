package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/models"
	"DocAnalystAI/app/rag"
)

type stubStore struct {
	docs  []rag.VectorDoc
	err   error
	lastK int
}

func (s *stubStore) InsertDocument(context.Context, string, bool) (rag.InsertResult, error) {
	return rag.InsertResult{}, nil
}

func (s *stubStore) Search(_ context.Context, _ string, _ map[string]string, k int) ([]rag.VectorDoc, error) {
	s.lastK = k
	return s.docs, s.err
}

func testConfig() *configs.Config {
	cfg := configs.Default()
	cfg.Agent.Name = "Auditor"
	cfg.Agent.Instructions = []string{"Answer in one line."}
	cfg.Agent.HistoryTurns = 1
	cfg.Knowledge.MaxResults = 3
	return cfg
}

func TestAgentAsk(t *testing.T) {
	store := &stubStore{docs: []rag.VectorDoc{{
		Content:  "Revenue grew 12%.",
		Metadata: map[string]any{"source": "report.pdf", "page": 4},
	}}}
	model := &models.MockModel{}
	model.On("Think", mock.Anything, mock.MatchedBy(func(msgs []models.Message) bool {
		if len(msgs) != 2 || msgs[0].Role != models.RoleSystem {
			return false
		}
		sys, user := msgs[0].Content, msgs[1].Content
		return strings.Contains(sys, "You are Auditor.") &&
			strings.Contains(sys, "- Answer in one line.") &&
			strings.Contains(sys, "2025-03-14 09:30") &&
			strings.Contains(user, "[1] report.pdf, page 4") &&
			strings.Contains(user, "Revenue grew 12%.") &&
			strings.HasSuffix(user, "Question: What are the main findings?")
	}), 0.3, 0).Return("  Findings: X, Y, Z.\n", nil).Once()

	a := New(model, store, testConfig())
	a.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

	answer, err := a.Ask(context.Background(), "What are the main findings?")
	require.NoError(t, err)
	assert.Equal(t, "Findings: X, Y, Z.", answer)
	assert.Equal(t, 3, store.lastK)
	model.AssertExpectations(t)
}

func TestAgentAskKeepsRecentHistory(t *testing.T) {
	model := &models.MockModel{}
	var seen [][]models.Message
	model.On("Think", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen = append(seen, args.Get(1).([]models.Message)) }).
		Return("answer", nil)

	a := New(model, &stubStore{}, testConfig())
	for i := 1; i <= 3; i++ {
		_, err := a.Ask(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	require.Len(t, seen, 3)
	assert.Len(t, seen[0], 2)
	require.Len(t, seen[2], 4)
	assert.Equal(t, "q2", seen[2][1].Content)
	assert.Equal(t, models.RoleAssistant, seen[2][2].Role)
	assert.Contains(t, seen[2][3].Content, "No excerpt")
}

func TestAgentAskErrors(t *testing.T) {
	model := &models.MockModel{}
	a := New(model, &stubStore{err: errors.New("store offline")}, testConfig())
	_, err := a.Ask(context.Background(), "q")
	assert.ErrorContains(t, err, "store offline")
	model.AssertNotCalled(t, "Think", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	model.On("Think", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("rate limited"))
	a = New(model, &stubStore{}, testConfig())
	_, err = a.Ask(context.Background(), "q")
	assert.EqualError(t, err, "rate limited")
	assert.Empty(t, a.history)
}

type scriptedAsker struct {
	errs  []error
	calls int
}

func (s *scriptedAsker) Ask(ctx context.Context, question string) (string, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return "", s.errs[s.calls-1]
	}
	return "ok: " + question, nil
}

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Exponential: true}
}

func TestWithRetry(t *testing.T) {
	flaky := errors.New("503")

	t.Run("recovers", func(t *testing.T) {
		inner := &scriptedAsker{errs: []error{flaky, flaky}}
		out, err := WithRetry(inner, fastPolicy(3)).Ask(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "ok: q", out)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("gives_up_after_max_attempts", func(t *testing.T) {
		inner := &scriptedAsker{errs: []error{flaky, flaky, flaky, flaky}}
		_, err := WithRetry(inner, fastPolicy(3)).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, flaky)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("constant_schedule", func(t *testing.T) {
		inner := &scriptedAsker{errs: []error{flaky}}
		p := fastPolicy(2)
		p.Exponential = false
		_, err := WithRetry(inner, p).Ask(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("cancellation_is_not_retried", func(t *testing.T) {
		inner := &scriptedAsker{errs: []error{context.Canceled}}
		_, err := WithRetry(inner, fastPolicy(3)).Ask(context.Background(), "q")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("single_attempt_is_passthrough", func(t *testing.T) {
		inner := &scriptedAsker{}
		assert.Same(t, inner, WithRetry(inner, fastPolicy(1)))
	})
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(configs.Default().Agent.Retry)
	assert.Equal(t, RetryPolicy{MaxAttempts: 3, Delay: 3 * time.Second, MaxDelay: 30 * time.Second, Exponential: true}, p)
}
