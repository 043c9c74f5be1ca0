package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DocAnalystAI/app/utils"
)

const errorPlaceholder = "*Erro ao processar esta pergunta: %v*"

type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// AskFunc adapts a plain function to Asker.
type AskFunc func(ctx context.Context, question string) (string, error)

func (f AskFunc) Ask(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

type Runner struct {
	now      func() time.Time
	onResult func(runID string, res QuestionResult)
}

type Option func(*Runner)

// OnResult registers a callback invoked after each result is recorded.
func OnResult(fn func(runID string, res QuestionResult)) Option {
	return func(r *Runner) { r.onResult = fn }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run asks every question in order, one at a time. A failed question is recorded with an error
// placeholder and the loop continues. Run only returns an error when ctx is done.
func (r *Runner) Run(ctx context.Context, asker Asker, questions []string) (*Summary, error) {
	summary := NewSummary(r.now())
	summary.Results = make([]QuestionResult, 0, len(questions))

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		number := i + 1
		slog.Info(fmt.Sprintf("❓ Question %d/%d", number, len(questions)), "question", utils.Truncate(q, 80))

		start := r.now()
		answer, err := asker.Ask(ctx, q)
		result := QuestionResult{
			Number:   number,
			Question: q,
			Duration: r.now().Sub(start),
		}

		// An interrupt during the call aborts the run whatever the asker returned.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, ctxErr
		}

		if err != nil {
			slog.Error("❌ Question failed", "number", number, "error", err)
			result.Status = StatusError
			result.Answer = fmt.Sprintf(errorPlaceholder, err)
		} else {
			slog.Info("✅ Question answered", "number", number, "chars", len(answer), "duration", result.Duration.Round(time.Millisecond))
			result.Status = StatusSuccess
			result.Answer = answer
		}

		summary.Results = append(summary.Results, result)
		if r.onResult != nil {
			r.onResult(summary.ID, result)
		}
	}

	slog.Info(fmt.Sprintf("📈 Analysis finished: %d/%d questions answered", summary.Succeeded(), summary.Total()))
	return summary, nil
}
