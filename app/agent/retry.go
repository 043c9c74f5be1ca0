package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"DocAnalystAI/app/configs"
)

type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration
	Exponential bool
}

func PolicyFromConfig(c configs.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: c.MaxAttempts,
		Delay:       c.Delay,
		MaxDelay:    c.MaxDelay,
		Exponential: c.Exponential,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff
	if p.Exponential {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.Delay
		eb.RandomizationFactor = 0
		eb.MaxElapsedTime = 0
		if p.MaxDelay > 0 {
			eb.MaxInterval = p.MaxDelay
		}
		b = eb
	} else {
		b = backoff.NewConstantBackOff(p.Delay)
	}

	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

type retryingAsker struct {
	next   Asker
	policy RetryPolicy
}

// WithRetry wraps next so each question gets up to MaxAttempts tries. Cancellation is never retried.
func WithRetry(next Asker, policy RetryPolicy) Asker {
	if policy.MaxAttempts <= 1 {
		return next
	}
	return &retryingAsker{next: next, policy: policy}
}

func (r *retryingAsker) Ask(ctx context.Context, question string) (string, error) {
	attempt := 0
	op := func() (string, error) {
		attempt++
		answer, err := r.next.Ask(ctx, question)
		if err != nil && ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return "", backoff.Permanent(err)
		}
		return answer, err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("🔁 Retrying question", "attempt", attempt, "max_attempts", r.policy.MaxAttempts, "wait", wait, "error", err)
	}
	return backoff.RetryNotifyWithData(op, r.policy.backOff(ctx), notify)
}
