package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"DocAnalystAI/app/utils/restclient"
)

const (
	endpoint          = "/v1/chat/completions"
	embeddingEndpoint = "/v1/embeddings"

	defaultMaxRetries = 3
)

var _ Interface = &LLMClient{}

// LLMClient talks to any OpenAI-compatible server (LM Studio, vLLM, llama.cpp) over plain REST.
type LLMClient struct {
	restClient      *restclient.RestClient
	cache           sync.Map
	model           string
	embeddingsModel string
	maxRetries      int
	retryDelay      time.Duration
}

func NewLLMClient(baseURL, apiKey, model, embModel string) *LLMClient {
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}
	return &LLMClient{
		restClient:      restclient.NewRestClient(baseURL, headers),
		model:           model,
		embeddingsModel: embModel,
		maxRetries:      defaultMaxRetries,
		retryDelay:      100 * time.Millisecond,
	}
}

func (mc *LLMClient) Name() string { return "lmstudio:" + mc.model }

func (mc *LLMClient) Close() error { return nil }

func (mc *LLMClient) Think(ctx context.Context, messages []Message, temp float64, maxTokens int) (string, error) {
	response, err := mc.generateResponse(ctx, messages, temp, maxTokens)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("empty LLM response")
	}
	return response.Choices[0].Message.Content, nil
}

func (mc *LLMClient) generateResponse(ctx context.Context, messages []Message, temp float64, maxTokens int) (*ResponseLLM, error) {
	payload := requestPayload{
		Model:       mc.model,
		Messages:    messages,
		Temperature: temp,
		MaxTokens:   maxTokens,
	}

	// Chat calls are attempted once; answers are retried by the caller's policy.
	var generated ResponseLLM
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mc.restClient.PostJSON(ctx, endpoint, payload, &generated); err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	return &generated, nil
}

func (mc *LLMClient) postWithRetries(ctx context.Context, path string, payload, out any) error {
	var err error
	for i := 0; i < mc.maxRetries; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			slog.Warn("🚨 Request canceled before execution", "endpoint", path)
			return ctxErr
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(mc.retryDelay * time.Duration(1<<uint(i-1))):
			}
		}

		if err = mc.restClient.PostJSON(ctx, path, payload, out); err != nil {
			slog.Warn("⚠️ LLM request attempt failed", "endpoint", path, "attempt", i+1, "error", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("request failed after %d retries: %w", mc.maxRetries, err)
}
