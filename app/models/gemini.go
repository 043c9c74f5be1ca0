package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var _ Interface = &GeminiClient{}

type GeminiClient struct {
	client   *genai.Client
	model    string
	embedder *genai.EmbeddingModel
}

func NewGeminiClient(ctx context.Context, apiKey, model, embModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiClient{
		client:   client,
		model:    model,
		embedder: client.EmbeddingModel(embModel),
	}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

func (g *GeminiClient) Close() error { return g.client.Close() }

func (g *GeminiClient) Think(ctx context.Context, messages []Message, temp float64, maxTokens int) (string, error) {
	gm := g.client.GenerativeModel(g.model)
	gm.SetTemperature(float32(temp))
	if maxTokens > 0 {
		gm.SetMaxOutputTokens(int32(maxTokens))
	}

	var system []genai.Part
	var history []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, genai.Text(m.Content))
		case RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(system) > 0 {
		gm.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(history) == 0 {
		return "", errors.New("gemini: no user message to send")
	}

	cs := gm.StartChat()
	cs.History = history[:len(history)-1]
	resp, err := cs.SendMessage(ctx, history[len(history)-1].Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return out.String(), nil
}

func (g *GeminiClient) EmbedText(ctx context.Context, input string) ([]float32, error) {
	resp, err := g.embedder.EmbedContent(ctx, genai.Text(input))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("gemini: empty embedding")
	}
	return resp.Embedding.Values, nil
}
