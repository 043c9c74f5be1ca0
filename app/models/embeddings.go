package models

import (
	"context"
	"errors"
)

func (mc *LLMClient) EmbedText(ctx context.Context, input string) ([]float32, error) {
	if v, ok := mc.cache.Load(input); ok {
		if emb, ok2 := v.([]float32); ok2 {
			return emb, nil
		}
	}

	if mc.embeddingsModel == "" {
		return nil, errors.New("embeddings model is empty; set LLM_EMBEDDINGS_MODEL")
	}

	var resp embeddingResponse
	req := embeddingRequestPayload{
		Model: mc.embeddingsModel,
		Input: input,
	}
	if err := mc.postWithRetries(ctx, embeddingEndpoint, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	emb := resp.Data[0].Embedding
	mc.cache.Store(input, emb)
	return emb, nil
}
