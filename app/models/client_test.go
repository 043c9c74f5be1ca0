package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/utils/restclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *LLMClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := NewLLMClient(ts.URL, "secret", "test-model", "test-embed")
	c.retryDelay = time.Millisecond
	return c
}

func TestLLMClientThink(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpoint, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var payload requestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test-model", payload.Model)
		assert.Len(t, payload.Messages, 2)

		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Findings: X, Y, Z."}}]}`))
	})

	out, err := c.Think(context.Background(), []Message{
		{Role: RoleSystem, Content: "be concise"},
		{Role: RoleUser, Content: "What are the main findings?"},
	}, 0.2, -1)
	require.NoError(t, err)
	assert.Equal(t, "Findings: X, Y, Z.", out)
}

func TestLLMClientThinkSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Think(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, 0, 0)
	var statusErr *restclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestLLMClientEmbedTextRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"embedding":[1,0],"index":0}]}`))
	})

	vec, err := c.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLLMClientEmbedTextRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.EmbedText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	assert.EqualValues(t, defaultMaxRetries, calls.Load())
}

func TestLLMClientThinkEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Think(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, 0, 0)
	assert.Error(t, err)
}

func TestLLMClientThinkCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Think(ctx, []Message{{Role: RoleUser, Content: "q"}}, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLLMClientEmbedTextCaches(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, embeddingEndpoint, r.URL.Path)
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}],"model":"test-embed"}`))
	})

	for i := 0; i < 2; i++ {
		vec, err := c.EmbedText(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestLLMClientEmbedTextNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := c.EmbedText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestLLMClientEmbedTextWithoutModel(t *testing.T) {
	c := NewLLMClient("http://localhost:0", "", "m", "")
	_, err := c.EmbedText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(context.Background(), configs.LLMConfig{
		Provider: configs.ProviderLMStudio, BaseURL: "http://localhost:1234", Model: "m", EmbeddingModel: "e",
	})
	require.NoError(t, err)
	assert.IsType(t, &LLMClient{}, m)
	assert.Equal(t, "lmstudio:m", m.Name())

	m, err = NewModel(context.Background(), configs.LLMConfig{
		Provider: configs.ProviderOpenAI, APIKey: "k", Model: "gpt", EmbeddingModel: "e",
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, m)

	_, err = NewModel(context.Background(), configs.LLMConfig{Provider: "bogus"})
	assert.Error(t, err)
}
