package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/riskdash-backend/internal/apperr"
	"github.com/jengzang/riskdash-backend/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(config.LLMConfig{
		Endpoint: srv.URL,
		Token:    "test-token",
		Model:    "gpt-4o-mini",
		Timeout:  timeout,
	})
}

func TestComplete_Success(t *testing.T) {
	var got map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hola"},"finish_reason":"stop"}]}`))
	}, 5*time.Second)

	answer, err := client.Complete(context.Background(), ChatRequest{
		System:      "Eres un asistente comunitario de seguridad ciudadana.",
		User:        "¿Qué pasa en Bucaramanga?",
		Temperature: Float32(0.7),
		TopP:        Float32(1.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola", answer)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 1e-6)
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
}

func TestComplete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}, 5*time.Second)

	_, err := client.Complete(context.Background(), ChatRequest{User: "hola"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}

func TestComplete_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}, 5*time.Second)

	_, err := client.Complete(context.Background(), ChatRequest{User: "hola"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}

func TestComplete_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	_, err := client.Complete(context.Background(), ChatRequest{User: "hola"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.UpstreamFailure))
}
