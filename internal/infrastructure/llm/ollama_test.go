package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

func TestOllamaGenerateJSON(t *testing.T) {
	var got ollamaChatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected path /api/chat, got %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: `{"text":"hello"}`},
		})
	}))
	defer ts.Close()

	c := NewLocalOllamaClient(ts.URL, "llama3", nil, zap.NewNop().Sugar())
	out, err := c.GenerateJSON(context.Background(), repository.GenerateRequest{
		System: []string{SystemPreamble, "be brief"},
		Prompt: "say hello",
		Schema: textSchema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hello"}`, out)

	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, []ollamaMessage{
		{Role: "system", Content: SystemPreamble},
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "say hello"},
	}, got.Messages)
	assert.JSONEq(t, `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`, string(got.Format))
}

func TestOllamaGenerateJSONWithoutSchema(t *testing.T) {
	var got ollamaChatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "{}"}})
	}))
	defer ts.Close()

	c := NewLocalOllamaClient(ts.URL, "", nil, nil)
	_, err := c.GenerateJSON(context.Background(), repository.GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, `"json"`, string(got.Format))
}

func TestOllamaEmbed(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    [][]float32
		wantErr bool
	}{
		{name: "embeddings field", body: `{"embeddings":[[0.1,0.2]]}`, want: [][]float32{{0.1, 0.2}}},
		{name: "legacy embedding field", body: `{"embedding":[0.3]}`, want: [][]float32{{0.3}}},
		{name: "no embeddings", body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/embed" {
					t.Errorf("expected path /api/embed, got %s", r.URL.Path)
				}
				var req ollamaEmbeddingRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if len(req.Input) != 1 || req.Input[0] != "hello" {
					t.Errorf("unexpected input %v", req.Input)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := NewLocalOllamaClient(ts.URL, "nomic-embed-text", nil, nil)
			got, err := c.Embed(context.Background(), []string{"hello"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model not loaded"))
	}))
	defer ts.Close()

	c := NewLocalOllamaClient(ts.URL, "llama3", nil, nil)

	_, err := c.GenerateJSON(context.Background(), repository.GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")

	assert.Error(t, c.PullModel(context.Background(), "llama3"))
	assert.Error(t, c.HealthCheck(context.Background()))
}

func TestOllamaPullAndHealth(t *testing.T) {
	var pulled ollamaPullRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pull":
			_ = json.NewDecoder(r.Body).Decode(&pulled)
			_, _ = w.Write([]byte(`{"status":"success"}`))
		case "/api/tags":
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			_, _ = w.Write([]byte(`{"models":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c := NewLocalOllamaClient(ts.URL, "llama3", nil, nil)
	require.NoError(t, c.PullModel(context.Background(), "nomic-embed-text"))
	assert.Equal(t, "nomic-embed-text", pulled.Model)
	assert.NoError(t, c.HealthCheck(context.Background()))
	assert.Equal(t, "Ollama (llama3) [Local]", c.Name())
}

func TestLoggingTransportPreservesBodies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbeddingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, []string{"hello"}, req.Input)
		_, _ = w.Write([]byte(`{"embeddings":[[1]]}`))
	}))
	defer ts.Close()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	c := NewLocalOllamaClient(ts.URL, "m", nil, logger.Sugar())

	got, err := c.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}}, got)
}
