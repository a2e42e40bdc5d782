package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// LocalOllamaClient implements repository.LLMClient and repository.EmbeddingClient
// by calling a local Ollama server.
type LocalOllamaClient struct {
	host       string
	model      string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

var (
	_ repository.LLMClient       = (*LocalOllamaClient)(nil)
	_ repository.EmbeddingClient = (*LocalOllamaClient)(nil)
)

// NewLocalOllamaClient initializes a new client for a local Ollama instance.
// A nil httpClient gets a client with a debug-logging transport.
func NewLocalOllamaClient(host, model string, httpClient *http.Client, log *zap.SugaredLogger) *LocalOllamaClient {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("ollama")
	if httpClient == nil {
		httpClient = &http.Client{Transport: &LoggingTransport{Log: log}}
	}
	return &LocalOllamaClient{
		host:       host,
		model:      model,
		httpClient: httpClient,
		log:        log,
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Format   json.RawMessage `json:"format,omitempty"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

type ollamaEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbeddingResponse struct {
	Embedding  []float32   `json:"embedding,omitempty"`
	Embeddings [][]float32 `json:"embeddings,omitempty"`
}

type ollamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// GenerateJSON sends a chat request whose format is the output schema.
func (c *LocalOllamaClient) GenerateJSON(ctx context.Context, req repository.GenerateRequest) (string, error) {
	c.log.Debugf("🏠 Sending structured request to local Ollama (%s)...", c.model)

	format := json.RawMessage(`"json"`)
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal output schema: %w", err)
		}
		format = raw
	}

	messages := make([]ollamaMessage, 0, len(req.System)+1)
	for _, s := range req.System {
		messages = append(messages, ollamaMessage{Role: "system", Content: s})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})

	var chatResp ollamaChatResponse
	err := c.post(ctx, "/api/chat", ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Format:   format,
		Stream:   false,
	}, &chatResp)
	if err != nil {
		return "", err
	}

	c.log.Debugf("🏠 Response received from local model.")
	return chatResp.Message.Content, nil
}

// Name returns the descriptive name of the client.
func (c *LocalOllamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s) [Local]", c.model)
}

// Embed generates embeddings for the given texts using Ollama's embedding API.
func (c *LocalOllamaClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.log.Debugf("🏠 Generating embeddings for %d texts using %s...", len(texts), c.model)

	var embedResp ollamaEmbeddingResponse
	if err := c.post(ctx, "/api/embed", ollamaEmbeddingRequest{Model: c.model, Input: texts}, &embedResp); err != nil {
		return nil, err
	}

	if len(embedResp.Embeddings) > 0 {
		return embedResp.Embeddings, nil
	}
	if len(embedResp.Embedding) > 0 {
		return [][]float32{embedResp.Embedding}, nil
	}
	return nil, fmt.Errorf("no embeddings returned from ollama")
}

// PullModel pulls the specified model from the Ollama library.
func (c *LocalOllamaClient) PullModel(ctx context.Context, model string) error {
	c.log.Infof("📥 Pulling model '%s'...", model)

	if err := c.post(ctx, "/api/pull", ollamaPullRequest{Model: model, Stream: false}, nil); err != nil {
		return fmt.Errorf("ollama pull: %w", err)
	}

	c.log.Infof("📥 Model '%s' pulled successfully.", model)
	return nil
}

// HealthCheck verifies that the Ollama server answers.
func (c *LocalOllamaClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create ollama health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *LocalOllamaClient) post(ctx context.Context, path string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama returned error status %d: %s", resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return nil
}
