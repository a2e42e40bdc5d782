package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// GeminiClient implements repository.LLMClient and repository.EmbeddingClient.
type GeminiClient struct {
	client     *genai.Client
	model      string
	embedModel string
	log        *zap.SugaredLogger
}

var (
	_ repository.LLMClient       = (*GeminiClient)(nil)
	_ repository.EmbeddingClient = (*GeminiClient)(nil)
)

func NewGeminiClient(ctx context.Context, apiKey, model, embedModel string, log *zap.SugaredLogger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key must not be empty")
	}
	if model == "" {
		model = "gemini-1.5-pro"
	}
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		embedModel: embedModel,
		log:        log.Named("gemini"),
	}, nil
}

// GenerateJSON asks the model for a JSON document constrained by req.Schema.
func (c *GeminiClient) GenerateJSON(ctx context.Context, req repository.GenerateRequest) (string, error) {
	c.log.Debugf("☁️ Sending structured request to %s (schema %s)...", c.model, req.SchemaName)

	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = toGenaiSchema(req.Schema.Document())
	}
	if len(req.System) > 0 {
		parts := make([]genai.Part, 0, len(req.System))
		for _, s := range req.System {
			parts = append(parts, genai.Text(s))
		}
		model.SystemInstruction = &genai.Content{Parts: parts}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}

	c.log.Debugf("☁️ Response received successfully.")
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}

	return "", fmt.Errorf("unexpected response format from gemini")
}

// Embed embeds texts in one batch call.
func (c *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := c.client.EmbeddingModel(c.embedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}

	out := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		if e == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, e.Values)
	}
	return out, nil
}

func (c *GeminiClient) Name() string {
	return fmt.Sprintf("Gemini (%s) [Cloud]", c.model)
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
