package repository

import (
	"context"

	"github.com/taskrouter/taskrouter-api/internal/schema"
)

// GenerateRequest is a structured-completion call to a single backend.
type GenerateRequest struct {
	System     []string
	Prompt     string
	Schema     *schema.Schema
	SchemaName string
}

// LLMClient defines the interface for generating a JSON document from a prompt.
type LLMClient interface {
	GenerateJSON(ctx context.Context, req GenerateRequest) (string, error)
	Name() string
}

// CompletionRequest is what the execution engine asks of the model.
type CompletionRequest struct {
	Instructions []string
	Prompt       string
	Schema       *schema.Schema
	SchemaName   string
}

// ModelClient is the façade the execution engine depends on.
type ModelClient interface {
	Complete(ctx context.Context, req CompletionRequest) (map[string]any, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
