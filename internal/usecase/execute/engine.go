// Package execute turns a validated request into an envelope: render the prompt,
// ask the model for structured output, embed that output.
package execute

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/descriptor"
	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/tracing"
	"github.com/taskrouter/taskrouter-api/internal/schema"
)

// Engine runs descriptors against a model. It holds no per-request state.
type Engine struct {
	model repository.ModelClient
	log   *zap.SugaredLogger
}

func NewEngine(model repository.ModelClient, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{model: model, log: log.Named("execute")}
}

// Run executes d for the raw request body. raw must be a value decoded by encoding/json.
// Any failing step aborts the run; nothing is retried.
func Run[E any](ctx context.Context, eng *Engine, d descriptor.Descriptor[E], raw any) (E, error) {
	var zero E
	name := d.Name()

	ctx, span := tracing.StartSpan(ctx, "execute.run", attribute.String("descriptor", name))
	defer span.End()

	vars, err := bind(name, d.InputSchema(), raw)
	if err != nil {
		return zero, tracing.Fail(span, err)
	}

	prompt, err := d.RenderPrompt(vars)
	if err != nil {
		return zero, tracing.Fail(span, err)
	}
	eng.log.Debugw("Rendered prompt", "descriptor", name, "instructions", len(prompt.Instructions), "prompt_len", len(prompt.User))

	output, err := eng.complete(ctx, name, d.OutputSchema(), prompt)
	if err != nil {
		return zero, tracing.Fail(span, err)
	}

	embedding, err := eng.embed(ctx, output)
	if err != nil {
		return zero, tracing.Fail(span, err)
	}

	return d.AssembleEnvelope(output, embedding), nil
}

// bind validates raw against in and returns the template variables.
func bind(name string, in *schema.Schema, raw any) (map[string]any, error) {
	if err := in.Validate(raw); err != nil {
		return nil, &domain.ValidationError{Descriptor: name, Reason: err.Error()}
	}
	record, ok := raw.(map[string]any)
	if !ok {
		return nil, &domain.ValidationError{Descriptor: name, Reason: "request body must be a JSON object"}
	}
	return in.Flatten(record), nil
}

func (e *Engine) complete(ctx context.Context, name string, out *schema.Schema, prompt descriptor.Prompt) (map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "execute.complete")
	defer span.End()

	output, err := e.model.Complete(ctx, repository.CompletionRequest{
		Instructions: prompt.Instructions,
		Prompt:       prompt.User,
		Schema:       out,
		SchemaName:   name,
	})
	if err != nil {
		return nil, tracing.Fail(span, err)
	}
	e.log.Debugw("Model returned structured output", "descriptor", name, "fields", len(output))
	return output, nil
}

// embed embeds the canonical JSON text of output. encoding/json sorts map keys.
func (e *Engine) embed(ctx context.Context, output map[string]any) ([]float32, error) {
	ctx, span := tracing.StartSpan(ctx, "execute.embed")
	defer span.End()

	text, err := json.Marshal(output)
	if err != nil {
		return nil, tracing.Fail(span, fmt.Errorf("failed to encode model output: %w", err))
	}
	vec, err := e.model.Embed(ctx, string(text))
	if err != nil {
		return nil, tracing.Fail(span, err)
	}
	span.SetAttributes(attribute.Int("embedding.dimension", len(vec)))
	return vec, nil
}
