package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// SystemPreamble is the first system message of every completion.
const SystemPreamble = "You are a helpful AI assistant."

var errEmptyEmbedding = errors.New("empty embedding vector")

// Client implements repository.ModelClient on top of the backends chosen by a Router.
// It makes a single attempt per call.
type Client struct {
	router    *Router
	dimension int
	timeout   time.Duration
	log       *zap.SugaredLogger
}

var _ repository.ModelClient = (*Client)(nil)

// NewClient creates the façade. A dimension of 0 accepts any embedding length;
// a timeout of 0 leaves deadlines to the caller.
func NewClient(router *Router, dimension int, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{router: router, dimension: dimension, timeout: timeout, log: log.Named("llm")}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Complete sends the preamble, the instructions and the prompt, and returns the
// decoded object after checking it against req.Schema.
func (c *Client) Complete(ctx context.Context, req repository.CompletionRequest) (map[string]any, error) {
	backend := c.router.RouteCompletion()
	if backend == nil {
		return nil, &domain.UpstreamError{Backend: "none", Op: "completion", Err: errors.New("no completion backend configured")}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	system := make([]string, 0, len(req.Instructions)+1)
	system = append(system, SystemPreamble)
	system = append(system, req.Instructions...)

	start := time.Now()
	raw, err := backend.GenerateJSON(ctx, repository.GenerateRequest{
		System:     system,
		Prompt:     req.Prompt,
		Schema:     req.Schema,
		SchemaName: req.SchemaName,
	})
	if err != nil {
		return nil, &domain.UpstreamError{Backend: backend.Name(), Op: "completion", Err: err}
	}
	c.log.Debugw("Completion received", "backend", backend.Name(), "schema", req.SchemaName, "elapsed", time.Since(start))

	out, err := decodeObject(raw)
	if err != nil {
		return nil, &domain.UpstreamParseError{Backend: backend.Name(), Reason: "response is not a JSON object", Err: err}
	}
	if len(out) == 0 {
		return nil, &domain.UpstreamParseError{Backend: backend.Name(), Reason: "empty structured output"}
	}
	if req.Schema != nil {
		if err := req.Schema.Validate(out); err != nil {
			return nil, &domain.UpstreamParseError{Backend: backend.Name(), Reason: "output violates schema", Err: err}
		}
	}
	return out, nil
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	backend := c.router.RouteEmbedding()
	if backend == nil {
		return nil, &domain.UpstreamError{Backend: "none", Op: "embedding", Err: errors.New("no embedding backend configured")}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	vectors, err := backend.Embed(ctx, []string{text})
	if err != nil {
		return nil, &domain.UpstreamError{Backend: backend.Name(), Op: "embedding", Err: err}
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, &domain.UpstreamError{Backend: backend.Name(), Op: "embedding", Err: errEmptyEmbedding}
	}
	vec := vectors[0]
	if c.dimension > 0 && len(vec) != c.dimension {
		return nil, &domain.UpstreamError{
			Backend: backend.Name(),
			Op:      "embedding",
			Err:     fmt.Errorf("expected %d dimensions, got %d", c.dimension, len(vec)),
		}
	}
	return vec, nil
}

// decodeObject parses a model answer, tolerating a surrounding markdown code fence.
func decodeObject(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("null document")
	}
	return out, nil
}
