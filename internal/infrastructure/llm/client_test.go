package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
	"github.com/taskrouter/taskrouter-api/internal/schema"
)

type stubBackend struct {
	answer  string
	vectors [][]float32
	err     error
	got     repository.GenerateRequest
	texts   []string
}

func (s *stubBackend) GenerateJSON(ctx context.Context, req repository.GenerateRequest) (string, error) {
	s.got = req
	return s.answer, s.err
}

func (s *stubBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.texts = texts
	return s.vectors, s.err
}

func (s *stubBackend) Name() string { return "stub" }

var textSchema = schema.MustParse(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)

func newTestClient(b *stubBackend, dim int) *Client {
	return NewClient(NewRouter(b, nil, b, nil, false, nil), dim, time.Second, nil)
}

func TestCompleteSendsPreambleThenInstructions(t *testing.T) {
	b := &stubBackend{answer: `{"text":"hello"}`}
	c := newTestClient(b, 0)

	out, err := c.Complete(context.Background(), repository.CompletionRequest{
		Instructions: []string{"route", "context", "format"},
		Prompt:       "hello",
		Schema:       textSchema,
		SchemaName:   "echo",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"text": "hello"}, out)
	assert.Equal(t, []string{SystemPreamble, "route", "context", "format"}, b.got.System)
	assert.Equal(t, "hello", b.got.Prompt)
	assert.Equal(t, "echo", b.got.SchemaName)
}

func TestCompleteRejectsUnusableOutput(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"not json", "Summary: something"},
		{"empty object", "{}"},
		{"null", "null"},
		{"array", `["hello"]`},
		{"schema violation", `{"text": 3}`},
		{"missing required", `{"other": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&stubBackend{answer: tt.answer}, 0)
			_, err := c.Complete(context.Background(), repository.CompletionRequest{Prompt: "p", Schema: textSchema})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUpstreamParse)
		})
	}
}

func TestCompleteAcceptsFencedJSON(t *testing.T) {
	c := newTestClient(&stubBackend{answer: "```json\n{\"text\":\"hi\"}\n```"}, 0)

	out, err := c.Complete(context.Background(), repository.CompletionRequest{Prompt: "p", Schema: textSchema})
	require.NoError(t, err)
	assert.Equal(t, "hi", out["text"])
}

func TestCompleteWrapsBackendFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	c := newTestClient(&stubBackend{err: cause}, 0)

	_, err := c.Complete(context.Background(), repository.CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, cause)
}

func TestEmbed(t *testing.T) {
	tests := []struct {
		name    string
		backend *stubBackend
		dim     int
		want    []float32
		wantErr bool
	}{
		{name: "single vector", backend: &stubBackend{vectors: [][]float32{{0.1, 0.2}}}, want: []float32{0.1, 0.2}},
		{name: "matching dimension", backend: &stubBackend{vectors: [][]float32{{0.1, 0.2}}}, dim: 2, want: []float32{0.1, 0.2}},
		{name: "wrong dimension", backend: &stubBackend{vectors: [][]float32{{0.1, 0.2}}}, dim: 3, wantErr: true},
		{name: "no vectors", backend: &stubBackend{}, wantErr: true},
		{name: "empty vector", backend: &stubBackend{vectors: [][]float32{{}}}, wantErr: true},
		{name: "backend error", backend: &stubBackend{err: errors.New("boom")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(tt.backend, tt.dim)
			got, err := c.Embed(context.Background(), `{"text":"hello"}`)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrUpstream)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{`{"text":"hello"}`}, tt.backend.texts)
		})
	}
}

func TestClientWithoutBackends(t *testing.T) {
	c := NewClient(NewRouter(nil, nil, nil, nil, false, nil), 0, 0, nil)

	_, err := c.Complete(context.Background(), repository.CompletionRequest{Prompt: "p"})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = c.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
