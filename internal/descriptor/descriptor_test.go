package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/schema"
)

var (
	contentInput = schema.MustParse(`{"type":"object","properties":{"content":{"type":"string"}},"required":["content"]}`)
	textOutput   = schema.MustParse(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)
)

func TestTaskRenderAndAssemble(t *testing.T) {
	task, err := NewTask(TaskSpec{Name: "echo", Prompt: "{{ content }}", Input: contentInput, Output: textOutput})
	require.NoError(t, err)

	p, err := task.RenderPrompt(map[string]any{"content": "hello"})
	require.NoError(t, err)
	assert.Equal(t, Prompt{User: "hello"}, p)

	env := task.AssembleEnvelope(map[string]any{"text": "hello"}, []float32{0.1, 0.2})
	assert.Equal(t, &domain.TaskEnvelope{
		ActionType:      "echo",
		ActionData:      map[string]any{"text": "hello"},
		ActionEmbedding: []float32{0.1, 0.2},
	}, env)
	assert.Equal(t, "{{ content }}", task.PromptTemplate())
}

func TestNewTaskRejectsBadSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec TaskSpec
	}{
		{"empty name", TaskSpec{Prompt: "x", Input: contentInput, Output: textOutput}},
		{"missing schema", TaskSpec{Name: "x", Prompt: "x", Input: contentInput}},
		{"bad template", TaskSpec{Name: "x", Prompt: "{% for %}", Input: contentInput, Output: textOutput}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTask(tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestRouterRendersFragmentsInOrder(t *testing.T) {
	input := schema.MustParse(`{"type":"object","properties":{"context":{"type":"string"},"prompt":{"type":"string"}},"required":["context","prompt"]}`)
	r, err := NewRouter(RouterSpec{
		Name:               "decide",
		Instructions:       "route it",
		Context:            "Context: {{ context }}",
		FormatInstructions: "answer with flags",
		Prompt:             "Prompt: {{ prompt }}",
		Input:              input,
		Output:             textOutput,
	})
	require.NoError(t, err)

	p, err := r.RenderPrompt(map[string]any{"context": "ticket", "prompt": "crash on start"})
	require.NoError(t, err)
	assert.Equal(t, []string{"route it", "Context: ticket", "answer with flags"}, p.Instructions)
	assert.Equal(t, "Prompt: crash on start", p.User)

	instr, ctx, format, prompt := r.Fragments()
	assert.Equal(t, "route it", instr)
	assert.Equal(t, "Context: {{ context }}", ctx)
	assert.Equal(t, "answer with flags", format)
	assert.Equal(t, "Prompt: {{ prompt }}", prompt)

	env := r.AssembleEnvelope(map[string]any{"flag_a": true, "flag_b": true}, []float32{1})
	assert.Equal(t, "decide", env.RouterType)
	assert.Equal(t, map[string]any{"flag_a": true, "flag_b": true}, env.RouterData)
}

func TestRouterRenderFailsOnMissingVariable(t *testing.T) {
	r := MustRouter(RouterSpec{
		Name:    "decide",
		Context: "{{ context }}",
		Prompt:  "{{ prompt }}",
		Input:   contentInput,
		Output:  textOutput,
	})

	_, err := r.RenderPrompt(map[string]any{"prompt": "x"})
	assert.ErrorIs(t, err, domain.ErrTemplate)
}
