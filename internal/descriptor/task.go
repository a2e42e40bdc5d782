package descriptor

import (
	"fmt"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/schema"
	"github.com/taskrouter/taskrouter-api/internal/template"
)

// TaskSpec holds the data needed to build a Task.
type TaskSpec struct {
	Name   string
	Prompt string
	Input  *schema.Schema
	Output *schema.Schema
}

// Task renders a single prompt and produces a TaskEnvelope.
type Task struct {
	name   string
	prompt *template.Template
	input  *schema.Schema
	output *schema.Schema
}

var _ Descriptor[*domain.TaskEnvelope] = (*Task)(nil)

// NewTask compiles the prompt template of spec.
func NewTask(spec TaskSpec) (*Task, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}
	if spec.Input == nil || spec.Output == nil {
		return nil, fmt.Errorf("task %s: input and output schemas are required", spec.Name)
	}
	tpl, err := template.Compile(spec.Name, spec.Prompt)
	if err != nil {
		return nil, err
	}
	return &Task{name: spec.Name, prompt: tpl, input: spec.Input, output: spec.Output}, nil
}

// MustTask is NewTask for built-in definitions.
func MustTask(spec TaskSpec) *Task {
	t, err := NewTask(spec)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Task) Name() string                 { return t.name }
func (t *Task) InputSchema() *schema.Schema  { return t.input }
func (t *Task) OutputSchema() *schema.Schema { return t.output }
func (t *Task) PromptTemplate() string       { return t.prompt.Source() }

func (t *Task) RenderPrompt(vars map[string]any) (Prompt, error) {
	text, err := t.prompt.Render(vars)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{User: text}, nil
}

func (t *Task) AssembleEnvelope(output map[string]any, embedding []float32) *domain.TaskEnvelope {
	return &domain.TaskEnvelope{
		ActionType:      t.name,
		ActionData:      output,
		ActionEmbedding: embedding,
	}
}
