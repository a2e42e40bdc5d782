package descriptor

import (
	"fmt"

	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/schema"
	"github.com/taskrouter/taskrouter-api/internal/template"
)

// RouterSpec holds the data needed to build a Router.
type RouterSpec struct {
	Name               string
	Instructions       string
	Context            string
	FormatInstructions string
	Prompt             string
	Input              *schema.Schema
	Output             *schema.Schema
}

// Router renders four fragments from the same input. The first three become
// system instructions, the last one the user prompt.
type Router struct {
	name      string
	fragments [4]*template.Template
	input     *schema.Schema
	output    *schema.Schema
}

var _ Descriptor[*domain.RouterEnvelope] = (*Router)(nil)

func NewRouter(spec RouterSpec) (*Router, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("router name must not be empty")
	}
	if spec.Input == nil || spec.Output == nil {
		return nil, fmt.Errorf("router %s: input and output schemas are required", spec.Name)
	}

	r := &Router{name: spec.Name, input: spec.Input, output: spec.Output}
	sources := [4]struct{ part, src string }{
		{"instructions", spec.Instructions},
		{"context", spec.Context},
		{"format_instructions", spec.FormatInstructions},
		{"prompt", spec.Prompt},
	}
	for i, s := range sources {
		tpl, err := template.Compile(spec.Name+"."+s.part, s.src)
		if err != nil {
			return nil, err
		}
		r.fragments[i] = tpl
	}
	return r, nil
}

// MustRouter is NewRouter for built-in definitions.
func MustRouter(spec RouterSpec) *Router {
	r, err := NewRouter(spec)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Router) Name() string                 { return r.name }
func (r *Router) InputSchema() *schema.Schema  { return r.input }
func (r *Router) OutputSchema() *schema.Schema { return r.output }

// Fragments returns the template sources in render order.
func (r *Router) Fragments() (instructions, context, format, prompt string) {
	return r.fragments[0].Source(), r.fragments[1].Source(), r.fragments[2].Source(), r.fragments[3].Source()
}

func (r *Router) RenderPrompt(vars map[string]any) (Prompt, error) {
	var rendered [4]string
	for i, tpl := range r.fragments {
		text, err := tpl.Render(vars)
		if err != nil {
			return Prompt{}, err
		}
		rendered[i] = text
	}
	return Prompt{
		Instructions: []string{rendered[0], rendered[1], rendered[2]},
		User:         rendered[3],
	}, nil
}

func (r *Router) AssembleEnvelope(output map[string]any, embedding []float32) *domain.RouterEnvelope {
	return &domain.RouterEnvelope{
		RouterType:      r.name,
		RouterData:      output,
		RouterEmbedding: embedding,
	}
}
