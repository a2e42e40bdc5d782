// Package descriptor defines the immutable records that bind a task or router
// name to its templates and schemas.
package descriptor

import (
	"github.com/taskrouter/taskrouter-api/internal/schema"
)

// Prompt is the rendered model input: system instructions in order, then the user prompt.
type Prompt struct {
	Instructions []string
	User         string
}

// Descriptor is the capability set the execution engine needs. E is the envelope type.
type Descriptor[E any] interface {
	Name() string
	InputSchema() *schema.Schema
	OutputSchema() *schema.Schema
	RenderPrompt(vars map[string]any) (Prompt, error)
	AssembleEnvelope(output map[string]any, embedding []float32) E
}
