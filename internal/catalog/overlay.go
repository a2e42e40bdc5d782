package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taskrouter/taskrouter-api/internal/descriptor"
	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/registry"
	"github.com/taskrouter/taskrouter-api/internal/schema"
)

type overlayFile struct {
	Tasks   []overlayTask   `yaml:"tasks"`
	Routers []overlayRouter `yaml:"routers"`
}

type overlayTask struct {
	Provider     string         `yaml:"provider"`
	Name         string         `yaml:"name"`
	Prompt       string         `yaml:"prompt"`
	InputSchema  map[string]any `yaml:"input_schema"`
	OutputSchema map[string]any `yaml:"output_schema"`
}

type overlayRouter struct {
	Provider           string         `yaml:"provider"`
	Name               string         `yaml:"name"`
	Instructions       string         `yaml:"instructions"`
	Context            string         `yaml:"context"`
	FormatInstructions string         `yaml:"format_instructions"`
	Prompt             string         `yaml:"prompt"`
	InputSchema        map[string]any `yaml:"input_schema"`
	OutputSchema       map[string]any `yaml:"output_schema"`
}

type taskEntry struct {
	provider domain.Provider
	task     *descriptor.Task
}

type routerEntry struct {
	provider domain.Provider
	router   *descriptor.Router
}

// Overlay is a set of descriptors loaded from a file, already compiled.
type Overlay struct {
	tasks   []taskEntry
	routers []routerEntry
}

// LoadFile reads and compiles an overlay. Unknown providers, bad schemas and
// template syntax errors are reported with the offending entry.
func LoadFile(path string) (*Overlay, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(raw)
}

// Parse compiles an overlay document.
func Parse(raw []byte) (*Overlay, error) {
	var file overlayFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	out := &Overlay{}
	for i, t := range file.Tasks {
		provider, in, output, err := compileCommon(t.Provider, t.InputSchema, t.OutputSchema)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d] %s: %w", i, t.Name, err)
		}
		task, err := descriptor.NewTask(descriptor.TaskSpec{Name: t.Name, Prompt: t.Prompt, Input: in, Output: output})
		if err != nil {
			return nil, fmt.Errorf("tasks[%d] %s: %w", i, t.Name, err)
		}
		out.tasks = append(out.tasks, taskEntry{provider: provider, task: task})
	}
	for i, r := range file.Routers {
		provider, in, output, err := compileCommon(r.Provider, r.InputSchema, r.OutputSchema)
		if err != nil {
			return nil, fmt.Errorf("routers[%d] %s: %w", i, r.Name, err)
		}
		router, err := descriptor.NewRouter(descriptor.RouterSpec{
			Name:               r.Name,
			Instructions:       r.Instructions,
			Context:            r.Context,
			FormatInstructions: r.FormatInstructions,
			Prompt:             r.Prompt,
			Input:              in,
			Output:             output,
		})
		if err != nil {
			return nil, fmt.Errorf("routers[%d] %s: %w", i, r.Name, err)
		}
		out.routers = append(out.routers, routerEntry{provider: provider, router: router})
	}
	return out, nil
}

func compileCommon(rawProvider string, in, out map[string]any) (domain.Provider, *schema.Schema, *schema.Schema, error) {
	provider, err := domain.ParseProvider(rawProvider)
	if err != nil {
		return "", nil, nil, err
	}
	inSchema, err := toSchema(in)
	if err != nil {
		return "", nil, nil, fmt.Errorf("input_schema: %w", err)
	}
	outSchema, err := toSchema(out)
	if err != nil {
		return "", nil, nil, fmt.Errorf("output_schema: %w", err)
	}
	return provider, inSchema, outSchema, nil
}

// toSchema converts a YAML mapping into a JSON Schema by way of its JSON encoding.
func toSchema(doc map[string]any) (*schema.Schema, error) {
	if doc == nil {
		return nil, fmt.Errorf("schema is required")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return schema.Parse(raw)
}

// Register adds the overlay entries to the builders in file order.
func (o *Overlay) Register(tasks *registry.Builder[*descriptor.Task], routers *registry.Builder[*descriptor.Router]) {
	for _, e := range o.tasks {
		tasks.Register(e.provider, e.task)
	}
	for _, e := range o.routers {
		routers.Register(e.provider, e.router)
	}
}

// Len returns the number of entries in the overlay.
func (o *Overlay) Len() int {
	return len(o.tasks) + len(o.routers)
}
