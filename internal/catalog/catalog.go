// Package catalog holds the built-in task and router descriptors and loads
// optional overlays from YAML.
package catalog

import (
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/descriptor"
	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/registry"
	"github.com/taskrouter/taskrouter-api/internal/schema"
)

const routerInput = `{
	"type": "object",
	"properties": {
		"context": {"type": "string", "description": "Context for the routing decision"},
		"prompt": {"type": "string", "description": "Prompt for the routing decision"}
	},
	"required": ["context", "prompt"]
}`

func newTask(name, prompt, input, output string) *descriptor.Task {
	return descriptor.MustTask(descriptor.TaskSpec{
		Name:   name,
		Prompt: prompt,
		Input:  schema.MustParse(input),
		Output: schema.MustParse(output),
	})
}

func newRouter(spec descriptor.RouterSpec, input, output string) *descriptor.Router {
	spec.Input = schema.MustParse(input)
	spec.Output = schema.MustParse(output)
	return descriptor.MustRouter(spec)
}

// Register adds every built-in descriptor to the builders.
func Register(tasks *registry.Builder[*descriptor.Task], routers *registry.Builder[*descriptor.Router]) {
	for _, p := range []struct {
		provider domain.Provider
		tasks    []*descriptor.Task
	}{
		{domain.ProviderGitHub, githubTasks()},
		{domain.ProviderSlack, slackTasks()},
		{domain.ProviderDiscord, discordTasks()},
		{domain.ProviderSummarization, summarizationTasks()},
	} {
		for _, t := range p.tasks {
			tasks.Register(p.provider, t)
		}
	}
	for _, p := range []struct {
		provider domain.Provider
		routers  []*descriptor.Router
	}{
		{domain.ProviderDiscord, discordRouters()},
		{domain.ProviderModeration, moderationRouters()},
	} {
		for _, r := range p.routers {
			routers.Register(p.provider, r)
		}
	}
}

// Build registers the built-ins, then the overlay at path if path is not empty,
// and freezes the result.
func Build(path string, log *zap.SugaredLogger) (*registry.Registry[*descriptor.Task], *registry.Registry[*descriptor.Router], error) {
	tasks := registry.NewBuilder[*descriptor.Task](registry.KindTask, log)
	routers := registry.NewBuilder[*descriptor.Router](registry.KindRouter, log)
	Register(tasks, routers)

	if path != "" {
		overlay, err := LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		overlay.Register(tasks, routers)
	}
	return tasks.Build(), routers.Build(), nil
}

// Names lists task and router names for every provider.
func Names(tasks *registry.Registry[*descriptor.Task], routers *registry.Registry[*descriptor.Router]) map[domain.Provider]map[string][]string {
	out := make(map[domain.Provider]map[string][]string, len(domain.Providers))
	for _, p := range domain.Providers {
		out[p] = map[string][]string{
			"tasks":   tasks.List(p),
			"routers": routers.List(p),
		}
	}
	return out
}
