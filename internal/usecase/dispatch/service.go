// Package dispatch is the boundary between transports and the execution engine.
// It resolves descriptors, memoizes executions and feeds the embedding index.
package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/cache"
	"github.com/taskrouter/taskrouter-api/internal/descriptor"
	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
	"github.com/taskrouter/taskrouter-api/internal/registry"
	"github.com/taskrouter/taskrouter-api/internal/schema"
	"github.com/taskrouter/taskrouter-api/internal/usecase/execute"
)

// Cache operation names. They are part of every cache key.
const (
	OpProcessTask   = "process_task"
	OpProcessRouter = "process_router"
)

// TaskInfo describes a registered task.
type TaskInfo struct {
	Name           string         `json:"name"`
	PromptTemplate string         `json:"prompt_template"`
	InputSchema    *schema.Schema `json:"input_schema"`
	OutputSchema   *schema.Schema `json:"output_schema"`
}

// RouterInfo describes a registered router.
type RouterInfo struct {
	Name               string         `json:"name"`
	Instructions       string         `json:"instructions"`
	Context            string         `json:"context"`
	FormatInstructions string         `json:"format_instructions"`
	Prompt             string         `json:"prompt"`
	InputSchema        *schema.Schema `json:"input_schema"`
	OutputSchema       *schema.Schema `json:"output_schema"`
}

type Service struct {
	tasks   *registry.Registry[*descriptor.Task]
	routers *registry.Registry[*descriptor.Router]
	engine  *execute.Engine
	model   repository.ModelClient
	cache   *cache.Cache
	index   repository.EnvelopeIndex
	log     *zap.SugaredLogger
}

// NewService wires the dispatch layer. index may be nil to disable similarity lookups.
func NewService(
	tasks *registry.Registry[*descriptor.Task],
	routers *registry.Registry[*descriptor.Router],
	model repository.ModelClient,
	c *cache.Cache,
	index repository.EnvelopeIndex,
	log *zap.SugaredLogger,
) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		tasks:   tasks,
		routers: routers,
		engine:  execute.NewEngine(model, log),
		model:   model,
		cache:   c,
		index:   index,
		log:     log.Named("dispatch"),
	}
}

// ExecuteTask runs the named task on body, or returns the cached envelope for an
// identical earlier request.
func (s *Service) ExecuteTask(ctx context.Context, provider domain.Provider, name string, body any) (*domain.TaskEnvelope, error) {
	task, err := s.tasks.Get(provider, name)
	if err != nil {
		return nil, err
	}
	params := []cache.Param{{Name: "provider", Value: provider.String()}, {Name: "task_name", Value: name}}
	return cache.Do(ctx, s.cache, OpProcessTask, params, body, func(ctx context.Context, key string) (*domain.TaskEnvelope, error) {
		env, err := execute.Run(ctx, s.engine, task, body)
		if err != nil {
			return nil, err
		}
		s.indexEnvelope(ctx, key, provider, env)
		return env, nil
	})
}

// ExecuteRouter is ExecuteTask for routers.
func (s *Service) ExecuteRouter(ctx context.Context, provider domain.Provider, name string, body any) (*domain.RouterEnvelope, error) {
	router, err := s.routers.Get(provider, name)
	if err != nil {
		return nil, err
	}
	params := []cache.Param{{Name: "provider", Value: provider.String()}, {Name: "router_name", Value: name}}
	return cache.Do(ctx, s.cache, OpProcessRouter, params, body, func(ctx context.Context, key string) (*domain.RouterEnvelope, error) {
		env, err := execute.Run(ctx, s.engine, router, body)
		if err != nil {
			return nil, err
		}
		s.indexEnvelope(ctx, key, provider, env)
		return env, nil
	})
}

func (s *Service) indexEnvelope(ctx context.Context, key string, provider domain.Provider, env domain.Envelope) {
	if s.index == nil {
		return
	}
	err := s.index.Upsert(ctx, repository.IndexRecord{
		CacheKey: key,
		Provider: provider,
		Kind:     env.Kind(),
		Name:     env.Name(),
		Vector:   env.Embedding(),
	})
	if err != nil {
		s.log.Warnw("Failed to index envelope", "key", key, "error", err)
	}
}

// ListTasks returns the tasks of provider keyed by name. An unknown or empty
// provider yields an empty map.
func (s *Service) ListTasks(provider domain.Provider) map[string]TaskInfo {
	out := make(map[string]TaskInfo)
	for _, t := range s.tasks.Descriptors(provider) {
		out[t.Name()] = TaskInfo{
			Name:           t.Name(),
			PromptTemplate: t.PromptTemplate(),
			InputSchema:    t.InputSchema(),
			OutputSchema:   t.OutputSchema(),
		}
	}
	return out
}

// ListRouters returns the routers of provider keyed by name.
func (s *Service) ListRouters(provider domain.Provider) map[string]RouterInfo {
	out := make(map[string]RouterInfo)
	for _, r := range s.routers.Descriptors(provider) {
		instructions, background, format, prompt := r.Fragments()
		out[r.Name()] = RouterInfo{
			Name:               r.Name(),
			Instructions:       instructions,
			Context:            background,
			FormatInstructions: format,
			Prompt:             prompt,
			InputSchema:        r.InputSchema(),
			OutputSchema:       r.OutputSchema(),
		}
	}
	return out
}

// Similar embeds text and returns the closest indexed envelopes of provider.
func (s *Service) Similar(ctx context.Context, provider domain.Provider, text string, limit int) ([]repository.IndexMatch, error) {
	if s.index == nil {
		return nil, domain.ErrIndexDisabled
	}
	vec, err := s.model.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	matches, err := s.index.Similar(ctx, provider, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity lookup for %s: %w", provider, err)
	}
	return matches, nil
}
