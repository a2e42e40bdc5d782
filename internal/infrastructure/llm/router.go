package llm

import (
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// Router picks the completion and embedding backends.
// Completion prefers the cloud backend and falls back to local when no cloud
// client is configured. Embedding follows embedWithLocal, falling back to
// whichever backend exists.
type Router struct {
	localClient    repository.LLMClient
	cloudClient    repository.LLMClient
	localEmbedder  repository.EmbeddingClient
	cloudEmbedder  repository.EmbeddingClient
	embedWithLocal bool
	log            *zap.SugaredLogger
}

// NewRouter initializes the router with the specified backends. Any of them may be nil.
func NewRouter(local, cloud repository.LLMClient, localEmbed, cloudEmbed repository.EmbeddingClient, embedWithLocal bool, log *zap.SugaredLogger) *Router {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Router{
		localClient:    local,
		cloudClient:    cloud,
		localEmbedder:  localEmbed,
		cloudEmbedder:  cloudEmbed,
		embedWithLocal: embedWithLocal,
		log:            log.Named("router"),
	}
}

// RouteCompletion returns the backend for structured completions.
func (r *Router) RouteCompletion() repository.LLMClient {
	selected := r.cloudClient
	icon := "☁️"
	if selected == nil {
		selected = r.localClient
		icon = "🏠"
	}
	if selected != nil {
		r.log.Debugf("🛤️  Routing completion to %s %s", icon, selected.Name())
	}
	return selected
}

// RouteEmbedding returns the backend for embeddings.
func (r *Router) RouteEmbedding() repository.EmbeddingClient {
	first, second := r.cloudEmbedder, r.localEmbedder
	if r.embedWithLocal {
		first, second = second, first
	}
	selected := first
	if selected == nil {
		selected = second
	}
	if selected != nil {
		r.log.Debugf("🛤️  Routing embedding to %s", selected.Name())
	}
	return selected
}
