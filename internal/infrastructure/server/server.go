// Package server assembles the service from configuration and runs it until
// it receives a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taskrouter/taskrouter-api/internal/cache"
	"github.com/taskrouter/taskrouter-api/internal/catalog"
	"github.com/taskrouter/taskrouter-api/internal/config"
	"github.com/taskrouter/taskrouter-api/internal/database/bunstore"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/llm"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/qdrant"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/resilience"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/tracing"
	httpserver "github.com/taskrouter/taskrouter-api/internal/interface/http"
	"github.com/taskrouter/taskrouter-api/internal/usecase/dispatch"
)

const (
	serviceName     = "taskrouter-api"
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Hour
)

type Server struct {
	cfg        *config.Config
	log        *zap.SugaredLogger
	httpServer *http.Server
	closers    []func() error
}

func New(cfg *config.Config, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{cfg: cfg, log: log.Named("server")}
}

// Run builds every dependency, serves HTTP and blocks until ctx is cancelled or
// SIGINT/SIGTERM arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer s.close()

	shutdownTracing, err := tracing.Init(ctx, s.cfg.OTelExporter, s.cfg.OTelEndpoint, serviceName)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdownTracing(sctx)
	})

	tasks, routers, err := catalog.Build(s.cfg.CatalogFile, s.log)
	if err != nil {
		return err
	}
	s.log.Infow("Descriptor catalog loaded", "tasks", tasks.Len(), "routers", routers.Len())

	checks := map[string]httpserver.HealthCheck{}

	model, err := s.buildModel(ctx, checks)
	if err != nil {
		return err
	}

	backend, err := newCacheBackend(ctx, s.cfg, s.log)
	if err != nil {
		return err
	}
	if backend.close != nil {
		s.closers = append(s.closers, backend.close)
	}
	breaker := cache.NewBreakerStore(backend.store, s.cfg.CacheBreakerThreshold, s.cfg.CacheBreakerOpen(), s.log)
	checks["cache"] = func(ctx context.Context) error {
		if breaker.State() == resilience.StateOpen {
			return resilience.ErrCircuitOpen
		}
		if backend.ping != nil {
			return backend.ping(ctx)
		}
		return nil
	}
	c := cache.New(breaker, s.cfg.CacheNamespace, s.cfg.CacheTTL(), s.log)
	s.log.Infow("Cache ready", "backend", breaker.Name(), "namespace", s.cfg.CacheNamespace, "ttl", s.cfg.CacheTTL())

	// index stays an untyped nil when Qdrant is not configured.
	var index repository.EnvelopeIndex
	if s.cfg.IndexEnabled() {
		qi, err := qdrant.NewIndex(ctx, s.cfg.QdrantHost, s.cfg.QdrantPort, s.cfg.QdrantCollection, s.cfg.EmbeddingDim, s.log)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, qi.Close)
		index = qi
	}

	svc := dispatch.NewService(tasks, routers, model, c, index, s.log)
	api := httpserver.NewServer(svc, checks, s.log)

	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Port),
		Handler:           api.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infof("🌐 Starting REST API Server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("🛑 Shutdown signal received. Draining connections...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(sctx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	if backend.janitor != nil {
		g.Go(func() error { return backend.janitor(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("✅ Server stopped gracefully.")
	return nil
}

// buildModel wires the Gemini and Ollama backends behind llm.Router. Backends that
// are not configured are passed as untyped nils.
func (s *Server) buildModel(ctx context.Context, checks map[string]httpserver.HealthCheck) (*llm.Client, error) {
	var (
		local, cloud           repository.LLMClient
		localEmbed, cloudEmbed repository.EmbeddingClient
	)

	if !s.cfg.UseLocalOnlyLLM {
		gemini, err := llm.NewGeminiClient(ctx, s.cfg.GeminiAPIKey, s.cfg.GeminiModel, s.cfg.GeminiEmbedModel, s.log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, gemini.Close)
		cloud, cloudEmbed = gemini, gemini
	}

	if s.cfg.UseLocalOnlyLLM || s.cfg.EmbedWithLocal {
		s.log.Infof("🏠 Using local Ollama at %s", s.cfg.OllamaHost)
		ollama := llm.NewLocalOllamaClient(s.cfg.OllamaHost, s.cfg.OllamaLLMModel, nil, s.log)
		ollamaEmbed := llm.NewLocalOllamaClient(s.cfg.OllamaHost, s.cfg.OllamaEmbedModel, nil, s.log)
		local, localEmbed = ollama, ollamaEmbed
		checks["ollama"] = ollama.HealthCheck

		if s.cfg.OllamaPullOnStart {
			s.pullModels(ctx, ollama)
		}
	}

	router := llm.NewRouter(local, cloud, localEmbed, cloudEmbed, s.cfg.EmbedWithLocal, s.log)
	return llm.NewClient(router, s.cfg.EmbeddingDim, s.cfg.ModelTimeout(), s.log), nil
}

func (s *Server) pullModels(ctx context.Context, ollama *llm.LocalOllamaClient) {
	s.log.Infof("📥 Ensuring local models '%s' and '%s' are available...", s.cfg.OllamaLLMModel, s.cfg.OllamaEmbedModel)
	for _, m := range []string{s.cfg.OllamaLLMModel, s.cfg.OllamaEmbedModel} {
		if err := ollama.PullModel(ctx, m); err != nil {
			s.log.Warnf("📥 Failed to pull model '%s': %v", m, err)
		}
	}
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warnw("Failed to release resource", "error", err)
		}
	}
	s.closers = nil
}

// cacheBackend is the store selected by TR_CACHE_BACKEND plus its lifecycle hooks.
// Any hook may be nil.
type cacheBackend struct {
	store   repository.CacheStore
	ping    func(ctx context.Context) error
	janitor func(ctx context.Context) error
	close   func() error
}

func newCacheBackend(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*cacheBackend, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		store, err := cache.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return &cacheBackend{store: store, ping: store.Ping, close: store.Close}, nil

	case config.CacheSQLite:
		db, err := sql.Open(sqliteshim.ShimName, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1)
		store, err := bunstore.NewBunStore(ctx, db, sqlitedialect.New(), log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &cacheBackend{
			store:   store,
			ping:    db.PingContext,
			janitor: func(ctx context.Context) error { return store.RunJanitor(ctx, janitorInterval) },
			close:   store.Close,
		}, nil

	case config.CacheMemory:
		return &cacheBackend{store: cache.NewMemoryStore(cfg.MemoryCacheCapacity, cfg.CacheTTL())}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
