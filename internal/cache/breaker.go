package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/resilience"
)

// BreakerStore stops calling a failing store for a while. Misses do not count as
// failures. While the breaker is open every call returns resilience.ErrCircuitOpen,
// which Cache treats like any other store error.
type BreakerStore struct {
	inner   repository.CacheStore
	breaker *resilience.CircuitBreaker
}

var _ repository.CacheStore = (*BreakerStore)(nil)

func NewBreakerStore(inner repository.CacheStore, threshold int, openFor time.Duration, log *zap.SugaredLogger) *BreakerStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("cache")
	breaker := resilience.NewCircuitBreaker(inner.Name(), threshold, openFor, resilience.Options{
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, repository.ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warnw("Cache store breaker changed state", "store", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerStore{inner: inner, breaker: breaker}
}

func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.breaker.Execute(func() error {
		var err error
		v, err = s.inner.Get(ctx, key)
		return err
	})
	return v, err
}

func (s *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.breaker.Execute(func() error {
		return s.inner.Set(ctx, key, value, ttl)
	})
}

// State exposes the breaker state for health reporting.
func (s *BreakerStore) State() resilience.State {
	return s.breaker.CurrentState()
}

func (s *BreakerStore) Name() string {
	return s.inner.Name()
}
