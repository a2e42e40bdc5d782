package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// MemoryStore is a bounded in-process LRU. Entries expire after the TTL given at
// construction; the per-call ttl of Set is ignored.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

var _ repository.CacheStore = (*MemoryStore)(nil)

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.lru.Get(key)
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.lru.Add(key, append([]byte(nil), value...))
	return nil
}

func (s *MemoryStore) Len() int {
	return s.lru.Len()
}

func (s *MemoryStore) Name() string {
	return "memory"
}
