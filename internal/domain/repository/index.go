package repository

import (
	"context"

	"github.com/taskrouter/taskrouter-api/internal/domain"
)

// IndexRecord is one envelope embedding stored in the index.
type IndexRecord struct {
	CacheKey string
	Provider domain.Provider
	Kind     string
	Name     string
	Vector   []float32
}

// IndexMatch is a nearest-neighbour hit.
type IndexMatch struct {
	CacheKey string  `json:"cache_key"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name"`
	Score    float32 `json:"score"`
}

// EnvelopeIndex stores envelope embeddings for similarity lookups.
type EnvelopeIndex interface {
	Upsert(ctx context.Context, rec IndexRecord) error
	Similar(ctx context.Context, provider domain.Provider, vector []float32, limit int) ([]IndexMatch, error)
	Close() error
}
