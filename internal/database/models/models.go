package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CacheEntry is one cached envelope keyed by its content-addressed cache key.
type CacheEntry struct {
	bun.BaseModel `bun:"table:cache_entries,alias:ce"`

	Key       string    `bun:",pk"`
	Value     []byte    `bun:",notnull"`
	ExpiresAt time.Time `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// Expired reports whether the entry is past its expiry at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
