package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
	"go.uber.org/zap"

	"github.com/taskrouter/taskrouter-api/internal/database/models"
	"github.com/taskrouter/taskrouter-api/internal/domain/repository"
)

// Store is a CacheStore backed by a SQL table.
type Store struct {
	db  *bun.DB
	now func() time.Time
	log *zap.SugaredLogger
}

var _ repository.CacheStore = (*Store)(nil)

func NewBunStore(ctx context.Context, db *sql.DB, dialect schema.Dialect, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	bunDB := bun.NewDB(db, dialect)

	if _, err := bunDB.NewCreateTable().Model((*models.CacheEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create cache_entries table: %w", err)
	}
	if _, err := bunDB.NewCreateIndex().Model((*models.CacheEntry)(nil)).
		Index("idx_cache_entries_expires_at").IfNotExists().Column("expires_at").Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create expiry index: %w", err)
	}

	return &Store{db: bunDB, now: time.Now, log: log.Named("bunstore")}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	entry := new(models.CacheEntry)
	if err := s.db.NewSelect().Model(entry).Where("key = ?", key).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrCacheMiss
		}
		return nil, fmt.Errorf("cache select: %w", err)
	}
	if entry.Expired(s.now().UTC()) {
		return nil, repository.ErrCacheMiss
	}
	return entry.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now().UTC()
	entry := &models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	_, err := s.db.NewInsert().Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("expires_at = EXCLUDED.expires_at").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cache upsert: %w", err)
	}
	return nil
}

// DeleteExpired removes rows whose expiry has passed and returns how many went.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().Model((*models.CacheEntry)(nil)).
		Where("expires_at <= ?", s.now().UTC()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

// RunJanitor purges expired rows every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				s.log.Warnw("Failed to purge expired cache entries", "error", err)
				continue
			}
			if n > 0 {
				s.log.Infow("Purged expired cache entries", "count", n)
			}
		}
	}
}

func (s *Store) Name() string {
	return "sqlite"
}

func (s *Store) Close() error {
	return s.db.Close()
}
