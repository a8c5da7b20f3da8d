package services

import (
	"fmt"
	"time"

	"productivity-tracker/backend/internal/cache"
	"productivity-tracker/backend/internal/store"
)

const snapshotTTL = 5 * time.Minute

// CachedAnalyticsService memoizes snapshots in Redis, keyed by the store
// revision. Every mutation bumps the revision, so stale entries are never
// served and simply age out by TTL. Cache failures fall through to a fresh
// computation; the cache is an optimization, never a source of truth.
type CachedAnalyticsService struct {
	analytics *AnalyticsService
	store     *store.Store
	cache     *cache.RedisCache
}

func NewCachedAnalyticsService(analytics *AnalyticsService, s *store.Store, c *cache.RedisCache) *CachedAnalyticsService {
	return &CachedAnalyticsService{analytics: analytics, store: s, cache: c}
}

func (s *CachedAnalyticsService) Snapshot() (Snapshot, error) {
	var cached Snapshot
	if err := s.cache.Get(s.key(), &cached); err == nil {
		return cached, nil
	}

	snap, err := s.analytics.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}

	// Snapshot may have persisted sweep transitions, so re-read the
	// revision before writing the entry.
	_ = s.cache.Set(s.key(), snap, snapshotTTL)
	return snap, nil
}

func (s *CachedAnalyticsService) key() string {
	return fmt.Sprintf("analytics:rev:%d", s.store.Revision())
}
