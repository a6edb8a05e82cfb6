package services

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/geocode-service/app/responses"
)

// LRUCacheService in-process cache, первый уровень. Fixed capacity, no TTL;
// eviction order alone bounds memory.
type LRUCacheService struct {
	cache  *lru.Cache[string, *responses.SearchAddressResponse]
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRUCacheService builds the in-process cache with the given capacity.
func NewLRUCacheService(capacity int, logger *zap.Logger) (*LRUCacheService, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	c, err := lru.New[string, *responses.SearchAddressResponse](capacity)
	if err != nil {
		return nil, err
	}
	return &LRUCacheService{cache: c, logger: logger}, nil
}

func (s *LRUCacheService) Get(_ context.Context, key string) (*responses.SearchAddressResponse, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return v, true, nil
	}
	s.misses.Add(1)
	return nil, false, nil
}

func (s *LRUCacheService) Set(_ context.Context, key string, value *responses.SearchAddressResponse) error {
	s.cache.Add(key, value)
	return nil
}

func (s *LRUCacheService) Invalidate(_ context.Context) error {
	s.cache.Purge()
	s.logger.Info("lru cache purged")
	return nil
}

func (s *LRUCacheService) GetStats(_ context.Context) (*CacheStats, error) {
	hits := s.hits.Load()
	misses := s.misses.Load()
	stats := &CacheStats{
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(s.cache.Len()),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats, nil
}
