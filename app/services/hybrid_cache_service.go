package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/geocode-service/app/responses"
)

// HybridCacheService two-level cache: in-process LRU in front of Redis.
// Reads try L1 first and promote L2 hits; writes go to both. L2 failures are
// logged and swallowed so a Redis outage only costs the shared level.
type HybridCacheService struct {
	l1     *LRUCacheService
	l2     *RedisCacheService
	logger *zap.Logger
}

// NewHybridCacheService composes the two levels. l2 may be nil, in which case
// the hybrid degrades to the LRU alone.
func NewHybridCacheService(l1 *LRUCacheService, l2 *RedisCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

func (s *HybridCacheService) Get(ctx context.Context, key string) (*responses.SearchAddressResponse, bool, error) {
	if value, found, err := s.l1.Get(ctx, key); err == nil && found {
		return value, true, nil
	}
	if s.l2 == nil {
		return nil, false, nil
	}
	value, found, err := s.l2.Get(ctx, key)
	if err != nil {
		s.logger.Warn("l2 cache get failed", zap.Error(err))
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	// Promotion keeps hot keys in-process for the next caller.
	_ = s.l1.Set(ctx, key, value)
	return value, true, nil
}

func (s *HybridCacheService) Set(ctx context.Context, key string, value *responses.SearchAddressResponse) error {
	if err := s.l1.Set(ctx, key, value); err != nil {
		return err
	}
	if s.l2 != nil {
		if err := s.l2.Set(ctx, key, value); err != nil {
			s.logger.Warn("l2 cache set failed", zap.Error(err))
		}
	}
	return nil
}

func (s *HybridCacheService) Invalidate(ctx context.Context) error {
	if err := s.l1.Invalidate(ctx); err != nil {
		return err
	}
	if s.l2 != nil {
		return s.l2.Invalidate(ctx)
	}
	return nil
}

// GetStats merges both levels; hit rate is recomputed over the combined
// counters so promotions are not double counted as misses.
func (s *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	stats, err := s.l1.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	if s.l2 != nil {
		if l2Stats, err := s.l2.GetStats(ctx); err == nil {
			stats.TotalHits += l2Stats.TotalHits
			stats.TotalMiss = l2Stats.TotalMiss // L1 misses fall through to L2
			stats.TotalItems += l2Stats.TotalItems
		}
	}
	if total := stats.TotalHits + stats.TotalMiss; total > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(total)
	}
	return stats, nil
}
