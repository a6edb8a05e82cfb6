package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geocode-service/app/responses"
)

const redisKeyPrefix = "geocode:search:"

// RedisCacheService shared cache, второй уровень. Survives restarts and is
// shared across replicas; entries expire via TTL.
type RedisCacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects and pings; a dead Redis fails construction so
// the caller can fall back to LRU only.
func NewRedisCacheService(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCacheService{client: client, ttl: ttl, logger: logger}, nil
}

func (s *RedisCacheService) Get(ctx context.Context, key string) (*responses.SearchAddressResponse, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var value responses.SearchAddressResponse
	if err := json.Unmarshal(raw, &value); err != nil {
		// Поврежденная запись, treat as a miss and let the writer replace it.
		s.logger.Warn("corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		s.misses.Add(1)
		return nil, false, nil
	}
	s.hits.Add(1)
	return &value, true, nil
}

func (s *RedisCacheService) Set(ctx context.Context, key string, value *responses.SearchAddressResponse) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisCacheService) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 500 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	s.logger.Info("redis cache invalidated")
	return nil
}

func (s *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits := s.hits.Load()
	misses := s.misses.Load()
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 500).Result()
		if err != nil {
			return stats, nil // счетчики still useful without the item count
		}
		stats.TotalItems += int64(len(keys))
		if next == 0 {
			break
		}
		cursor = next
	}
	return stats, nil
}
