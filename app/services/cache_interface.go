package services

import (
	"context"

	"github.com/geocode-service/app/responses"
)

// CacheStats counters exposed on the admin stats endpoint.
type CacheStats struct {
	HitRate    float64
	TotalHits  int64
	TotalMiss  int64
	TotalItems int64
}

// ICacheService cache over finished search responses, keyed by the request
// fingerprint. Implementations must be safe for concurrent use.
type ICacheService interface {
	Get(ctx context.Context, key string) (*responses.SearchAddressResponse, bool, error)
	Set(ctx context.Context, key string, value *responses.SearchAddressResponse) error
	Invalidate(ctx context.Context) error
	GetStats(ctx context.Context) (*CacheStats, error)
}
