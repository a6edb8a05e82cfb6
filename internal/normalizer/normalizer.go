// Package normalizer is the boundary to the external address normalizer
// collaborator. The core treats it as an opaque, possibly-unavailable remote
// dependency; transport failures surface as UpstreamUnavailable, never as raw
// client errors.
package normalizer

import (
	"context"

	"github.com/geocode-service/app/models"
)

// Result of one normalization call.
type Result struct {
	NormalizedText string                   `json:"normalized_text"`
	Components     *models.ParsedComponents `json:"components,omitempty"`
}

// Normalizer splits a raw address into normalized text plus structured
// components. Implementations: remote HTTP client, local libpostal (cgo).
type Normalizer interface {
	Normalize(ctx context.Context, rawAddress string) (*Result, error)
	Ping(ctx context.Context) error
}
