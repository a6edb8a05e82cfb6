//go:build !cgo

package normalizer

import (
	"context"
	"fmt"

	"github.com/geocode-service/app/models"
)

// Libpostal stub for builds without cgo; every call reports the collaborator
// as unavailable so callers degrade the same way as with a dead remote.
type Libpostal struct{}

func NewLibpostal() *Libpostal { return &Libpostal{} }

func (lp *Libpostal) Normalize(context.Context, string) (*Result, error) {
	return nil, fmt.Errorf("libpostal not compiled in: %w", models.ErrUpstreamUnavailable)
}

func (lp *Libpostal) Ping(context.Context) error {
	return fmt.Errorf("libpostal not compiled in: %w", models.ErrUpstreamUnavailable)
}
