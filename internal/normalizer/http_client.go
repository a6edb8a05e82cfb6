package normalizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
)

// HTTPClient remote normalizer over HTTP/JSON. Deadlines come from the caller
// context; the embedded client timeout is only a safety net.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient points at the normalizer service base URL.
func NewHTTPClient(baseURL string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type normalizeRequest struct {
	Address string `json:"address"`
}

// Normalize calls POST /v1/normalize. Context cancellation aborts the request
// at the transport level, not merely client-side.
func (hc *HTTPClient) Normalize(ctx context.Context, rawAddress string) (*Result, error) {
	body, err := json.Marshal(normalizeRequest{Address: rawAddress})
	if err != nil {
		return nil, fmt.Errorf("encode normalize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.baseURL+"/v1/normalize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build normalize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.client.Do(req)
	if err != nil {
		return nil, hc.translate(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		hc.logger.Warn("normalizer returned non-200", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("normalizer status %d: %w", resp.StatusCode, models.ErrUpstreamUnavailable)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode normalize response: %w", models.ErrUpstreamUnavailable)
	}
	if out.NormalizedText == "" {
		out.NormalizedText = rawAddress
	}
	return &out, nil
}

// Ping checks the collaborator's health endpoint.
func (hc *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := hc.client.Do(req)
	if err != nil {
		return hc.translate(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("normalizer health status %d: %w", resp.StatusCode, models.ErrUpstreamUnavailable)
	}
	return nil
}

// translate keeps context verdicts (cancelled vs deadline) intact and folds
// every other transport failure into UpstreamUnavailable.
func (hc *HTTPClient) translate(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return fmt.Errorf("normalizer unreachable: %w", models.ErrUpstreamUnavailable)
}
