package normalizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
)

func TestHTTPClientNormalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/normalize", r.URL.Path)

		var req normalizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Москва, Тверская улица, 10", req.Address)

		json.NewEncoder(w).Encode(Result{
			NormalizedText: "москва тверская улица 10",
			Components: &models.ParsedComponents{
				City:        "Москва",
				Road:        "Тверская улица",
				HouseNumber: "10",
			},
		})
	}))
	defer srv.Close()

	hc := NewHTTPClient(srv.URL, zap.NewNop())
	res, err := hc.Normalize(context.Background(), "Москва, Тверская улица, 10")
	require.NoError(t, err)
	assert.Equal(t, "москва тверская улица 10", res.NormalizedText)
	require.NotNil(t, res.Components)
	assert.Equal(t, "Москва", res.Components.City)
}

// An empty normalized_text in the reply falls back to the raw input, never to
// an empty search.
func TestHTTPClientNormalizeEmptyFallsBackToRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{})
	}))
	defer srv.Close()

	hc := NewHTTPClient(srv.URL, zap.NewNop())
	res, err := hc.Normalize(context.Background(), "Тверская 10")
	require.NoError(t, err)
	assert.Equal(t, "Тверская 10", res.NormalizedText)
}

func TestHTTPClientNormalizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hc := NewHTTPClient(srv.URL, zap.NewNop())
	_, err := hc.Normalize(context.Background(), "Тверская 10")
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}

func TestHTTPClientNormalizeUnreachable(t *testing.T) {
	hc := NewHTTPClient("http://127.0.0.1:1", zap.NewNop())
	_, err := hc.Normalize(context.Background(), "Тверская 10")
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}

// Caller cancellation survives the transport layer untranslated so the
// coordinator can tell Cancelled from UpstreamUnavailable.
func TestHTTPClientNormalizeCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hc := NewHTTPClient(srv.URL, zap.NewNop())
	_, err := hc.Normalize(ctx, "Тверская 10")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hc := NewHTTPClient(srv.URL, zap.NewNop())
	assert.NoError(t, hc.Ping(context.Background()))

	srv.Close()
	assert.ErrorIs(t, hc.Ping(context.Background()), models.ErrUpstreamUnavailable)
}
