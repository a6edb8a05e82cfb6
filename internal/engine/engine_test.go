package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocode-service/app/config"
	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/dataset"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := dataset.NewStore([]models.AddressRecord{
		{Locality: "Москва", Street: "Тверская улица", HouseNumber: "10"},
		{Locality: "Москва", Street: "Тверская улица", HouseNumber: "12"},
		{Locality: "Москва", Street: "улица Арбат", HouseNumber: "1"},
		{Locality: "Санкт-Петербург", Street: "Невский проспект", HouseNumber: "28"},
	}, zap.NewNop())
	return NewEngine(store, config.Defaults().Scoring, zap.NewNop())
}

func TestSearchAllComponentsMatched(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		NormalizedText: "москва тверская улица 10",
		Components: &models.ParsedComponents{
			City:        "Москва",
			Road:        "Тверская улица",
			HouseNumber: "10",
		},
	})
	require.NoError(t, err)

	require.Equal(t, 3, res.TotalFound)
	// All three components matched on the top record: exactly 1.0.
	assert.Equal(t, int64(1), res.Results[0].Record.ID)
	assert.InDelta(t, 1.0, res.Results[0].Score, 1e-9)
	assert.Equal(t, models.TierComponentMatch, res.Results[0].MatchTier)
	// Two of three on the next.
	assert.Equal(t, int64(2), res.Results[1].Record.ID)
	assert.InDelta(t, 0.90, res.Results[1].Score, 1e-9)
	// City only on the third.
	assert.Equal(t, int64(3), res.Results[2].Record.ID)
	assert.InDelta(t, 0.85, res.Results[2].Score, 1e-9)
}

// Equal scores fall back to record ID order, so repeated runs rank alike.
func TestSearchDeterministicTieBreak(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		Components: &models.ParsedComponents{City: "Москва"},
	})
	require.NoError(t, err)

	require.Equal(t, 3, res.TotalFound)
	for i, r := range res.Results {
		assert.Equal(t, int64(i+1), r.Record.ID)
		assert.InDelta(t, 0.85, r.Score, 1e-9)
	}
}

func TestSearchFallbackTier(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		NormalizedText: "невский",
	})
	require.NoError(t, err)

	require.Equal(t, 1, res.TotalFound)
	assert.Equal(t, int64(4), res.Results[0].Record.ID)
	assert.InDelta(t, 0.5, res.Results[0].Score, 1e-9)
	assert.Equal(t, models.TierFallbackText, res.Results[0].MatchTier)
}

// A single component-tier qualifier suppresses the fallback tier entirely.
func TestSearchTierExclusivity(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		NormalizedText: "невский",
		Components:     &models.ParsedComponents{City: "Москва"},
	})
	require.NoError(t, err)

	require.Equal(t, 3, res.TotalFound)
	for _, r := range res.Results {
		assert.Equal(t, models.TierComponentMatch, r.MatchTier)
	}
}

func TestSearchNoResults(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		NormalizedText: "заборостроение",
	})
	require.NoError(t, err)
	assert.Zero(t, res.TotalFound)
	assert.Empty(t, res.Results)
}

// TotalFound counts qualifiers before the limit cut.
func TestSearchLimitTruncation(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		Components: &models.ParsedComponents{City: "Москва"},
		Limit:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalFound)
	assert.Len(t, res.Results, 2)
}

func TestSearchMinScoreThreshold(t *testing.T) {
	e := newTestEngine(t)

	// Threshold above the fallback floor removes tier-2 results outright.
	res, err := e.Search(context.Background(), Query{
		NormalizedText:    "невский",
		MinScoreThreshold: 0.6,
	})
	require.NoError(t, err)
	assert.Zero(t, res.TotalFound)

	// Component tier still passes.
	res, err = e.Search(context.Background(), Query{
		Components:        &models.ParsedComponents{City: "Москва"},
		MinScoreThreshold: 0.6,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalFound)
}

func TestSearchCancelledContext(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Search(ctx, Query{NormalizedText: "москва"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchHouseNumberOnly(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Search(context.Background(), Query{
		Components: &models.ParsedComponents{HouseNumber: "28"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalFound)
	assert.Equal(t, int64(4), res.Results[0].Record.ID)
	assert.InDelta(t, 0.85, res.Results[0].Score, 1e-9)
}
