package corrector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/dataset"
)

func newTestCorrector(t *testing.T) *Corrector {
	t.Helper()
	store := dataset.NewStore([]models.AddressRecord{
		{Locality: "Москва", Street: "Тверская улица", HouseNumber: "10", Lat: 55.7649, Lon: 37.6049},
		{Locality: "Москва", Street: "Тверская улица", HouseNumber: "12", Lat: 55.7654, Lon: 37.6061},
		{Locality: "Москва", Street: "улица Арбат", HouseNumber: "1", Lat: 55.7520, Lon: 37.5900},
		{Locality: "Санкт-Петербург", Street: "Невский проспект", HouseNumber: "28", Lat: 59.9357, Lon: 30.3257},
	}, zap.NewNop())
	return NewCorrector(store, zap.NewNop())
}

func TestCorrectEmptyInput(t *testing.T) {
	c := newTestCorrector(t)
	_, err := c.Correct(context.Background(), "   ", 5, 0.5)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCorrectMisspelledStreet(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Москва, Тверкая улица, 10", 5, 0.5)
	require.NoError(t, err)

	assert.True(t, res.WasCorrected)
	assert.Equal(t, "Москва, Тверская улица, 10", res.CorrectedText)

	// The exact locality token still tops the suggestion list.
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Москва", res.Suggestions[0].Components.City)
	assert.Equal(t, models.SourceExactMatch, res.Suggestions[0].Source)
	assert.InDelta(t, 1.0, res.Suggestions[0].Similarity, 1e-9)

	var street *models.CorrectionSuggestion
	for i := range res.Suggestions {
		if res.Suggestions[i].Components.Road == "Тверская улица" {
			street = &res.Suggestions[i]
			break
		}
	}
	require.NotNil(t, street, "expected a street suggestion")
	assert.Equal(t, models.SourceFuzzyMatch, street.Source)
	assert.Greater(t, street.Similarity, 0.9)
	require.NotNil(t, street.Coordinates)
	assert.InDelta(t, 55.7649, street.Coordinates.Lat, 1e-6)
}

// Two typos in one street span still resolve through the shared prefix.
func TestCorrectTwoTypos(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Москва, Тверкая улиза, 10", 5, 0.5)
	require.NoError(t, err)

	assert.True(t, res.WasCorrected)
	assert.Contains(t, res.CorrectedText, "Тверская улица")
	var best float64
	for _, s := range res.Suggestions {
		if s.Components.Road == "Тверская улица" && s.Similarity > best {
			best = s.Similarity
		}
	}
	assert.GreaterOrEqual(t, best, 0.5)
}

// A bare misspelled token corrects to the full dictionary term, street-type
// word included.
func TestCorrectSingleToken(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Тверкая", 5, 0.5)
	require.NoError(t, err)

	assert.True(t, res.WasCorrected)
	assert.Equal(t, "Тверская улица", res.CorrectedText)
}

// A multi-word input that already is a dictionary term must come back
// untouched: the term's own fragment ("Тверская") also scores 1.0 against the
// stripped term and must not win the replacement.
func TestCorrectExactMultiWordInputNotCorrected(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Тверская улица", 5, 0.5)
	require.NoError(t, err)

	assert.False(t, res.WasCorrected)
	assert.Equal(t, "Тверская улица", res.CorrectedText)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, models.SourceExactMatch, res.Suggestions[0].Source)
	assert.InDelta(t, 1.0, res.Suggestions[0].Similarity, 1e-9)
}

// A fully correct address stays byte-identical through correction.
func TestCorrectCleanAddressUnchanged(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Москва, Тверская улица, 10", 5, 0.5)
	require.NoError(t, err)

	assert.False(t, res.WasCorrected)
	assert.Equal(t, "Москва, Тверская улица, 10", res.CorrectedText)
}

// A street name typed without its type word, and with a wrong first letter,
// still reaches the full term through the whole-dictionary retrieval of last
// resort plus the stripped-term comparison.
func TestCorrectWithoutStreetTypeWord(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "орбат", 5, 0.5)
	require.NoError(t, err)

	assert.True(t, res.WasCorrected)
	assert.Equal(t, "улица Арбат", res.CorrectedText)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "улица Арбат", res.Suggestions[0].Components.Road)
	assert.Equal(t, models.SourceFuzzyMatch, res.Suggestions[0].Source)
	assert.InDelta(t, 0.8, res.Suggestions[0].Similarity, 1e-9)
	require.NotNil(t, res.Suggestions[0].Coordinates)
	assert.InDelta(t, 55.7520, res.Suggestions[0].Coordinates.Lat, 1e-6)
}

func TestCorrectExactInputNotCorrected(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Москва", 5, 0.5)
	require.NoError(t, err)

	assert.False(t, res.WasCorrected)
	assert.Equal(t, "Москва", res.CorrectedText)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, models.SourceExactMatch, res.Suggestions[0].Source)
}

func TestCorrectRespectsMaxSuggestions(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Москва, Тверкая улица, 10", 1, 0.5)
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 1)
}

func TestCorrectThresholdFiltersWeakMatches(t *testing.T) {
	c := newTestCorrector(t)

	res, err := c.Correct(context.Background(), "Тверкая", 5, 0.99)
	require.NoError(t, err)
	assert.False(t, res.WasCorrected)
	assert.Empty(t, res.Suggestions)
}

func TestCorrectCancelledContext(t *testing.T) {
	c := newTestCorrector(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Correct(ctx, "Москва, Тверкая улица, 10", 5, 0.5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimilarity(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected float64
	}{
		{a: "тверская", b: "тверская", expected: 1.0},
		{a: "тверкая", b: "тверская", expected: 1.0 - 1.0/8.0},
		{a: "", b: "", expected: 0},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, similarity(tc.a, tc.b), 1e-9, "similarity(%q, %q)", tc.a, tc.b)
	}
}
