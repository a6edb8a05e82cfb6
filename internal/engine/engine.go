// Package engine implements the component-aware search and ranking engine:
// a component-match tier over the dataset's indexed fields with a fixed-floor
// full-text fallback tier, producing deterministic, explainable scores.
package engine

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/geocode-service/app/config"
	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/dataset"
	"github.com/geocode-service/internal/textnorm"
)

// Query одна попытка поиска.
type Query struct {
	NormalizedText    string
	OriginalText      string
	Components        *models.ParsedComponents
	Limit             int
	MinScoreThreshold float64
	FuzzyEnabled      bool
}

// Response результат поиска. TotalFound counts every qualifying candidate
// before the limit truncation.
type Response struct {
	SearchedAddress string                `json:"searched_address"`
	Results         []models.ScoredResult `json:"results"`
	TotalFound      int                   `json:"total_found"`
}

// Engine search engine over a read-only dataset store.
type Engine struct {
	store   *dataset.Store
	scoring config.Scoring
	logger  *zap.Logger
}

// NewEngine creates the engine with the configured scoring weights.
func NewEngine(store *dataset.Store, scoring config.Scoring, logger *zap.Logger) *Engine {
	return &Engine{store: store, scoring: scoring, logger: logger}
}

// Search runs the two-tier strategy. An empty result set is not an error:
// callers tell "no results" from failure by the error return, never by
// inspecting the list.
func (e *Engine) Search(ctx context.Context, q Query) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	results := e.componentTier(q)
	if len(results) == 0 {
		// Tier 2 runs only on a zero-qualifier tier 1, never as a supplement;
		// mixing tiers would make relative ranking ambiguous.
		results = e.fallbackTier(q)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.ID < results[j].Record.ID
	})

	total := len(results)
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}

	e.logger.Debug("search ranked",
		zap.String("normalized", q.NormalizedText),
		zap.Int("total_found", total),
		zap.Int("returned", len(results)))

	return &Response{
		SearchedAddress: q.NormalizedText,
		Results:         results,
		TotalFound:      total,
	}, nil
}

// componentTier scores candidates against the structured components. Runs only
// when at least one of city/road/house number is supplied.
func (e *Engine) componentTier(q Query) []models.ScoredResult {
	if q.Components.IsEmpty() {
		return nil
	}

	city := textnorm.Fold(q.Components.City)
	road := textnorm.Fold(q.Components.Road)
	house := textnorm.Fold(q.Components.HouseNumber)

	var candidates []models.AddressRecord
	if city != "" || road != "" {
		for _, id := range e.store.CandidateIDs(q.Components.City, q.Components.Road) {
			if rec, ok := e.store.Get(id); ok {
				candidates = append(candidates, rec)
			}
		}
	} else {
		// Only the house number is available, nothing indexed to restrict by.
		candidates = e.store.Records()
	}

	var out []models.ScoredResult
	for _, rec := range candidates {
		cityMatch := city != "" && strings.Contains(textnorm.Fold(rec.Locality), city)
		roadMatch := road != "" && strings.Contains(textnorm.Fold(rec.Street), road)
		houseMatch := house != "" && strings.Contains(textnorm.Fold(rec.HouseNumber), house)
		if !cityMatch && !roadMatch && !houseMatch {
			continue
		}

		supplied := boolCount(city != "", road != "", house != "")
		matched := boolCount(cityMatch, roadMatch, houseMatch)

		// Bonuses stack: a full three-component match lands exactly on 1.0
		// (0.85 + 0.05 + 0.10).
		score := e.scoring.ComponentBase
		if matched >= 2 {
			score += e.scoring.TwoComponentsBonus
		}
		if supplied == 3 && matched == 3 {
			score += e.scoring.AllComponentsBonus
		}
		if score > 1.0 {
			score = 1.0
		}
		if score < q.MinScoreThreshold {
			continue
		}

		out = append(out, models.ScoredResult{
			Record:    rec,
			Score:     score,
			MatchTier: models.TierComponentMatch,
		})
	}
	return out
}

// fallbackTier matches the normalized and original texts as substrings of the
// concatenated address. Fixed baseline below the component-tier floor, so tier
// provenance alone settles relative rank.
func (e *Engine) fallbackTier(q Query) []models.ScoredResult {
	normalized := textnorm.Fold(q.NormalizedText)
	original := textnorm.Fold(q.OriginalText)
	if normalized == "" && original == "" {
		return nil
	}
	if e.scoring.FallbackScore < q.MinScoreThreshold {
		return nil
	}

	var out []models.ScoredResult
	for _, rec := range e.store.Records() {
		full := textnorm.Fold(rec.FullAddress())
		if full == "" {
			continue
		}
		if (normalized != "" && strings.Contains(full, normalized)) ||
			(original != "" && strings.Contains(full, original)) {
			out = append(out, models.ScoredResult{
				Record:    rec,
				Score:     e.scoring.FallbackScore,
				MatchTier: models.TierFallbackText,
			})
		}
	}
	return out
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
