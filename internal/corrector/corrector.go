// Package corrector implements the fuzzy address correction engine: candidate
// substrings from the raw input are matched against the street and locality
// dictionaries through their inverted index, scored by normalized edit
// distance and re-verified against the dataset store.
package corrector

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/dataset"
	"github.com/geocode-service/internal/textnorm"
)

const (
	// Bounded candidate set per index lookup keeps latency independent of
	// dictionary size.
	indexTopK = 20
	// Jaro-Winkler pre-rank keeps this many index candidates before the edit
	// distance pass.
	preRankKeep = 10

	DefaultMaxSuggestions = 5
	DefaultMinSimilarity  = 0.5
)

// Result ответ движка коррекции.
type Result struct {
	CorrectedText string                        `json:"corrected_text"`
	Suggestions   []models.CorrectionSuggestion `json:"suggestions"`
	WasCorrected  bool                          `json:"was_corrected"`
}

// Corrector fuzzy correction engine over the dataset store's dictionaries.
type Corrector struct {
	store  *dataset.Store
	logger *zap.Logger
}

// NewCorrector creates the engine.
func NewCorrector(store *dataset.Store, logger *zap.Logger) *Corrector {
	return &Corrector{store: store, logger: logger}
}

// candidate one substring of the original address worth correcting, with its
// original spelling kept for text replacement.
type candidate struct {
	orig   string
	folded string
}

// scored an index entry matched against a candidate.
type scored struct {
	entry      models.DictionaryEntry
	kind       dataset.DictionaryKind
	candidate  candidate
	similarity float64
}

// Correct runs the full correction pipeline. The context is only consulted
// between candidates; individual dictionary lookups are in-memory and cheap.
func (c *Corrector) Correct(ctx context.Context, originalAddress string, maxSuggestions int, minSimilarity float64) (*Result, error) {
	if strings.TrimSpace(originalAddress) == "" {
		return nil, models.ErrInvalidInput
	}
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}

	best := make(map[string]scored) // folded term+kind -> best score
	for _, cand := range c.candidates(originalAddress) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, kind := range []dataset.DictionaryKind{dataset.DictStreets, dataset.DictLocalities} {
			entries := c.store.Dictionary(kind).Lookup(cand.folded, indexTopK)
			if len(entries) == 0 {
				// Stale or sparse index: exhaustive substring scan over the
				// store for this candidate only, so we always return
				// something instead of failing outright.
				entries = c.store.ExhaustiveScan(kind, cand.folded, indexTopK)
			}
			if len(entries) == 0 {
				// A wrong first letter defeats both prefix and substring
				// retrieval ("орбат" for "улица Арбат"). Last resort: score
				// the whole dictionary; the pre-rank bounds the edit
				// distance pass.
				entries = c.store.Dictionary(kind).All()
			}
			for _, sc := range c.score(cand, kind, entries) {
				foldedTerm := textnorm.Fold(sc.entry.Term)
				key := string(sc.kind) + "\x00" + foldedTerm
				prev, ok := best[key]
				switch {
				case !ok || sc.similarity > prev.similarity:
					best[key] = sc
				case sc.similarity == prev.similarity &&
					sc.candidate.folded == foldedTerm && prev.candidate.folded != foldedTerm:
					// At equal similarity prefer the candidate that already is
					// the term, so replacement never splices the term over one
					// of its own fragments.
					best[key] = sc
				}
			}
		}
	}

	suggestions := c.rank(originalAddress, best, minSimilarity, maxSuggestions)

	// The corrected text comes from the best suggestion that actually changes
	// the input. An already-correct token scores 1.0 and would otherwise mask
	// a real correction further down the list. Comparison is on folded forms:
	// a case-only or mark-only splice is not a correction.
	res := &Result{CorrectedText: originalAddress, Suggestions: suggestions}
	foldedOriginal := textnorm.Fold(originalAddress)
	for _, s := range suggestions {
		if textnorm.Fold(s.CorrectedText) != foldedOriginal {
			res.CorrectedText = s.CorrectedText
			res.WasCorrected = true
			break
		}
	}
	return res, nil
}

// candidates tokenizes the original into single tokens, adjacent pairs and the
// whole string. Street names are frequently two words, so pairs matter.
func (c *Corrector) candidates(original string) []candidate {
	tokens := textnorm.Tokenize(original)
	seen := make(map[string]struct{})
	var out []candidate
	add := func(orig string) {
		folded := textnorm.Fold(orig)
		if len([]rune(folded)) < 2 {
			return
		}
		if _, dup := seen[folded]; dup {
			return
		}
		seen[folded] = struct{}{}
		out = append(out, candidate{orig: orig, folded: folded})
	}
	for _, tok := range tokens {
		add(tok)
	}
	for i := 0; i+1 < len(tokens); i++ {
		add(tokens[i] + " " + tokens[i+1])
	}
	add(original)
	return out
}

// score computes the normalized edit-distance similarity of each index entry
// against the candidate. A Jaro-Winkler pre-rank trims the set so the
// Levenshtein pass stays tiny. Terms are also compared with their street-type
// words stripped, so "орбат" reaches "улица Арбат".
func (c *Corrector) score(cand candidate, kind dataset.DictionaryKind, entries []models.DictionaryEntry) []scored {
	if len(entries) > preRankKeep {
		sort.SliceStable(entries, func(i, j int) bool {
			ji := smetrics.JaroWinkler(cand.folded, textnorm.Fold(entries[i].Term), 0.7, 4)
			jj := smetrics.JaroWinkler(cand.folded, textnorm.Fold(entries[j].Term), 0.7, 4)
			return ji > jj
		})
		entries = entries[:preRankKeep]
	}

	out := make([]scored, 0, len(entries))
	for _, e := range entries {
		folded := textnorm.Fold(e.Term)
		sim := similarity(cand.folded, folded)
		if stripped := textnorm.StripStreetType(folded); stripped != folded {
			if s := similarity(cand.folded, stripped); s > sim {
				sim = s
			}
		}
		out = append(out, scored{entry: e, kind: kind, candidate: cand, similarity: sim})
	}
	return out
}

// similarity = 1 − editDistance/max(len) over runes.
func similarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// rank verifies candidates against the store, attaches coordinates, applies
// the threshold and produces the deterministic ordering: similarity desc,
// frequency desc, term asc.
func (c *Corrector) rank(original string, best map[string]scored, minSimilarity float64, maxSuggestions int) []models.CorrectionSuggestion {
	all := make([]scored, 0, len(best))
	for _, sc := range best {
		if sc.similarity < minSimilarity {
			continue
		}
		all = append(all, sc)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].similarity != all[j].similarity {
			return all[i].similarity > all[j].similarity
		}
		if all[i].entry.Frequency != all[j].entry.Frequency {
			return all[i].entry.Frequency > all[j].entry.Frequency
		}
		return all[i].entry.Term < all[j].entry.Term
	})

	var out []models.CorrectionSuggestion
	for _, sc := range all {
		if len(out) >= maxSuggestions {
			break
		}
		rec, ok := c.store.VerifyTerm(sc.kind, sc.entry.Term)
		if !ok {
			// Dictionary and store are built from the same corpus, so a miss
			// here means the term no longer names a real address.
			continue
		}

		source := models.SourceFuzzyMatch
		if sc.similarity >= 1.0 {
			source = models.SourceExactMatch
		}

		components := &models.ParsedComponents{}
		if sc.kind == dataset.DictLocalities {
			components.City = sc.entry.Term
		} else {
			components.Road = sc.entry.Term
		}

		out = append(out, models.CorrectionSuggestion{
			CorrectedText: replaceCandidate(original, sc.candidate, sc.entry.Term),
			Similarity:    sc.similarity,
			Components:    components,
			Coordinates:   &models.Coordinates{Lat: rec.Lat, Lon: rec.Lon},
			Source:        source,
		})
	}
	return out
}

// replaceCandidate splices the corrected term into the original address in
// place of the candidate substring. Falls back to the bare term when the
// candidate cannot be located verbatim (punctuation variants).
func replaceCandidate(original string, cand candidate, term string) string {
	if cand.orig == original || cand.orig == "" {
		return term
	}
	if strings.Contains(original, cand.orig) {
		return strings.Replace(original, cand.orig, term, 1)
	}
	return term
}
