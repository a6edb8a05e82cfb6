package dataset

import (
	"errors"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/textnorm"
)

// DictionaryKind which correction dictionary a term belongs to.
type DictionaryKind string

const (
	DictStreets    DictionaryKind = "streets"
	DictLocalities DictionaryKind = "localities"
)

// Dictionary словарь уникальных терминов с инвертированным индексом.
// A patricia trie over the folded term keys (and their ASCII transliteration)
// gives bounded prefix lookup instead of a linear scan; frequency is kept only
// as a deterministic tie-breaker. Built once at startup, read-only after.
type Dictionary struct {
	kind    DictionaryKind
	trie    *patricia.Trie
	entries map[string]*models.DictionaryEntry // folded term -> entry
}

// NewDictionary creates an empty dictionary for the given kind.
func NewDictionary(kind DictionaryKind) *Dictionary {
	return &Dictionary{
		kind:    kind,
		trie:    patricia.NewTrie(),
		entries: make(map[string]*models.DictionaryEntry),
	}
}

// Add registers one occurrence of term. Original spelling is preserved on the
// entry; indexing happens on the folded form.
func (d *Dictionary) Add(term string) {
	term = textnorm.CollapseSpaces(term)
	if term == "" {
		return
	}
	key := textnorm.Fold(term)
	if e, ok := d.entries[key]; ok {
		e.Frequency++
		return
	}
	e := &models.DictionaryEntry{Term: term, Frequency: 1}
	d.entries[key] = e
	d.trie.Insert(patricia.Prefix(key), e)
	if ascii := textnorm.AsciiKey(term); ascii != key {
		// Second trie arm so latin-keyboard input reaches Cyrillic terms.
		d.trie.Insert(patricia.Prefix(ascii), e)
	}
	if stripped := textnorm.StripStreetType(key); stripped != key {
		// Third arm keyed without the street-type word, so "арбат" reaches
		// "улица Арбат" by prefix.
		d.trie.Insert(patricia.Prefix(stripped), e)
	}
}

// Len number of distinct terms.
func (d *Dictionary) Len() int { return len(d.entries) }

// All returns every entry, frequency desc then term asc. Retrieval of last
// resort for queries the trie and substring scans cannot reach.
func (d *Dictionary) All() []models.DictionaryEntry {
	out := make([]models.DictionaryEntry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// Kind reports which dictionary this is.
func (d *Dictionary) Kind() DictionaryKind { return d.kind }

// Exact returns the entry whose folded form equals the folded candidate.
func (d *Dictionary) Exact(candidate string) (models.DictionaryEntry, bool) {
	e, ok := d.entries[textnorm.Fold(candidate)]
	if !ok {
		return models.DictionaryEntry{}, false
	}
	return *e, true
}

// Lookup collects up to topK candidate entries for an approximate query.
// It walks the trie with progressively shorter prefixes of the folded
// candidate, so a misspelled tail ("тверкая") still reaches the right subtree
// ("тверская ..."). Cost is bounded by topK regardless of dictionary size.
func (d *Dictionary) Lookup(candidate string, topK int) []models.DictionaryEntry {
	if topK <= 0 {
		topK = 20
	}
	key := []rune(textnorm.Fold(candidate))
	if len(key) < 2 {
		return nil
	}

	seen := make(map[string]struct{}, topK)
	var out []models.DictionaryEntry
	collect := func(prefix string) {
		_ = d.trie.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
			e := item.(*models.DictionaryEntry)
			if _, dup := seen[e.Term]; dup {
				return nil
			}
			if len(out) >= topK {
				return errStopVisit
			}
			seen[e.Term] = struct{}{}
			out = append(out, *e)
			return nil
		})
	}

	// Full prefix first, then back off; stop at 2 runes to keep the subtree
	// small enough to stay in the low-tens-of-milliseconds budget.
	for l := len(key); l >= 2 && len(out) < topK; l-- {
		collect(string(key[:l]))
	}

	// Deterministic candidate order before the similarity ranking: frequency
	// desc, then term asc.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// errStopVisit sentinel used to abort a trie visit once topK is reached.
var errStopVisit = errors.New("stop visit")
