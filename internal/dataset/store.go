// Package dataset holds the read-mostly address corpus: the record store, the
// per-field inverted indexes and the two correction dictionaries. Everything
// here is built once at startup and never written again, so concurrent readers
// need no locking.
package dataset

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/textnorm"
)

// Store хранилище адресного набора: the records plus every lookup structure
// derived from them.
type Store struct {
	records []models.AddressRecord // index == position, IDs ascending

	byLocality map[string][]int64 // folded locality -> record IDs (sorted)
	byStreet   map[string][]int64 // folded street -> record IDs (sorted)

	streets    *Dictionary
	localities *Dictionary

	loadedAt time.Time
	logger   *zap.Logger
}

// NewStore builds the store and both dictionaries from a loaded extract.
// Records get sequential IDs in input order when the loader left them zero,
// keeping ordering reproducible across restarts of the same extract.
func NewStore(records []models.AddressRecord, logger *zap.Logger) *Store {
	s := &Store{
		records:    make([]models.AddressRecord, len(records)),
		byLocality: make(map[string][]int64),
		byStreet:   make(map[string][]int64),
		streets:    NewDictionary(DictStreets),
		localities: NewDictionary(DictLocalities),
		loadedAt:   time.Now(),
		logger:     logger,
	}
	copy(s.records, records)
	for i := range s.records {
		if s.records[i].ID == 0 {
			s.records[i].ID = int64(i + 1)
		}
	}
	sort.Slice(s.records, func(i, j int) bool { return s.records[i].ID < s.records[j].ID })

	for _, rec := range s.records {
		if rec.Locality != "" {
			key := textnorm.Fold(rec.Locality)
			s.byLocality[key] = append(s.byLocality[key], rec.ID)
			s.localities.Add(rec.Locality)
		}
		if rec.Street != "" {
			key := textnorm.Fold(rec.Street)
			s.byStreet[key] = append(s.byStreet[key], rec.ID)
			s.streets.Add(rec.Street)
		}
	}

	logger.Info("dataset store built",
		zap.Int("records", len(s.records)),
		zap.Int("street_terms", s.streets.Len()),
		zap.Int("locality_terms", s.localities.Len()))
	return s
}

// Len number of records.
func (s *Store) Len() int { return len(s.records) }

// LoadedAt when the store was built.
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// Records returns the full record slice. Callers must not mutate it.
func (s *Store) Records() []models.AddressRecord { return s.records }

// Get returns the record with the given ID.
func (s *Store) Get(id int64) (models.AddressRecord, bool) {
	i := sort.Search(len(s.records), func(i int) bool { return s.records[i].ID >= id })
	if i < len(s.records) && s.records[i].ID == id {
		return s.records[i], true
	}
	return models.AddressRecord{}, false
}

// Streets the street-name correction dictionary.
func (s *Store) Streets() *Dictionary { return s.streets }

// Localities the locality-name correction dictionary.
func (s *Store) Localities() *Dictionary { return s.localities }

// Dictionary picks a dictionary by kind.
func (s *Store) Dictionary(kind DictionaryKind) *Dictionary {
	if kind == DictLocalities {
		return s.localities
	}
	return s.streets
}

// CandidateIDs restricts the candidate set by the indexed fields present in
// the parsed components: every record whose folded locality/street contains
// the corresponding component key. Returned IDs are sorted and deduplicated;
// an empty restriction means "no indexed field available" and the engine falls
// back to scanning everything.
func (s *Store) CandidateIDs(locality, street string) []int64 {
	localityKey := textnorm.Fold(locality)
	streetKey := textnorm.Fold(street)
	if localityKey == "" && streetKey == "" {
		return nil
	}

	set := make(map[int64]struct{})
	if localityKey != "" {
		for key, ids := range s.byLocality {
			if strings.Contains(key, localityKey) {
				for _, id := range ids {
					set[id] = struct{}{}
				}
			}
		}
	}
	if streetKey != "" {
		for key, ids := range s.byStreet {
			if strings.Contains(key, streetKey) {
				for _, id := range ids {
					set[id] = struct{}{}
				}
			}
		}
	}

	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VerifyTerm confirms a corrected term names a real address and returns a
// representative record for its coordinates. The representative is the lowest
// record ID so re-verification stays deterministic.
func (s *Store) VerifyTerm(kind DictionaryKind, term string) (models.AddressRecord, bool) {
	key := textnorm.Fold(term)
	var ids []int64
	if kind == DictLocalities {
		ids = s.byLocality[key]
	} else {
		ids = s.byStreet[key]
	}
	if len(ids) == 0 {
		return models.AddressRecord{}, false
	}
	return s.Get(ids[0])
}

// ExhaustiveScan slow-path substring scan over dictionary source fields, used
// by the corrector when the trie produced nothing for a candidate. Guarantees
// the engine still returns something when the index is sparse.
func (s *Store) ExhaustiveScan(kind DictionaryKind, substr string, limit int) []models.DictionaryEntry {
	substr = textnorm.Fold(substr)
	if substr == "" || limit <= 0 {
		return nil
	}

	var keys map[string][]int64
	dict := s.streets
	if kind == DictLocalities {
		keys = s.byLocality
		dict = s.localities
	} else {
		keys = s.byStreet
	}

	var out []models.DictionaryEntry
	for key := range keys {
		if !strings.Contains(key, substr) {
			continue
		}
		if e, ok := dict.entries[key]; ok {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
