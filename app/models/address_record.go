package models

// AddressRecord одна запись адресного набора. Immutable after load; owned by
// the dataset store, query-time components never mutate it.
type AddressRecord struct {
	ID          int64             `json:"id" bson:"_id"`
	Locality    string            `json:"locality" bson:"locality"`
	Street      string            `json:"street" bson:"street"`
	HouseNumber string            `json:"house_number" bson:"house_number"`
	Lat         float64           `json:"lat" bson:"lat"`
	Lon         float64           `json:"lon" bson:"lon"`
	Tags        map[string]string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// FullAddress builds the display string "locality, street, house_number",
// skipping empty parts.
func (r AddressRecord) FullAddress() string {
	out := ""
	for _, part := range []string{r.Locality, r.Street, r.HouseNumber} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

// MatchTier tells which scoring strategy produced a result.
type MatchTier string

const (
	TierComponentMatch MatchTier = "component_match"
	TierFallbackText   MatchTier = "fallback_text"
)

// ScoredResult an AddressRecord plus its relevance score. Ephemeral, built per query.
type ScoredResult struct {
	Record    AddressRecord `json:"record"`
	Score     float64       `json:"score"`
	MatchTier MatchTier     `json:"match_tier"`
}

// DictionaryEntry one unique term known to a correction dictionary.
// Frequency is a deterministic tie-breaker only.
type DictionaryEntry struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
}
