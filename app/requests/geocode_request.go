package requests

// SearchAddressRequest one logical search attempt. RequestID correlates the
// progress stream and cancellation; the server generates one when omitted.
type SearchAddressRequest struct {
	RequestID         string  `json:"request_id,omitempty"`
	Address           string  `json:"address" binding:"required"`
	Limit             int     `json:"limit,omitempty"`
	MinScoreThreshold float64 `json:"min_score_threshold,omitempty"`
	EnableFuzzySearch bool    `json:"enable_fuzzy_search,omitempty"`
	UseCache          bool    `json:"use_cache,omitempty"`
}

// CorrectAddressRequest fuzzy correction of a single raw address.
type CorrectAddressRequest struct {
	OriginalAddress string  `json:"original_address" binding:"required"`
	MaxSuggestions  int     `json:"max_suggestions,omitempty"`
	MinSimilarity   float64 `json:"min_similarity,omitempty"`
}
