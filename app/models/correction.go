package models

// CorrectionSource how a suggestion was produced.
type CorrectionSource string

const (
	SourceExactMatch CorrectionSource = "exact_match"
	SourceFuzzyMatch CorrectionSource = "fuzzy_match"
)

// CorrectionSuggestion one ranked correction candidate. Ephemeral.
type CorrectionSuggestion struct {
	CorrectedText string            `json:"corrected_text"`
	Similarity    float64           `json:"similarity"`
	Components    *ParsedComponents `json:"components,omitempty"`
	Coordinates   *Coordinates      `json:"coordinates,omitempty"`
	Source        CorrectionSource  `json:"source"`
}
