package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scoring weights of the two-tier ranking. FallbackScore stays below
// ComponentBase so tier provenance alone orders mixed result sets.
type Scoring struct {
	ComponentBase      float64 `yaml:"component_base" json:"component_base"`
	AllComponentsBonus float64 `yaml:"all_components_bonus" json:"all_components_bonus"`
	TwoComponentsBonus float64 `yaml:"two_components_bonus" json:"two_components_bonus"`
	FallbackScore      float64 `yaml:"fallback_score" json:"fallback_score"`
}

// Correction defaults for the fuzzy correction engine.
type Correction struct {
	MaxSuggestions int     `yaml:"max_suggestions" json:"max_suggestions"`
	MinSimilarity  float64 `yaml:"min_similarity" json:"min_similarity"`
	IndexTopK      int     `yaml:"index_topk" json:"index_topk"`
}

// Timeouts absolute deadlines per dependency call, milliseconds.
type Timeouts struct {
	NormalizeMs int `yaml:"normalize_ms" json:"normalize_ms"`
	CorrectMs   int `yaml:"correct_ms" json:"correct_ms"`
	SearchMs    int `yaml:"search_ms" json:"search_ms"`
}

// EngineCfg engine-tuning configuration, loaded once at startup.
type EngineCfg struct {
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Correction Correction `yaml:"correction" json:"correction"`
	Timeouts   Timeouts   `yaml:"timeouts" json:"timeouts"`
}

var C = Defaults()

// Defaults mirrors the tuned production weights.
func Defaults() EngineCfg {
	return EngineCfg{
		Scoring: Scoring{
			ComponentBase:      0.85,
			AllComponentsBonus: 0.10,
			TwoComponentsBonus: 0.05,
			FallbackScore:      0.5,
		},
		Correction: Correction{
			MaxSuggestions: 5,
			MinSimilarity:  0.5,
			IndexTopK:      20,
		},
		Timeouts: Timeouts{
			NormalizeMs: 1500,
			CorrectMs:   1500,
			SearchMs:    2000,
		},
	}
}

// Load reads the tuning file over the defaults. A missing file keeps the
// defaults; a malformed file is an error.
func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	C = cfg
	// ENV overrides
	if os.Getenv("FALLBACK_SCORE_DISABLED") == "1" {
		C.Scoring.FallbackScore = 0
	}
	return nil
}

// NormalizeTimeout deadline for one normalizer call.
func NormalizeTimeout() time.Duration {
	return time.Duration(C.Timeouts.NormalizeMs) * time.Millisecond
}

// CorrectTimeout deadline for one correction pass.
func CorrectTimeout() time.Duration {
	return time.Duration(C.Timeouts.CorrectMs) * time.Millisecond
}

// SearchTimeout deadline for one search pass.
func SearchTimeout() time.Duration {
	return time.Duration(C.Timeouts.SearchMs) * time.Millisecond
}
