package responses

import (
	"github.com/geocode-service/app/models"
)

// ResponseMetadata timing block carried on search/correct responses.
type ResponseMetadata struct {
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Timestamp       int64  `json:"timestamp"`
	EngineVersion   string `json:"engine_version"`
}

// SearchAddressResponse результат поиска адреса.
type SearchAddressResponse struct {
	RequestID       string                `json:"request_id"`
	Outcome         models.Outcome        `json:"outcome"`
	SearchedAddress string                `json:"searched_address"`
	Results         []models.ScoredResult `json:"results"`
	TotalFound      int                   `json:"total_found"`
	CacheHit        bool                  `json:"cache_hit"`
	Metadata        ResponseMetadata      `json:"metadata"`
}

// CorrectAddressResponse результат коррекции адреса.
type CorrectAddressResponse struct {
	OriginalAddress string                        `json:"original_address"`
	CorrectedText   string                        `json:"corrected_text"`
	Suggestions     []models.CorrectionSuggestion `json:"suggestions"`
	WasCorrected    bool                          `json:"was_corrected"`
	Metadata        ResponseMetadata              `json:"metadata"`
}

// CancelResponse whether an active request was found and signalled.
type CancelResponse struct {
	RequestID string `json:"request_id"`
	Cancelled bool   `json:"cancelled"`
}

// ProgressEvent one stage notification on the per-request push channel.
// Best-effort delivery; consumers must tolerate gaps, but percents are
// strictly increasing and the terminal event is always last.
type ProgressEvent struct {
	RequestID string         `json:"request_id"`
	Stage     string         `json:"stage"`
	Message   string         `json:"message"`
	Percent   int            `json:"percent"`
	Terminal  bool           `json:"terminal,omitempty"`
	Outcome   models.Outcome `json:"outcome,omitempty"`
}

// HealthCheckResponse boolean dataset signal plus coarse status.
type HealthCheckResponse struct {
	Status           models.HealthStatus `json:"status"`
	DatasetAvailable bool                `json:"dataset_available"`
	Records          int                 `json:"records"`
	UptimeSeconds    int64               `json:"uptime_seconds"`
	Version          string              `json:"version"`
}

// ErrorResponse uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatsResponse admin view over the service.
type StatsResponse struct {
	Records        int         `json:"records"`
	StreetTerms    int         `json:"street_terms"`
	LocalityTerms  int         `json:"locality_terms"`
	ActiveRequests int         `json:"active_requests"`
	Cache          *CacheStats `json:"cache,omitempty"`
	UptimeSeconds  int64       `json:"uptime_seconds"`
}

// CacheStats mirrored from the cache service for the stats endpoint.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}
