package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geocode-service/app/config"
	"github.com/geocode-service/app/models"
	"github.com/geocode-service/app/requests"
	"github.com/geocode-service/app/responses"
	"github.com/geocode-service/helpers/utils"
	"github.com/geocode-service/internal/corrector"
	"github.com/geocode-service/internal/dataset"
	"github.com/geocode-service/internal/engine"
	"github.com/geocode-service/internal/normalizer"
)

const engineVersion = "1.0.0"

// GeocodeService координатор жизненного цикла запросов: owns the active
// request set, sequences the normalizer/corrector fork-join ahead of the
// search engine, and emits the progress stream with exactly one terminal
// notification per request.
type GeocodeService struct {
	registry   *RequestRegistry
	store      *dataset.Store
	engine     *engine.Engine
	corrector  *corrector.Corrector
	normalizer normalizer.Normalizer
	cache      ICacheService
	logger     *zap.Logger
	startTime  time.Time
}

// NewGeocodeService wires the coordinator.
func NewGeocodeService(store *dataset.Store, eng *engine.Engine, corr *corrector.Corrector, norm normalizer.Normalizer, cache ICacheService, logger *zap.Logger) *GeocodeService {
	return &GeocodeService{
		registry:   NewRequestRegistry(logger),
		store:      store,
		engine:     eng,
		corrector:  corr,
		normalizer: norm,
		cache:      cache,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Registry exposed for the progress endpoint and tests.
func (gs *GeocodeService) Registry() *RequestRegistry { return gs.registry }

// GetStartTime when the service came up.
func (gs *GeocodeService) GetStartTime() time.Time { return gs.startTime }

// SearchAddress drives one logical request through its full lifecycle:
// validate, register, normalize plus correct, then search and finalize. Every
// exit path (success, failure, cancellation, panic) funnels through the single
// deferred cleanup that emits the terminal notification and releases the
// registry entry.
func (gs *GeocodeService) SearchAddress(ctx context.Context, req requests.SearchAddressRequest) (resp *responses.SearchAddressResponse, err error) {
	started := time.Now()

	// Fail fast, before any resource is registered.
	if strings.TrimSpace(req.Address) == "" {
		return nil, fmt.Errorf("address must not be empty: %w", models.ErrInvalidInput)
	}
	if req.Limit < 0 || req.MinScoreThreshold < 0 || req.MinScoreThreshold > 1 {
		return nil, fmt.Errorf("limit/threshold out of range: %w", models.ErrInvalidInput)
	}
	if req.RequestID == "" {
		req.RequestID = utils.GenerateUUID()
	}
	if req.Limit == 0 {
		req.Limit = 10
	}

	cacheKey := searchCacheKey(req)
	if req.UseCache && gs.cache != nil {
		if cached, found, cerr := gs.cache.Get(ctx, cacheKey); cerr == nil && found {
			hit := *cached
			hit.RequestID = req.RequestID
			hit.CacheHit = true
			return &hit, nil
		}
	}

	entry := gs.registry.Create(ctx, req.RequestID)
	outcome := models.OutcomeInternal
	defer func() {
		if r := recover(); r != nil {
			gs.logger.Error("panic in search request",
				zap.String("request_id", req.RequestID),
				zap.Any("panic", r))
			resp = nil
			err = fmt.Errorf("internal error")
			outcome = models.OutcomeInternal
		}
		gs.finish(entry, outcome)
	}()
	fail := func(ferr error) (*responses.SearchAddressResponse, error) {
		outcome = models.Classify(ferr, entry.CallerCancelled())
		gs.logger.Warn("search request failed",
			zap.String("request_id", req.RequestID),
			zap.String("outcome", string(outcome)),
			zap.Error(ferr))
		return nil, ferr
	}

	entry.emit(responses.ProgressEvent{
		RequestID: req.RequestID, Stage: "received", Message: "запрос принят", Percent: 10,
	})

	normRes, corrRes, ferr := gs.normalizeAndCorrect(entry, req)
	if ferr != nil {
		return fail(ferr)
	}

	entry.emit(responses.ProgressEvent{
		RequestID: req.RequestID, Stage: "searching", Message: "поиск кандидатов", Percent: 50,
	})

	query := engine.Query{
		NormalizedText:    normRes.NormalizedText,
		OriginalText:      req.Address,
		Components:        normRes.Components,
		Limit:             req.Limit,
		MinScoreThreshold: req.MinScoreThreshold,
		FuzzyEnabled:      req.EnableFuzzySearch,
	}
	// Combined output: a confident correction replaces the normalized text,
	// and fills components the normalizer could not produce.
	if corrRes != nil && corrRes.WasCorrected {
		query.NormalizedText = corrRes.CorrectedText
		if query.Components.IsEmpty() && len(corrRes.Suggestions) > 0 {
			query.Components = corrRes.Suggestions[0].Components
		}
	}

	searchCtx, cancelSearch := context.WithTimeout(entry.Context(), config.SearchTimeout())
	defer cancelSearch()
	searchRes, serr := gs.engine.Search(searchCtx, query)
	if serr != nil {
		return fail(fmt.Errorf("search engine: %w", serr))
	}

	entry.emit(responses.ProgressEvent{
		RequestID: req.RequestID, Stage: "finalizing", Message: "формирование ответа", Percent: 90,
	})

	outcome = models.OutcomeOk
	if searchRes.TotalFound == 0 {
		outcome = models.OutcomeNotFound
	}
	resp = &responses.SearchAddressResponse{
		RequestID:       req.RequestID,
		Outcome:         outcome,
		SearchedAddress: searchRes.SearchedAddress,
		Results:         searchRes.Results,
		TotalFound:      searchRes.TotalFound,
		Metadata: responses.ResponseMetadata{
			ExecutionTimeMs: time.Since(started).Milliseconds(),
			Timestamp:       time.Now().Unix(),
			EngineVersion:   engineVersion,
		},
	}

	if req.UseCache && gs.cache != nil && outcome == models.OutcomeOk {
		if cerr := gs.cache.Set(ctx, cacheKey, resp); cerr != nil {
			gs.logger.Warn("cache set failed", zap.Error(cerr))
		}
	}
	return resp, nil
}

// normalizeAndCorrect runs the two remote-ish stages concurrently; the first
// failure cancels the sibling via the group context. Purely a latency
// optimization, neither branch depends on the other's result.
func (gs *GeocodeService) normalizeAndCorrect(entry *ActiveRequest, req requests.SearchAddressRequest) (*normalizer.Result, *corrector.Result, error) {
	entry.emit(responses.ProgressEvent{
		RequestID: req.RequestID, Stage: "normalizing", Message: "нормализация адреса", Percent: 25,
	})

	var (
		normRes *normalizer.Result
		corrRes *corrector.Result
	)
	g, gctx := errgroup.WithContext(entry.Context())

	g.Go(func() error {
		nctx, cancel := context.WithTimeout(gctx, config.NormalizeTimeout())
		defer cancel()
		res, err := gs.normalizer.Normalize(nctx, req.Address)
		if err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
		normRes = res
		return nil
	})

	if req.EnableFuzzySearch {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, config.CorrectTimeout())
			defer cancel()
			res, err := gs.corrector.Correct(cctx, req.Address,
				config.C.Correction.MaxSuggestions, config.C.Correction.MinSimilarity)
			if err != nil {
				return fmt.Errorf("correct: %w", err)
			}
			corrRes = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return normRes, corrRes, nil
}

// finish emits the single terminal notification and releases the registry
// entry. Idempotent by construction: the entry refuses events after close and
// Remove never evicts a successor entry.
func (gs *GeocodeService) finish(entry *ActiveRequest, outcome models.Outcome) {
	entry.emit(responses.ProgressEvent{
		RequestID: entry.ID,
		Stage:     "done",
		Message:   "запрос завершён",
		Percent:   100,
		Terminal:  true,
		Outcome:   outcome,
	})
	gs.registry.Remove(entry)
}

// CancelRequest signals caller-initiated cancellation; false for unknown or
// already-terminal ids.
func (gs *GeocodeService) CancelRequest(requestID string) bool {
	found := gs.registry.Cancel(requestID)
	gs.logger.Info("cancel requested",
		zap.String("request_id", requestID),
		zap.Bool("found", found))
	return found
}

// CorrectAddress runs the correction engine as a standalone operation.
func (gs *GeocodeService) CorrectAddress(ctx context.Context, req requests.CorrectAddressRequest) (*responses.CorrectAddressResponse, error) {
	started := time.Now()
	if strings.TrimSpace(req.OriginalAddress) == "" {
		return nil, fmt.Errorf("original_address must not be empty: %w", models.ErrInvalidInput)
	}
	maxSuggestions := req.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = config.C.Correction.MaxSuggestions
	}
	minSimilarity := req.MinSimilarity
	if minSimilarity <= 0 {
		minSimilarity = config.C.Correction.MinSimilarity
	}

	cctx, cancel := context.WithTimeout(ctx, config.CorrectTimeout())
	defer cancel()
	res, err := gs.corrector.Correct(cctx, req.OriginalAddress, maxSuggestions, minSimilarity)
	if err != nil {
		return nil, err
	}

	return &responses.CorrectAddressResponse{
		OriginalAddress: req.OriginalAddress,
		CorrectedText:   res.CorrectedText,
		Suggestions:     res.Suggestions,
		WasCorrected:    res.WasCorrected,
		Metadata: responses.ResponseMetadata{
			ExecutionTimeMs: time.Since(started).Milliseconds(),
			Timestamp:       time.Now().Unix(),
			EngineVersion:   engineVersion,
		},
	}, nil
}

// HealthCheck dataset availability plus a normalizer ping; a dead normalizer
// degrades the service instead of failing it.
func (gs *GeocodeService) HealthCheck(ctx context.Context) *responses.HealthCheckResponse {
	datasetAvailable := gs.store.Len() > 0

	status := models.HealthHealthy
	if !datasetAvailable {
		status = models.HealthUnhealthy
	} else {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := gs.normalizer.Ping(pctx); err != nil {
			gs.logger.Warn("normalizer ping failed", zap.Error(err))
			status = models.HealthDegraded
		}
	}

	return &responses.HealthCheckResponse{
		Status:           status,
		DatasetAvailable: datasetAvailable,
		Records:          gs.store.Len(),
		UptimeSeconds:    int64(time.Since(gs.startTime).Seconds()),
		Version:          engineVersion,
	}
}

// Stats admin snapshot.
func (gs *GeocodeService) Stats(ctx context.Context) *responses.StatsResponse {
	out := &responses.StatsResponse{
		Records:        gs.store.Len(),
		StreetTerms:    gs.store.Streets().Len(),
		LocalityTerms:  gs.store.Localities().Len(),
		ActiveRequests: gs.registry.Len(),
		UptimeSeconds:  int64(time.Since(gs.startTime).Seconds()),
	}
	if gs.cache != nil {
		if stats, err := gs.cache.GetStats(ctx); err == nil && stats != nil {
			out.Cache = &responses.CacheStats{
				HitRate:    stats.HitRate,
				TotalHits:  stats.TotalHits,
				TotalMiss:  stats.TotalMiss,
				TotalItems: stats.TotalItems,
			}
		}
	}
	return out
}

// searchCacheKey deterministic fingerprint of everything that affects the
// ranked output (request id deliberately excluded).
func searchCacheKey(req requests.SearchAddressRequest) string {
	h := xxhash.New()
	_, _ = h.WriteString(strings.ToLower(strings.TrimSpace(req.Address)))
	_, _ = h.WriteString("|" + strconv.Itoa(req.Limit))
	_, _ = h.WriteString("|" + strconv.FormatFloat(req.MinScoreThreshold, 'f', -1, 64))
	_, _ = h.WriteString("|" + strconv.FormatBool(req.EnableFuzzySearch))
	return strconv.FormatUint(h.Sum64(), 16)
}
