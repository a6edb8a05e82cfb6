package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/geocode-service/app/responses"
)

const progressBuffer = 16

// ActiveRequest one in-flight logical operation: its cancellation handle and
// the per-request progress channel. Removed from the registry exactly once on
// any terminal outcome.
type ActiveRequest struct {
	ID        string
	CreatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu              sync.Mutex
	callerCancelled bool
	closed          bool
	lastPercent     int
	progress        chan responses.ProgressEvent
}

// Context the request's cancellable context; every dependency call derives
// its deadline from it.
func (ar *ActiveRequest) Context() context.Context { return ar.ctx }

// CallerCancelled reports whether CancelRequest (or supersession) fired, so a
// dead context can be attributed to the caller rather than to a deadline.
func (ar *ActiveRequest) CallerCancelled() bool {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	return ar.callerCancelled
}

// Progress the receive side of the push channel.
func (ar *ActiveRequest) Progress() <-chan responses.ProgressEvent { return ar.progress }

// emit pushes one event, non-blocking: a slow or absent consumer drops events
// instead of stalling the request (fire-and-forget). Percents below the last
// emitted value are discarded to keep the sequence strictly increasing.
func (ar *ActiveRequest) emit(ev responses.ProgressEvent) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	if ar.closed {
		return
	}
	if ev.Percent <= ar.lastPercent && !ev.Terminal {
		return
	}
	ar.lastPercent = ev.Percent
	select {
	case ar.progress <- ev:
	default:
	}
	if ev.Terminal {
		ar.closed = true
		close(ar.progress)
	}
}

// markCancelled flags the entry as caller-cancelled and aborts its context.
func (ar *ActiveRequest) markCancelled() {
	ar.mu.Lock()
	ar.callerCancelled = true
	ar.mu.Unlock()
	ar.cancel()
}

// RequestRegistry реестр активных запросов, the only mutable shared state in
// the subsystem. The lock guards individual map mutations only and is never
// held across an awaited call.
type RequestRegistry struct {
	mu      sync.Mutex
	entries map[string]*ActiveRequest
	logger  *zap.Logger
}

// NewRequestRegistry creates an empty registry.
func NewRequestRegistry(logger *zap.Logger) *RequestRegistry {
	return &RequestRegistry{
		entries: make(map[string]*ActiveRequest),
		logger:  logger,
	}
}

// Create registers a fresh entry. A duplicate requestId supersedes the prior
// attempt: the old entry is cancelled and evicted first, with a warning rather
// than an error. Last writer wins, the caller is replacing its own retry.
func (rr *RequestRegistry) Create(parent context.Context, requestID string) *ActiveRequest {
	ctx, cancel := context.WithCancel(parent)
	entry := &ActiveRequest{
		ID:        requestID,
		CreatedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		progress:  make(chan responses.ProgressEvent, progressBuffer),
	}

	rr.mu.Lock()
	prev := rr.entries[requestID]
	rr.entries[requestID] = entry
	rr.mu.Unlock()

	if prev != nil {
		rr.logger.Warn("superseding active request with same id",
			zap.String("request_id", requestID),
			zap.Time("prev_created_at", prev.CreatedAt))
		prev.markCancelled()
	}
	return entry
}

// Cancel signals cancellation on the matching entry. Returns false for
// unknown or already-terminal ids.
func (rr *RequestRegistry) Cancel(requestID string) bool {
	rr.mu.Lock()
	entry := rr.entries[requestID]
	rr.mu.Unlock()

	if entry == nil {
		return false
	}
	entry.markCancelled()
	return true
}

// Remove evicts the entry if it is still the one registered under its id.
// Idempotent; superseded entries never evict their replacement.
func (rr *RequestRegistry) Remove(entry *ActiveRequest) {
	rr.mu.Lock()
	if rr.entries[entry.ID] == entry {
		delete(rr.entries, entry.ID)
	}
	rr.mu.Unlock()
	entry.cancel()
}

// Get returns the active entry for an id, if any.
func (rr *RequestRegistry) Get(requestID string) (*ActiveRequest, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	entry, ok := rr.entries[requestID]
	return entry, ok
}

// Len number of in-flight requests.
func (rr *RequestRegistry) Len() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.entries)
}
