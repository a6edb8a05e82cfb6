package models

import (
	"context"
	"errors"
)

// Outcome terminal taxonomy value; exactly one is produced per request.
type Outcome string

const (
	OutcomeOk                  Outcome = "ok"
	OutcomeInvalidInput        Outcome = "invalid_input"
	OutcomeNotFound            Outcome = "not_found"
	OutcomeCancelled           Outcome = "cancelled"
	OutcomeTimedOut            Outcome = "timed_out"
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
	OutcomeInternal            Outcome = "internal"
)

// Sentinel errors translated into the taxonomy at the request boundary.
// Dependency-call failures are wrapped around these instead of leaking raw
// transport errors to the caller.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("nothing cleared the score threshold")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Classify maps an error into the terminal taxonomy. callerCancelled
// disambiguates an aborted context: explicit CancelRequest wins over a
// deadline, дедлайн никогда не маскирует отмену.
func Classify(err error, callerCancelled bool) Outcome {
	switch {
	case err == nil:
		return OutcomeOk
	case callerCancelled, errors.Is(err, context.Canceled):
		return OutcomeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimedOut
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrUpstreamUnavailable):
		return OutcomeUpstreamUnavailable
	default:
		return OutcomeInternal
	}
}

// HealthStatus coarse service health signal.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)
