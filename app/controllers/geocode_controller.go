package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
	"github.com/geocode-service/app/requests"
	"github.com/geocode-service/app/responses"
	"github.com/geocode-service/app/services"
)

// GeocodeController HTTP surface over the geocode service.
type GeocodeController struct {
	geocodeService *services.GeocodeService
	logger         *zap.Logger
}

// NewGeocodeController создает контроллер.
func NewGeocodeController(geocodeService *services.GeocodeService, logger *zap.Logger) *GeocodeController {
	return &GeocodeController{
		geocodeService: geocodeService,
		logger:         logger,
	}
}

// Search POST /v1/geocode/search
func (gc *GeocodeController) Search(c *gin.Context) {
	var req requests.SearchAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	resp, err := gc.geocodeService.SearchAddress(c.Request.Context(), req)
	if err != nil {
		gc.writeError(c, req.RequestID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Correct POST /v1/geocode/correct
func (gc *GeocodeController) Correct(c *gin.Context) {
	var req requests.CorrectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request body: " + err.Error(),
		})
		return
	}

	resp, err := gc.geocodeService.CorrectAddress(c.Request.Context(), req)
	if err != nil {
		gc.writeError(c, "", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel POST /v1/geocode/cancel/:requestID
// Always 200; the body says whether an active request was actually signalled.
func (gc *GeocodeController) Cancel(c *gin.Context) {
	requestID := c.Param("requestID")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "MISSING_REQUEST_ID",
			Message: "request id is required",
		})
		return
	}
	cancelled := gc.geocodeService.CancelRequest(requestID)
	c.JSON(http.StatusOK, responses.CancelResponse{
		RequestID: requestID,
		Cancelled: cancelled,
	})
}

// Progress GET /v1/geocode/progress/:requestID
// Streams the per-request progress events as SSE until the terminal event
// closes the channel or the client disconnects.
func (gc *GeocodeController) Progress(c *gin.Context) {
	requestID := c.Param("requestID")
	entry, ok := gc.geocodeService.Registry().Get(requestID)
	if !ok {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "REQUEST_NOT_FOUND",
			Message: "no active request with this id",
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	events := entry.Progress()
	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("progress", ev)
			return true
		case <-clientGone:
			return false
		}
	})
}

// HealthCheck GET /health
func (gc *GeocodeController) HealthCheck(c *gin.Context) {
	resp := gc.geocodeService.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if resp.Status == models.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// writeError maps the outcome taxonomy onto HTTP statuses.
func (gc *GeocodeController) writeError(c *gin.Context, requestID string, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, models.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, models.ErrUpstreamUnavailable):
		status, code = http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	}
	outcome := models.Classify(err, false)
	switch outcome {
	case models.OutcomeCancelled:
		// 499 is the de-facto client-closed-request status.
		status, code = 499, "CANCELLED"
	case models.OutcomeTimedOut:
		status, code = http.StatusGatewayTimeout, "TIMED_OUT"
	}

	gc.logger.Warn("request failed",
		zap.String("request_id", requestID),
		zap.String("code", code),
		zap.Error(err))
	c.JSON(status, responses.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
