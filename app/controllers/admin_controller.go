package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geocode-service/app/responses"
	"github.com/geocode-service/app/services"
)

// AdminController operational endpoints, not part of the public surface.
type AdminController struct {
	geocodeService *services.GeocodeService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewAdminController создает admin-контроллер.
func NewAdminController(geocodeService *services.GeocodeService, cacheService services.ICacheService, logger *zap.Logger) *AdminController {
	return &AdminController{
		geocodeService: geocodeService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// GetStats GET /v1/admin/stats
func (ac *AdminController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.geocodeService.Stats(c.Request.Context()))
}

// InvalidateCache POST /v1/admin/cache/invalidate
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if ac.cacheService == nil {
		c.JSON(http.StatusOK, gin.H{"invalidated": false, "message": "cache disabled"})
		return
	}
	if err := ac.cacheService.Invalidate(c.Request.Context()); err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_INVALIDATE_FAILED",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": true})
}
