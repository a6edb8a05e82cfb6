package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/geocode-service/app/controllers"
)

// SetupAPIRoutes registers the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, geocodeController *controllers.GeocodeController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		geocode := v1.Group("/geocode")
		{
			geocode.POST("/search", geocodeController.Search)
			geocode.POST("/correct", geocodeController.Correct)
			geocode.POST("/cancel/:requestID", geocodeController.Cancel)
			geocode.GET("/progress/:requestID", geocodeController.Progress)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
		}

		v1.GET("/health", geocodeController.HealthCheck)
	}
}

// SetupHealthRoutes root-level probes for the orchestrator.
func SetupHealthRoutes(router *gin.Engine, geocodeController *controllers.GeocodeController) {
	router.GET("/health", geocodeController.HealthCheck)
	router.GET("/ready", geocodeController.HealthCheck)
	router.GET("/live", geocodeController.HealthCheck)
}
