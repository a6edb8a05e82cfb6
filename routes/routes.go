package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/geocode-service/app/controllers"
)

// SetupAllRoutes middleware plus every route group.
func SetupAllRoutes(router *gin.Engine, geocodeController *controllers.GeocodeController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupHealthRoutes(router, geocodeController)
	SetupAPIRoutes(router, geocodeController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
