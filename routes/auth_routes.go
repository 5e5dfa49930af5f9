// routes/auth_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/controllers"
	"github.com/partnerhub/partnerhub_backend/middleware"
)

// RegisterAuthRoutes registers signup, login and session routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")

	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)

	// Routes below require a valid token
	protected := auth.Group("")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/logout", authController.Logout)
	protected.GET("/validate", authController.Validate)
}
