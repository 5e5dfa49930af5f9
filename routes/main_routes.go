// routes/main_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/controllers"
	"github.com/partnerhub/partnerhub_backend/websocket"
)

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, hub *websocket.Hub,
	authController *controllers.AuthController,
	partnerController *controllers.PartnerController,
	referralController *controllers.ReferralController,
	adminController *controllers.AdminController,
) {
	RegisterAuthRoutes(e, authController)
	RegisterPartnerRoutes(e, partnerController)
	RegisterReferralRoutes(e, referralController)
	RegisterAdminRoutes(e, adminController)

	e.GET("/api/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})
}
