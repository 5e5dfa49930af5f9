// routes/partner_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/controllers"
	"github.com/partnerhub/partnerhub_backend/middleware"
)

// RegisterPartnerRoutes registers the partner portal routes
func RegisterPartnerRoutes(e *echo.Echo, partnerController *controllers.PartnerController) {
	partner := e.Group("/api/partner")
	partner.Use(middleware.JWTMiddleware())

	partner.GET("/dashboard", partnerController.GetDashboard)
	partner.GET("/clients", partnerController.GetClients)
	partner.POST("/clients", partnerController.AddClient)
	partner.GET("/clients/:id/payments", partnerController.GetClientPayments)
}
