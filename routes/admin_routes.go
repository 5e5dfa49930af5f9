// routes/admin_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/controllers"
	"github.com/partnerhub/partnerhub_backend/middleware"
)

// RegisterAdminRoutes registers administrative routes
func RegisterAdminRoutes(e *echo.Echo, adminController *controllers.AdminController) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireAdmin())

	admin.POST("/payments", adminController.AddPayment)
	admin.POST("/referrals/:id/mark-paid", adminController.MarkReferralCommissionsPaid)
	admin.PUT("/referrals/:id/access", adminController.SetReferralAccess)
	admin.GET("/partners/:id/report", adminController.GetPartnerCommissionReport)
}
