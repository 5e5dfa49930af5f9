// routes/referral_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/controllers"
	"github.com/partnerhub/partnerhub_backend/middleware"
)

// RegisterReferralRoutes registers routes for referral operations
func RegisterReferralRoutes(e *echo.Echo, referralController *controllers.ReferralController) {
	// QR codes are embedded in shared links, so no token is required
	e.GET("/api/referrals/qrcode/:code", referralController.GetReferralQRCode)

	referrals := e.Group("/api/referrals")
	referrals.Use(middleware.JWTMiddleware())

	referrals.GET("/data", referralController.GetReferralData)
	referrals.GET("/list", referralController.GetReferrals)
	referrals.GET("/commissions", referralController.GetReferralCommissions)
}
