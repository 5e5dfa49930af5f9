package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/partnerhub/partnerhub_backend/config"
	"github.com/partnerhub/partnerhub_backend/controllers"
	"github.com/partnerhub/partnerhub_backend/middleware"
	"github.com/partnerhub/partnerhub_backend/repositories"
	"github.com/partnerhub/partnerhub_backend/routes"
	"github.com/partnerhub/partnerhub_backend/rpc"
	"github.com/partnerhub/partnerhub_backend/services"
	"github.com/partnerhub/partnerhub_backend/utils"
	"github.com/partnerhub/partnerhub_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis
	config.ConnectRedis()
	defer config.CloseRedis()

	// Backend RPC client
	backendCfg := config.LoadBackendConfig()
	invoker := rpc.NewInvoker(backendCfg)

	// Initialize repositories
	directory := repositories.NewPartnerDirectory(invoker)
	ledger := repositories.NewClientLedger(invoker)

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize services
	referralService := services.NewReferralService(directory, ledger)
	paymentService := services.NewPaymentService(directory, ledger, referralService, wsHub)

	session := utils.NewPartnerSession(config.GetRedisClient())

	// Initialize controllers
	authController := controllers.NewAuthController(directory, session)
	partnerController := controllers.NewPartnerController(directory, ledger, paymentService, session)
	referralController := controllers.NewReferralController(directory, ledger, referralService)
	adminController := controllers.NewAdminController(directory, ledger, paymentService, referralService)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{backendCfg.BaseURL},
		AllowInlineJS:  false,
		AllowEval:      false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "PartnerHub Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status": "healthy",
		})
	})

	// Register all routes
	routes.SetupRoutes(e, wsHub, authController, partnerController, referralController, adminController)

	// Periodically purge expired blacklist entries
	go middleware.CleanupBlacklist()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
