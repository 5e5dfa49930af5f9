package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/middleware"
	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/repositories"
	"github.com/partnerhub/partnerhub_backend/rpc"
	"github.com/partnerhub/partnerhub_backend/utils"
)

type AuthController struct {
	directory *repositories.PartnerDirectory
	session   *utils.PartnerSession
}

func NewAuthController(directory *repositories.PartnerDirectory, session *utils.PartnerSession) *AuthController {
	return &AuthController{directory: directory, session: session}
}

// Signup registers a new partner at the lowest tier. A referral code in the
// request links the new partner to its referrer permanently.
func (ac *AuthController) Signup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	exists, err := ac.directory.CheckPartnerExists(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing registration",
		})
	}
	if exists {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "A partner with this email already exists",
		})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	// New partners start at the bottom of the ladder
	initial := utils.ComputeLevel(0)
	partner := &models.Partner{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: hash,
		PartnerLevel: initial.Level,
		Commission:   initial.CommissionRate,
	}

	created, err := ac.directory.CreatePartner(ctx, partner, req.ReferralCode)
	if err != nil {
		log.Printf("Partner creation failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create partner",
		})
	}

	created.Sanitize()
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Partner registered successfully",
		Data:    created,
	})
}

// Login verifies credentials and initializes the partner session.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Data:    err.Error(),
		})
	}

	partner, err := ac.directory.GetPartnerByEmail(ctx, req.Email)
	if err != nil {
		if rpc.IsTerminal(err) {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid email or password",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Login temporarily unavailable, please retry",
		})
	}

	if !utils.CheckPassword(partner.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	role := "partner"
	if partner.IsAdmin {
		role = "admin"
	}

	token, refreshToken, err := middleware.GenerateJWT(partner.ID, partner.Email, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to issue session token",
		})
	}

	// Session init: cache the snapshot the portal starts from
	if err := ac.session.Save(ctx, partner); err != nil {
		log.Printf("Failed to cache session for partner %s: %v", partner.ID, err)
	}

	partner.Sanitize()
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.LoginResponse{
			Token:        token,
			RefreshToken: refreshToken,
			Partner:      partner,
		},
	})
}

// Logout invalidates the token and tears the session down.
func (ac *AuthController) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid session",
		})
	}

	if token, ok := c.Get("user").(*jwt.Token); ok {
		middleware.BlacklistToken(token.Raw, time.Now().Add(7*24*time.Hour))
	}

	if err := ac.session.Clear(ctx, partnerID); err != nil {
		log.Printf("Failed to clear session for partner %s: %v", partnerID, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// Validate reports whether the presented token is still usable and returns
// the cached partner snapshot.
func (ac *AuthController) Validate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid session",
		})
	}

	partner, err := ac.session.Load(ctx, partnerID)
	if err != nil {
		log.Printf("Session load failed for partner %s: %v", partnerID, err)
	}
	if partner == nil {
		// Cache miss: rehydrate from the backend
		partner, err = ac.directory.GetPartner(ctx, partnerID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Partner not found",
			})
		}
		ac.session.Save(ctx, partner)
	} else {
		ac.session.Touch(ctx, partnerID)
	}

	partner.Sanitize()
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data:    partner,
	})
}
