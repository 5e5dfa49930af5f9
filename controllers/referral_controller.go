package controllers

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/repositories"
	"github.com/partnerhub/partnerhub_backend/services"
	"github.com/partnerhub/partnerhub_backend/utils"
)

type ReferralController struct {
	directory *repositories.PartnerDirectory
	ledger    *repositories.ClientLedger
	referrals *services.ReferralService
}

func NewReferralController(directory *repositories.PartnerDirectory, ledger *repositories.ClientLedger, referrals *services.ReferralService) *ReferralController {
	return &ReferralController{directory: directory, ledger: ledger, referrals: referrals}
}

func portalURL() string {
	if url := os.Getenv("PORTAL_URL"); url != "" {
		return url
	}
	return "https://portal.partnerhub.app"
}

// GetReferralData returns the partner's referral code (issuing one if
// missing), referral count and share link.
func (rc *ReferralController) GetReferralData(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	partner, err := rc.directory.GetPartner(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Partner not found",
		})
	}

	code, err := rc.referrals.EnsureReferralCode(ctx, partner)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate referral code",
		})
	}

	referrals, err := rc.directory.GetReferrals(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch referrals, please retry",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral data fetched successfully",
		Data: map[string]interface{}{
			"referralCode":          code,
			"referralCount":         len(referrals),
			"referralAccessEnabled": partner.ReferralAccessEnabled,
			"referralLink":          portalURL() + "/register?ref=" + code,
			"qrCodeURL":             "/api/referrals/qrcode/" + code,
		},
	})
}

// GetReferralQRCode generates a QR code image for a referral code
func (rc *ReferralController) GetReferralQRCode(c echo.Context) error {
	referralCode := c.Param("code")
	if referralCode == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Referral code is required",
		})
	}

	content := portalURL() + "/register?ref=" + referralCode

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code: " + err.Error(),
		})
	}

	qrCode, err = barcode.Scale(qrCode, 200, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code: " + err.Error(),
		})
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code as PNG: " + err.Error(),
		})
	}

	c.Response().Header().Set("Content-Disposition", "inline; filename=referral-"+referralCode+".png")
	return c.Blob(http.StatusOK, "image/png", buffer.Bytes())
}

// GetReferrals lists the partners referred by the authenticated partner.
func (rc *ReferralController) GetReferrals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	referrals, err := rc.directory.GetReferrals(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch referrals, please retry",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referrals fetched successfully",
		Data:    referrals,
	})
}

// GetReferralCommissions returns the partner's referral commission history
// with earned/unpaid totals.
func (rc *ReferralController) GetReferralCommissions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	commissions, err := rc.ledger.GetReferralCommissions(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch referral commissions, please retry",
		})
	}

	var totalEarned, totalUnpaid float64
	for i := range commissions {
		totalEarned += commissions[i].CommissionAmount
		if commissions[i].PaidAt == nil {
			totalUnpaid += commissions[i].CommissionAmount
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral commissions fetched successfully",
		Data: map[string]interface{}{
			"commissions": commissions,
			"totalEarned": totalEarned,
			"totalUnpaid": totalUnpaid,
		},
	})
}
