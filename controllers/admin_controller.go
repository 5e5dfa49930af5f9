package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gopkg.in/gomail.v2"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/repositories"
	"github.com/partnerhub/partnerhub_backend/services"
	"github.com/partnerhub/partnerhub_backend/utils"
)

type AdminController struct {
	directory *repositories.PartnerDirectory
	ledger    *repositories.ClientLedger
	payments  *services.PaymentService
	referrals *services.ReferralService
}

func NewAdminController(directory *repositories.PartnerDirectory, ledger *repositories.ClientLedger, payments *services.PaymentService, referrals *services.ReferralService) *AdminController {
	return &AdminController{
		directory: directory,
		ledger:    ledger,
		payments:  payments,
		referrals: referrals,
	}
}

// AddPayment records a client payment on behalf of an administrator and runs
// the downstream commission, level and referral pipeline.
func (a *AdminController) AddPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Admin ID not found in context",
		})
	}

	var req models.AddPaymentRequest
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

	result, err := a.payments.RecordPayment(ctx, &req, adminID)
	if err != nil {
		log.Printf("Payment recording failed for client %s: %v", req.ClientID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record payment",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payment recorded successfully",
		Data:    result,
	})
}

// MarkReferralCommissionsPaid settles a partner's outstanding referral
// commissions and emails a payout notice.
func (a *AdminController) MarkReferralCommissionsPaid(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	partnerID := c.Param("id")
	if partnerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	commissions, err := a.ledger.GetReferralCommissions(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch referral commissions",
		})
	}

	var unpaidTotal float64
	var unpaidCount int
	for i := range commissions {
		if commissions[i].PaidAt == nil {
			unpaidTotal += commissions[i].CommissionAmount
			unpaidCount++
		}
	}
	if unpaidCount == 0 {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No unpaid referral commissions",
			Data: map[string]interface{}{
				"settledCount": 0,
				"settledTotal": 0.0,
			},
		})
	}

	if err := a.referrals.MarkPaid(ctx, partnerID); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark referral commissions as paid",
		})
	}

	// Payout notice is best effort, settlement already happened
	if partner, err := a.directory.GetPartner(ctx, partnerID); err == nil {
		if err := sendPayoutEmail(partner.Email, partner.FullName, unpaidTotal, unpaidCount); err != nil {
			log.Printf("Failed to send payout email to %s: %v", partner.Email, err)
		}
	} else {
		log.Printf("Failed to load partner %s for payout email: %v", partnerID, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral commissions marked as paid",
		Data: map[string]interface{}{
			"settledCount": unpaidCount,
			"settledTotal": unpaidTotal,
		},
	})
}

// SetReferralAccess enables or disables referral earnings for a partner.
// Disabling stops new referral commissions but keeps history intact.
func (a *AdminController) SetReferralAccess(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	partnerID := c.Param("id")
	if partnerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.Bind(&req); err != nil || req.Enabled == nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Request body must include 'enabled'",
		})
	}

	if err := a.directory.SetReferralAccess(ctx, partnerID, *req.Enabled); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update referral access",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral access updated successfully",
		Data: map[string]interface{}{
			"partnerId":             partnerID,
			"referralAccessEnabled": *req.Enabled,
		},
	})
}

type commissionReportRow struct {
	ClientID        string  `json:"client_id"`
	ClientName      string  `json:"client_name"`
	PaymentID       string  `json:"payment_id"`
	Amount          float64 `json:"amount"`
	PartnershipYear int     `json:"partnership_year"`
	TenureRate      float64 `json:"tenure_rate"`
	TenureAmount    float64 `json:"tenure_amount"`
	RecordedAmount  float64 `json:"recorded_amount"`
}

// GetPartnerCommissionReport builds the tenure-decay comparison report: what
// each paid payment would earn under the 50/30/10 schedule next to the flat
// tier amount actually recorded.
func (a *AdminController) GetPartnerCommissionReport(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	partnerID := c.Param("id")
	if partnerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Partner ID is required",
		})
	}

	partner, err := a.directory.GetPartner(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Partner not found",
		})
	}

	clients, err := a.ledger.GetPartnerClients(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch clients, please retry",
		})
	}

	var rows []commissionReportRow
	var tenureTotal, recordedTotal float64
	for i := range clients {
		for j := range clients[i].Payments {
			p := &clients[i].Payments[j]
			if p.Status != models.PaymentStatusPaid {
				continue
			}
			rate := utils.TenureRatePercent(p.PartnershipYear)
			tenureAmount := utils.ComputeCommission(p.Amount, rate)
			rows = append(rows, commissionReportRow{
				ClientID:        clients[i].ID,
				ClientName:      clients[i].Name,
				PaymentID:       p.ID,
				Amount:          p.Amount,
				PartnershipYear: p.PartnershipYear,
				TenureRate:      rate,
				TenureAmount:    tenureAmount,
				RecordedAmount:  p.CommissionAmount,
			})
			tenureTotal += tenureAmount
			recordedTotal += p.CommissionAmount
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission report generated successfully",
		Data: map[string]interface{}{
			"partnerId":     partnerID,
			"partnerLevel":  partner.PartnerLevel,
			"currentRate":   partner.Commission,
			"rows":          rows,
			"tenureTotal":   tenureTotal,
			"recordedTotal": recordedTotal,
		},
	})
}

func sendPayoutEmail(to, name string, amount float64, count int) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = username
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your referral commissions have been paid")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Hi %s,</p><p>%d referral commission(s) totalling <b>%.2f</b> have been marked as paid. The payout is on its way.</p><p>PartnerHub Team</p>",
		name, count, amount))

	d := gomail.NewDialer(host, port, username, password)
	return d.DialAndSend(m)
}
