package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/repositories"
	"github.com/partnerhub/partnerhub_backend/services"
	"github.com/partnerhub/partnerhub_backend/utils"
)

type PartnerController struct {
	directory *repositories.PartnerDirectory
	ledger    *repositories.ClientLedger
	payments  *services.PaymentService
	session   *utils.PartnerSession
}

func NewPartnerController(directory *repositories.PartnerDirectory, ledger *repositories.ClientLedger, payments *services.PaymentService, session *utils.PartnerSession) *PartnerController {
	return &PartnerController{
		directory: directory,
		ledger:    ledger,
		payments:  payments,
		session:   session,
	}
}

// GetDashboard returns the partner's current tier, progress and qualifying
// count. The level is re-derived on every load, so this doubles as the
// manual "refresh" that self-corrects any lost recompute.
func (pc *PartnerController) GetDashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	level, qualifying, err := pc.payments.RefreshPartnerLevel(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to refresh partner level, please retry",
		})
	}

	partner, err := pc.directory.GetPartner(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load partner data",
		})
	}

	// Keep the cached session snapshot in step with the refreshed level
	if err := pc.session.Save(ctx, partner); err != nil {
		log.Printf("Failed to refresh session for partner %s: %v", partnerID, err)
	}

	partner.Sanitize()
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard data fetched successfully",
		Data: map[string]interface{}{
			"partner":           partner,
			"level":             level,
			"qualifyingClients": qualifying,
		},
	})
}

// GetClients lists the partner's clients with embedded payments.
func (pc *PartnerController) GetClients(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	clients, err := pc.ledger.GetPartnerClients(ctx, partnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch clients, please retry",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Clients fetched successfully",
		Data:    clients,
	})
}

// AddClient registers a new client under the authenticated partner.
func (pc *PartnerController) AddClient(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	var req models.AddClientRequest
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

	client, err := pc.ledger.AddClient(ctx, partnerID, &req)
	if err != nil {
		log.Printf("Client creation failed for partner %s: %v", partnerID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create client",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Client created successfully",
		Data:    client,
	})
}

// GetClientPayments lists one client's payments. The client must belong to
// the authenticated partner.
func (pc *PartnerController) GetClientPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	partnerID, err := utils.ExtractPartnerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Partner ID not found in context",
		})
	}

	clientID := c.Param("id")
	if clientID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Client ID is required",
		})
	}

	client, err := pc.ledger.GetClient(ctx, clientID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Client not found",
		})
	}
	if client.PartnerID != partnerID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Client belongs to another partner",
		})
	}

	payments, err := pc.ledger.GetClientPayments(ctx, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payments, please retry",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments fetched successfully",
		Data:    payments,
	})
}
