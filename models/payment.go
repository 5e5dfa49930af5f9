package models

import (
	"time"
)

// Payment statuses. Only "paid" counts toward leveling and commission.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
)

// Payment belongs to exactly one client. CommissionAmount is written once at
// creation from the partner's rate at that moment and never recomputed.
type Payment struct {
	ID                 string     `json:"id,omitempty"`
	ClientID           string     `json:"client_id"`
	Amount             float64    `json:"amount"`
	Status             string     `json:"status"`
	Date               time.Time  `json:"date"`
	CommissionAmount   float64    `json:"commission_amount"`
	CommissionPaid     bool       `json:"commission_paid"`
	PaymentDestination string     `json:"payment_destination,omitempty"`
	TariffStartDate    *time.Time `json:"tariff_start_date,omitempty"`
	TariffEndDate      *time.Time `json:"tariff_end_date,omitempty"`
	// PartnershipYear is how many years the client has been active at the
	// payment date (1-based). Informational, used only by the legacy report.
	PartnershipYear int    `json:"partnership_year,omitempty"`
	AdminID         string `json:"admin_id,omitempty"`
}

// AddPaymentRequest is the admin payload for recording a client payment.
type AddPaymentRequest struct {
	ClientID string  `json:"clientId" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Date     string  `json:"date,omitempty"`
	Status   string  `json:"status" validate:"required,oneof=pending paid cancelled"`
}
