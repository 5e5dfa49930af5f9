package models

import (
	"time"
)

// Client is an end customer brought in by exactly one partner. PartnerID is
// immutable after creation.
type Client struct {
	ID           string    `json:"id,omitempty"`
	PartnerID    string    `json:"partner_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	Payments     []Payment `json:"payments,omitempty"`
}

// HasPaidPayment reports whether the client qualifies toward the partner's
// level: at least one payment with status "paid".
func (c *Client) HasPaidPayment() bool {
	for _, p := range c.Payments {
		if p.Status == PaymentStatusPaid {
			return true
		}
	}
	return false
}

// AddClientRequest is the portal payload for registering a new client.
type AddClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}
