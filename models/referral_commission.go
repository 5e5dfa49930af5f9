package models

import (
	"time"
)

// ReferralCommission is a secondary commission owed to the partner who
// referred another partner, computed off the referee's own commission for a
// single payment. One row exists per (payment, referrer) pair.
type ReferralCommission struct {
	ID               string     `json:"id,omitempty"`
	ReferrerID       string     `json:"referrer_id"`
	RefereeID        string     `json:"referee_id"`
	ClientID         string     `json:"client_id"`
	PaymentID        string     `json:"payment_id"`
	CommissionRate   float64    `json:"commission_rate"`
	CommissionAmount float64    `json:"commission_amount"`
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}
