package models

import (
	"time"
)

// Partner levels, ordered lowest to highest.
const (
	LevelBronze       = "Bronze"
	LevelSilver       = "Silver"
	LevelGold         = "Gold"
	LevelPlatinum     = "Platinum"
	LevelTranscendent = "Transcendent"
)

// Partner represents an affiliate partner account. This is the single
// canonical representation; snake_case mapping happens only in the JSON tags
// at the backend RPC boundary.
type Partner struct {
	ID                    string    `json:"id,omitempty"`
	Email                 string    `json:"email"`
	FullName              string    `json:"full_name"`
	Phone                 string    `json:"phone,omitempty"`
	PasswordHash          string    `json:"password_hash,omitempty"`
	PartnerLevel          string    `json:"partner_level"`
	Commission            float64   `json:"commission"`
	TestPassed            bool      `json:"test_passed"`
	ReferrerID            string    `json:"referrer_id,omitempty"`
	ReferralCode          string    `json:"referral_code,omitempty"`
	ReferralAccessEnabled bool      `json:"referral_access_enabled"`
	IsAdmin               bool      `json:"is_admin,omitempty"`
	CreatedAt             time.Time `json:"created_at,omitempty"`
	UpdatedAt             time.Time `json:"updated_at,omitempty"`
}

// Sanitize strips fields that must never leave the server.
func (p *Partner) Sanitize() {
	p.PasswordHash = ""
}

// Response is the standard API response envelope.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
