package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/utils"
)

// paymentDirectory is the slice of PartnerDirectory the pipeline needs.
type paymentDirectory interface {
	GetPartner(ctx context.Context, partnerID string) (*models.Partner, error)
	UpdatePartnerLevel(ctx context.Context, partnerID, level string, commission float64) (*models.Partner, error)
}

// paymentLedger is the slice of ClientLedger the pipeline needs.
type paymentLedger interface {
	GetClient(ctx context.Context, clientID string) (*models.Client, error)
	AddPaymentAsAdmin(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	QualifyingClientCount(ctx context.Context, partnerID string) (int, error)
}

// Notifier pushes portal events. Nil-safe via the service's guard.
type Notifier interface {
	NotifyLevelChange(partnerID string, level utils.LevelInfo)
	NotifyReferralCommission(referrerID string, rc *models.ReferralCommission)
}

// RecordPaymentResult is what a payment recording produced. Warnings carry
// the recoverable follow-up failures (level recompute, referral
// attribution); the payment itself is already durable when they occur and a
// manual refresh reruns the same idempotent computations.
type RecordPaymentResult struct {
	Payment            *models.Payment            `json:"payment"`
	Level              *utils.LevelInfo           `json:"level,omitempty"`
	QualifyingClients  int                        `json:"qualifyingClients"`
	ReferralCommission *models.ReferralCommission `json:"referralCommission,omitempty"`
	Warnings           []string                   `json:"warnings,omitempty"`
}

// PaymentService runs the payment recording pipeline: persist the payment
// with its commission, re-derive the partner's level, and attribute the
// referral commission.
type PaymentService struct {
	directory paymentDirectory
	ledger    paymentLedger
	referrals *ReferralService
	notifier  Notifier
}

func NewPaymentService(directory paymentDirectory, ledger paymentLedger, referrals *ReferralService, notifier Notifier) *PaymentService {
	return &PaymentService{
		directory: directory,
		ledger:    ledger,
		referrals: referrals,
		notifier:  notifier,
	}
}

// RecordPayment records one client payment on behalf of an admin.
//
// The payment's own commission uses the partner's rate in effect before the
// level recompute: a payment that tips the partner into the next tier is
// still paid out at the old rate, and historical commissions are never
// touched when the tier later changes.
func (s *PaymentService) RecordPayment(ctx context.Context, req *models.AddPaymentRequest, adminID string) (*RecordPaymentResult, error) {
	client, err := s.ledger.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("client lookup failed: %w", err)
	}

	partner, err := s.directory.GetPartner(ctx, client.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("partner lookup failed: %w", err)
	}

	date := time.Now().UTC()
	if req.Date != "" {
		if parsed, perr := time.Parse("2006-01-02", req.Date); perr == nil {
			date = parsed
		}
	}

	payment := &models.Payment{
		ClientID: req.ClientID,
		Amount:   req.Amount,
		Status:   req.Status,
		Date:     date,
		AdminID:  adminID,
	}
	if payment.Status == models.PaymentStatusPaid {
		payment.CommissionAmount = utils.ComputeCommission(payment.Amount, partner.Commission)
	}

	created, err := s.ledger.AddPaymentAsAdmin(ctx, payment)
	if err != nil {
		return nil, err
	}

	result := &RecordPaymentResult{Payment: created}

	if created.Status != models.PaymentStatusPaid {
		return result, nil
	}

	// Everything past this point is recoverable: the payment is recorded and
	// a partner-data refresh reruns the same idempotent recomputations.
	s.recomputeLevel(ctx, partner, result)

	rc, err := s.referrals.Attribute(ctx, created, partner)
	if err != nil {
		log.Printf("Referral attribution failed for payment %s: %v", created.ID, err)
		result.Warnings = append(result.Warnings, "referral commission attribution failed, retry via refresh")
	} else if rc != nil {
		result.ReferralCommission = rc
		if s.notifier != nil {
			s.notifier.NotifyReferralCommission(rc.ReferrerID, rc)
		}
	}

	return result, nil
}

// RefreshPartnerLevel re-derives the partner's qualifying-client count and
// persists the implied tier. Safe to call at any time; used by the portal's
// manual refresh and after every payment-status change.
func (s *PaymentService) RefreshPartnerLevel(ctx context.Context, partnerID string) (*utils.LevelInfo, int, error) {
	partner, err := s.directory.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.ledger.QualifyingClientCount(ctx, partner.ID)
	if err != nil {
		return nil, 0, err
	}

	info := utils.ComputeLevel(count)
	if info.Level != partner.PartnerLevel || info.CommissionRate != partner.Commission {
		if _, err := s.directory.UpdatePartnerLevel(ctx, partner.ID, info.Level, info.CommissionRate); err != nil {
			return nil, count, err
		}
		if s.notifier != nil && info.Level != partner.PartnerLevel {
			s.notifier.NotifyLevelChange(partner.ID, info)
		}
	}

	return &info, count, nil
}

func (s *PaymentService) recomputeLevel(ctx context.Context, partner *models.Partner, result *RecordPaymentResult) {
	count, err := s.ledger.QualifyingClientCount(ctx, partner.ID)
	if err != nil {
		log.Printf("Level recompute failed for partner %s: %v", partner.ID, err)
		result.Warnings = append(result.Warnings, "level recompute failed, retry via refresh")
		return
	}

	info := utils.ComputeLevel(count)
	result.Level = &info
	result.QualifyingClients = count

	if info.Level == partner.PartnerLevel && info.CommissionRate == partner.Commission {
		return
	}

	if _, err := s.directory.UpdatePartnerLevel(ctx, partner.ID, info.Level, info.CommissionRate); err != nil {
		log.Printf("Level update failed for partner %s: %v", partner.ID, err)
		result.Warnings = append(result.Warnings, "level update failed, retry via refresh")
		return
	}

	if s.notifier != nil && info.Level != partner.PartnerLevel {
		s.notifier.NotifyLevelChange(partner.ID, info)
	}
}
