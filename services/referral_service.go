package services

import (
	"context"
	"log"
	"time"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/utils"
)

// referralDirectory is the slice of PartnerDirectory the engine needs.
type referralDirectory interface {
	GetPartner(ctx context.Context, partnerID string) (*models.Partner, error)
	EnsureReferralCode(ctx context.Context, partnerID string) (string, error)
}

// referralLedger is the slice of ClientLedger the engine needs.
type referralLedger interface {
	GetReferralCommissions(ctx context.Context, referrerID string) ([]models.ReferralCommission, error)
	AddReferralCommission(ctx context.Context, rc *models.ReferralCommission) error
	MarkReferralCommissionsPaid(ctx context.Context, referrerID string) error
}

// ReferralService computes and records secondary commissions owed to
// referring partners. Attribution is a side effect of payment recording and
// must never block it: domain misses (no referrer, access disabled, referrer
// gone) are silent no-ops.
type ReferralService struct {
	directory referralDirectory
	ledger    referralLedger
}

func NewReferralService(directory referralDirectory, ledger referralLedger) *ReferralService {
	return &ReferralService{directory: directory, ledger: ledger}
}

// Attribute records the referral commission for a payment that entered
// "paid" status, where referee is the partner owning the payment's client.
//
// Returns (nil, nil) when no commission is due. Idempotent per
// (payment, referrer): an existing row is returned unchanged, and the insert
// itself dedupes on the same key, so a retried invocation cannot create a
// second row.
func (s *ReferralService) Attribute(ctx context.Context, payment *models.Payment, referee *models.Partner) (*models.ReferralCommission, error) {
	if payment.Status != models.PaymentStatusPaid {
		return nil, nil
	}
	if referee.ReferrerID == "" {
		return nil, nil
	}

	referrer, err := s.directory.GetPartner(ctx, referee.ReferrerID)
	if err != nil {
		// Missing referrer is a domain miss, not a failure of the payment.
		log.Printf("Referral attribution skipped for payment %s: referrer %s not resolvable: %v",
			payment.ID, referee.ReferrerID, err)
		return nil, nil
	}
	if !referrer.ReferralAccessEnabled {
		return nil, nil
	}

	existing, err := s.ledger.GetReferralCommissions(ctx, referrer.ID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].PaymentID == payment.ID {
			return &existing[i], nil
		}
	}

	rc := &models.ReferralCommission{
		ReferrerID:       referrer.ID,
		RefereeID:        referee.ID,
		ClientID:         payment.ClientID,
		PaymentID:        payment.ID,
		CommissionRate:   utils.ReferralRatePercent,
		CommissionAmount: utils.ComputeReferralCommission(payment.CommissionAmount),
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.ledger.AddReferralCommission(ctx, rc); err != nil {
		return nil, err
	}

	return rc, nil
}

// MarkPaid stamps all of the referrer's unpaid referral commissions as paid
// in one batch.
func (s *ReferralService) MarkPaid(ctx context.Context, referrerID string) error {
	return s.ledger.MarkReferralCommissionsPaid(ctx, referrerID)
}

// EnsureReferralCode returns the partner's referral code, issuing one if
// none exists yet. The testPassed gate is advisory (the portal hides the
// button until the test is passed); issuing anyway is allowed and only
// logged.
func (s *ReferralService) EnsureReferralCode(ctx context.Context, partner *models.Partner) (string, error) {
	if partner.ReferralCode != "" {
		return partner.ReferralCode, nil
	}

	if !partner.TestPassed {
		log.Printf("Issuing referral code for partner %s before test completion", partner.ID)
	}

	code, err := s.directory.EnsureReferralCode(ctx, partner.ID)
	if err != nil {
		return "", err
	}
	partner.ReferralCode = code
	return code, nil
}
