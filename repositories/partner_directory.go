package repositories

import (
	"context"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/rpc"
	"github.com/partnerhub/partnerhub_backend/utils"
)

// PartnerDirectory is the partner-facing façade over the backend's remote
// operations. It owns the snake_case field mapping; everything above it works
// with the canonical models only.
type PartnerDirectory struct {
	invoker rpc.Caller
}

func NewPartnerDirectory(invoker rpc.Caller) *PartnerDirectory {
	return &PartnerDirectory{invoker: invoker}
}

// GetPartner fetches one partner by id.
func (r *PartnerDirectory) GetPartner(ctx context.Context, partnerID string) (*models.Partner, error) {
	var partner models.Partner
	err := r.invoker.Invoke(ctx, "get_partner", rpc.Params{"partner_id": partnerID}, &partner)
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// GetPartnerByEmail fetches one partner by email, including the password
// hash for credential checks.
func (r *PartnerDirectory) GetPartnerByEmail(ctx context.Context, email string) (*models.Partner, error) {
	var partner models.Partner
	err := r.invoker.Invoke(ctx, "get_partner_by_email", rpc.Params{"email": email}, &partner)
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// CheckPartnerExists reports whether a partner is already registered under
// the email.
func (r *PartnerDirectory) CheckPartnerExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.invoker.Invoke(ctx, "check_partner_exists", rpc.Params{"email": email}, &exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreatePartner registers a new partner. referrerCode, when non-empty, is the
// referring partner's code; the backend resolves it to referrer_id at
// creation, after which the link is immutable.
func (r *PartnerDirectory) CreatePartner(ctx context.Context, partner *models.Partner, referrerCode string) (*models.Partner, error) {
	params := rpc.Params{
		"email":         partner.Email,
		"full_name":     partner.FullName,
		"phone":         partner.Phone,
		"password_hash": partner.PasswordHash,
		"partner_level": partner.PartnerLevel,
		"commission":    partner.Commission,
	}
	if referrerCode != "" {
		params["referrer_code"] = referrerCode
	}

	var created models.Partner
	if err := r.invoker.Invoke(ctx, "create_partner", params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePartnerLevel persists a recomputed level together with its implied
// commission rate. Always writing the pair in one call keeps them from
// drifting apart.
func (r *PartnerDirectory) UpdatePartnerLevel(ctx context.Context, partnerID, level string, commission float64) (*models.Partner, error) {
	var updated models.Partner
	err := r.invoker.Invoke(ctx, "update_partner", rpc.Params{
		"partner_id":    partnerID,
		"partner_level": level,
		"commission":    commission,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetReferrals lists the partners referred by partnerID.
func (r *PartnerDirectory) GetReferrals(ctx context.Context, partnerID string) ([]models.Partner, error) {
	var referrals []models.Partner
	err := r.invoker.Invoke(ctx, "get_partner_referrals", rpc.Params{"partner_id": partnerID}, &referrals)
	if err != nil {
		return nil, err
	}
	for i := range referrals {
		referrals[i].Sanitize()
	}
	return referrals, nil
}

// EnsureReferralCode issues a referral code for the partner. Issuance is
// idempotent: the backend keeps an already-assigned code and returns it, so
// the proposed code is only used on first assignment.
func (r *PartnerDirectory) EnsureReferralCode(ctx context.Context, partnerID string) (string, error) {
	proposed, err := utils.GenerateReferralCode()
	if err != nil {
		return "", err
	}

	var code string
	err = r.invoker.Invoke(ctx, "update_partner_referral_code", rpc.Params{
		"partner_id":    partnerID,
		"referral_code": proposed,
	}, &code)
	if err != nil {
		return "", err
	}
	return code, nil
}

// SetReferralAccess toggles whether the partner can earn referral
// commissions. Admin-only.
func (r *PartnerDirectory) SetReferralAccess(ctx context.Context, partnerID string, enabled bool) error {
	return r.invoker.Invoke(ctx, "update_partner_referral_access", rpc.Params{
		"partner_id": partnerID,
		"enabled":    enabled,
	}, nil)
}
