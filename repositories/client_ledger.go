package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/rpc"
)

// ClientLedger is the client/payment façade over the backend's remote
// operations, including the referral-commission rows derived from payments.
type ClientLedger struct {
	invoker rpc.Caller
}

func NewClientLedger(invoker rpc.Caller) *ClientLedger {
	return &ClientLedger{invoker: invoker}
}

// GetPartnerClients lists a partner's clients with their payments embedded.
func (r *ClientLedger) GetPartnerClients(ctx context.Context, partnerID string) ([]models.Client, error) {
	var clients []models.Client
	err := r.invoker.Invoke(ctx, "get_partner_clients", rpc.Params{"partner_id": partnerID}, &clients)
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// GetClient fetches one client row.
func (r *ClientLedger) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	err := r.invoker.Invoke(ctx, "get_client", rpc.Params{"client_id": clientID}, &client)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClientPayments lists a client's payments including commission amounts
// and partnership year.
func (r *ClientLedger) GetClientPayments(ctx context.Context, clientID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.invoker.Invoke(ctx, "get_client_payments_with_commission", rpc.Params{"client_id": clientID}, &payments)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// AddClient registers a new client under the partner.
func (r *ClientLedger) AddClient(ctx context.Context, partnerID string, req *models.AddClientRequest) (*models.Client, error) {
	var client models.Client
	err := r.invoker.Invoke(ctx, "add_client", rpc.Params{
		"partner_id":    partnerID,
		"name":          req.Name,
		"email":         req.Email,
		"phone":         req.Phone,
		"registered_at": time.Now().UTC(),
	}, &client)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// AddPaymentAsAdmin records a client payment. The payment id is generated
// here so a retried invocation re-sends the same row instead of creating a
// second one.
func (r *ClientLedger) AddPaymentAsAdmin(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	var created models.Payment
	err := r.invoker.Invoke(ctx, "add_payment_as_admin", rpc.Params{
		"payment_id":        payment.ID,
		"client_id":         payment.ClientID,
		"amount":            payment.Amount,
		"date":              payment.Date,
		"status":            payment.Status,
		"commission_amount": payment.CommissionAmount,
		"admin_id":          payment.AdminID,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// QualifyingClientCount re-derives from scratch how many of the partner's
// clients have at least one paid payment. Always a full recount, never an
// increment, so a lost race is corrected by the next call.
func (r *ClientLedger) QualifyingClientCount(ctx context.Context, partnerID string) (int, error) {
	clients, err := r.GetPartnerClients(ctx, partnerID)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range clients {
		if clients[i].HasPaidPayment() {
			count++
		}
	}
	return count, nil
}

// GetReferralCommissions lists the referral commissions earned by a
// referring partner.
func (r *ClientLedger) GetReferralCommissions(ctx context.Context, referrerID string) ([]models.ReferralCommission, error) {
	var commissions []models.ReferralCommission
	err := r.invoker.Invoke(ctx, "get_partner_referral_commissions", rpc.Params{"partner_id": referrerID}, &commissions)
	if err != nil {
		return nil, err
	}
	return commissions, nil
}

// AddReferralCommission inserts one referral commission row. The backend
// enforces uniqueness on (payment_id, referrer_id); a duplicate insert is
// reported as success so retries and double-triggers stay idempotent.
func (r *ClientLedger) AddReferralCommission(ctx context.Context, rc *models.ReferralCommission) error {
	err := r.invoker.Invoke(ctx, "add_referral_commission", rpc.Params{
		"referrer_id":       rc.ReferrerID,
		"referee_id":        rc.RefereeID,
		"client_id":         rc.ClientID,
		"payment_id":        rc.PaymentID,
		"commission_rate":   rc.CommissionRate,
		"commission_amount": rc.CommissionAmount,
	}, nil)
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// MarkReferralCommissionsPaid stamps paid_at on all of the referrer's
// currently-unpaid rows in one batch.
func (r *ClientLedger) MarkReferralCommissionsPaid(ctx context.Context, referrerID string) error {
	return r.invoker.Invoke(ctx, "mark_referral_commissions_paid", rpc.Params{"partner_id": referrerID}, nil)
}

func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists") || strings.Contains(msg, "unique constraint")
}
