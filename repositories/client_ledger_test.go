package repositories

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/rpc"
)

// fakeCaller scripts one response per operation name and records the
// parameter bags it saw.
type fakeCaller struct {
	responses map[string]interface{}
	errs      map[string]error
	calls     []recordedCall
}

type recordedCall struct {
	Name   string
	Params rpc.Params
}

func (f *fakeCaller) Invoke(ctx context.Context, name string, params rpc.Params, result interface{}) error {
	f.calls = append(f.calls, recordedCall{Name: name, Params: params})
	if err, ok := f.errs[name]; ok {
		return err
	}
	if resp, ok := f.responses[name]; ok && result != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, result)
	}
	return nil
}

func (f *fakeCaller) InvokeWithOptions(ctx context.Context, name string, params rpc.Params, result interface{}, opts rpc.CallOptions) error {
	return f.Invoke(ctx, name, params, result)
}

func TestQualifyingClientCountNeedsPaidPayment(t *testing.T) {
	caller := &fakeCaller{responses: map[string]interface{}{
		"get_partner_clients": []models.Client{
			{ID: "c1", Payments: []models.Payment{{Status: models.PaymentStatusPaid}}},
			{ID: "c2", Payments: []models.Payment{{Status: models.PaymentStatusPending}}},
			{ID: "c3", Payments: []models.Payment{
				{Status: models.PaymentStatusCancelled},
				{Status: models.PaymentStatusPaid},
			}},
			{ID: "c4"},
		},
	}}
	ledger := NewClientLedger(caller)

	count, err := ledger.QualifyingClientCount(context.Background(), "partner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddPaymentAsAdminGeneratesStableID(t *testing.T) {
	caller := &fakeCaller{responses: map[string]interface{}{
		"add_payment_as_admin": models.Payment{ID: "ignored"},
	}}
	ledger := NewClientLedger(caller)

	payment := &models.Payment{ClientID: "c1", Amount: 100, Status: models.PaymentStatusPaid}
	_, err := ledger.AddPaymentAsAdmin(context.Background(), payment)
	require.NoError(t, err)
	require.NotEmpty(t, payment.ID)

	// A retry re-sends the same row instead of minting a new id
	first := payment.ID
	_, err = ledger.AddPaymentAsAdmin(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, first, payment.ID)

	require.Len(t, caller.calls, 2)
	assert.Equal(t, first, caller.calls[0].Params["payment_id"])
	assert.Equal(t, first, caller.calls[1].Params["payment_id"])
}

func TestAddReferralCommissionDuplicateIsSuccess(t *testing.T) {
	caller := &fakeCaller{errs: map[string]error{
		"add_referral_commission": &rpc.Error{
			Op:      "add_referral_commission",
			Message: `duplicate key value violates unique constraint "referral_commissions_payment_referrer_key"`,
		},
	}}
	ledger := NewClientLedger(caller)

	err := ledger.AddReferralCommission(context.Background(), &models.ReferralCommission{
		ReferrerID: "r1",
		PaymentID:  "pay-1",
	})
	assert.NoError(t, err, "a duplicate insert means the commission already exists")
}

func TestEnsureReferralCodeKeepsBackendCode(t *testing.T) {
	caller := &fakeCaller{responses: map[string]interface{}{
		"update_partner_referral_code": "PTR-KEPT01",
	}}
	directory := NewPartnerDirectory(caller)

	code, err := directory.EnsureReferralCode(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "PTR-KEPT01", code)

	require.Len(t, caller.calls, 1)
	assert.NotEmpty(t, caller.calls[0].Params["referral_code"], "a proposed code is always sent")
}

func TestUpdatePartnerLevelWritesThePair(t *testing.T) {
	caller := &fakeCaller{responses: map[string]interface{}{
		"update_partner": models.Partner{ID: "p1", PartnerLevel: "Silver", Commission: 25},
	}}
	directory := NewPartnerDirectory(caller)

	updated, err := directory.UpdatePartnerLevel(context.Background(), "p1", "Silver", 25)
	require.NoError(t, err)
	assert.Equal(t, "Silver", updated.PartnerLevel)

	require.Len(t, caller.calls, 1)
	assert.Equal(t, "Silver", caller.calls[0].Params["partner_level"])
	assert.Equal(t, 25.0, caller.calls[0].Params["commission"])
}
