package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/partnerhub_backend/models"
)

type fakeReferralDirectory struct {
	partners    map[string]*models.Partner
	issuedCodes map[string]string
	codeCalls   int
}

func (f *fakeReferralDirectory) GetPartner(ctx context.Context, partnerID string) (*models.Partner, error) {
	p, ok := f.partners[partnerID]
	if !ok {
		return nil, errors.New("partner not found")
	}
	return p, nil
}

func (f *fakeReferralDirectory) EnsureReferralCode(ctx context.Context, partnerID string) (string, error) {
	f.codeCalls++
	if f.issuedCodes == nil {
		f.issuedCodes = make(map[string]string)
	}
	if code, ok := f.issuedCodes[partnerID]; ok {
		return code, nil
	}
	code := "PTR-ABC123"
	f.issuedCodes[partnerID] = code
	return code, nil
}

type fakeReferralLedger struct {
	commissions []models.ReferralCommission
	addErr      error
	markedFor   []string
}

func (f *fakeReferralLedger) GetReferralCommissions(ctx context.Context, referrerID string) ([]models.ReferralCommission, error) {
	var out []models.ReferralCommission
	for _, rc := range f.commissions {
		if rc.ReferrerID == referrerID {
			out = append(out, rc)
		}
	}
	return out, nil
}

func (f *fakeReferralLedger) AddReferralCommission(ctx context.Context, rc *models.ReferralCommission) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.commissions = append(f.commissions, *rc)
	return nil
}

func (f *fakeReferralLedger) MarkReferralCommissionsPaid(ctx context.Context, referrerID string) error {
	f.markedFor = append(f.markedFor, referrerID)
	now := time.Now().UTC()
	for i := range f.commissions {
		if f.commissions[i].ReferrerID == referrerID && f.commissions[i].PaidAt == nil {
			f.commissions[i].PaidAt = &now
		}
	}
	return nil
}

func paidPayment() *models.Payment {
	return &models.Payment{
		ID:               "pay-1",
		ClientID:         "client-1",
		Amount:           10000,
		Status:           models.PaymentStatusPaid,
		CommissionAmount: 2000,
	}
}

func refereeWithReferrer() *models.Partner {
	return &models.Partner{ID: "referee-1", ReferrerID: "referrer-1"}
}

func TestAttributeComputesThreePercentOfCommission(t *testing.T) {
	dir := &fakeReferralDirectory{partners: map[string]*models.Partner{
		"referrer-1": {ID: "referrer-1", ReferralAccessEnabled: true},
	}}
	ledger := &fakeReferralLedger{}
	svc := NewReferralService(dir, ledger)

	rc, err := svc.Attribute(context.Background(), paidPayment(), refereeWithReferrer())
	require.NoError(t, err)
	require.NotNil(t, rc)

	assert.Equal(t, "referrer-1", rc.ReferrerID)
	assert.Equal(t, "referee-1", rc.RefereeID)
	assert.Equal(t, "pay-1", rc.PaymentID)
	assert.Equal(t, 3.0, rc.CommissionRate)
	assert.Equal(t, 60.0, rc.CommissionAmount)
	assert.Nil(t, rc.PaidAt)
	require.Len(t, ledger.commissions, 1)
}

func TestAttributeIsIdempotentPerPayment(t *testing.T) {
	dir := &fakeReferralDirectory{partners: map[string]*models.Partner{
		"referrer-1": {ID: "referrer-1", ReferralAccessEnabled: true},
	}}
	ledger := &fakeReferralLedger{}
	svc := NewReferralService(dir, ledger)

	first, err := svc.Attribute(context.Background(), paidPayment(), refereeWithReferrer())
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.Attribute(context.Background(), paidPayment(), refereeWithReferrer())
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.CommissionAmount, second.CommissionAmount)
	assert.Len(t, ledger.commissions, 1, "retried attribution must not create a second row")
}

func TestAttributeSkipsNonPaidPayments(t *testing.T) {
	svc := NewReferralService(&fakeReferralDirectory{}, &fakeReferralLedger{})

	payment := paidPayment()
	payment.Status = models.PaymentStatusPending
	rc, err := svc.Attribute(context.Background(), payment, refereeWithReferrer())
	require.NoError(t, err)
	assert.Nil(t, rc)
}

func TestAttributeSkipsPartnersWithoutReferrer(t *testing.T) {
	ledger := &fakeReferralLedger{}
	svc := NewReferralService(&fakeReferralDirectory{}, ledger)

	rc, err := svc.Attribute(context.Background(), paidPayment(), &models.Partner{ID: "referee-1"})
	require.NoError(t, err)
	assert.Nil(t, rc)
	assert.Empty(t, ledger.commissions)
}

func TestAttributeFailsOpenWhenReferrerMissing(t *testing.T) {
	ledger := &fakeReferralLedger{}
	svc := NewReferralService(&fakeReferralDirectory{partners: map[string]*models.Partner{}}, ledger)

	rc, err := svc.Attribute(context.Background(), paidPayment(), refereeWithReferrer())
	require.NoError(t, err, "an unresolvable referrer must not fail the payment")
	assert.Nil(t, rc)
	assert.Empty(t, ledger.commissions)
}

func TestAttributeSkipsWhenAccessDisabled(t *testing.T) {
	dir := &fakeReferralDirectory{partners: map[string]*models.Partner{
		"referrer-1": {ID: "referrer-1", ReferralAccessEnabled: false},
	}}
	ledger := &fakeReferralLedger{}
	svc := NewReferralService(dir, ledger)

	rc, err := svc.Attribute(context.Background(), paidPayment(), refereeWithReferrer())
	require.NoError(t, err)
	assert.Nil(t, rc)
	assert.Empty(t, ledger.commissions)
}

func TestMarkPaidStampsUnpaidCommissions(t *testing.T) {
	ledger := &fakeReferralLedger{commissions: []models.ReferralCommission{
		{ID: "rc-1", ReferrerID: "referrer-1", CommissionAmount: 60},
		{ID: "rc-2", ReferrerID: "referrer-1", CommissionAmount: 30},
		{ID: "rc-3", ReferrerID: "other", CommissionAmount: 10},
	}}
	svc := NewReferralService(&fakeReferralDirectory{}, ledger)

	require.NoError(t, svc.MarkPaid(context.Background(), "referrer-1"))

	assert.NotNil(t, ledger.commissions[0].PaidAt)
	assert.NotNil(t, ledger.commissions[1].PaidAt)
	assert.Nil(t, ledger.commissions[2].PaidAt)
}

func TestEnsureReferralCodeReturnsExistingWithoutBackendCall(t *testing.T) {
	dir := &fakeReferralDirectory{}
	svc := NewReferralService(dir, &fakeReferralLedger{})

	partner := &models.Partner{ID: "p1", ReferralCode: "PTR-EXIST1", TestPassed: true}
	code, err := svc.EnsureReferralCode(context.Background(), partner)
	require.NoError(t, err)
	assert.Equal(t, "PTR-EXIST1", code)
	assert.Zero(t, dir.codeCalls)
}

func TestEnsureReferralCodeIssuesOnce(t *testing.T) {
	dir := &fakeReferralDirectory{}
	svc := NewReferralService(dir, &fakeReferralLedger{})

	partner := &models.Partner{ID: "p1", TestPassed: true}
	code, err := svc.EnsureReferralCode(context.Background(), partner)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, code, partner.ReferralCode)

	again, err := svc.EnsureReferralCode(context.Background(), partner)
	require.NoError(t, err)
	assert.Equal(t, code, again)
	assert.Equal(t, 1, dir.codeCalls)
}
