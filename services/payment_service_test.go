package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/partnerhub_backend/models"
	"github.com/partnerhub/partnerhub_backend/utils"
)

type fakeDirectory struct {
	partners     map[string]*models.Partner
	levelUpdates []struct {
		PartnerID  string
		Level      string
		Commission float64
	}
}

func (f *fakeDirectory) GetPartner(ctx context.Context, partnerID string) (*models.Partner, error) {
	p, ok := f.partners[partnerID]
	if !ok {
		return nil, errors.New("partner not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDirectory) UpdatePartnerLevel(ctx context.Context, partnerID, level string, commission float64) (*models.Partner, error) {
	f.levelUpdates = append(f.levelUpdates, struct {
		PartnerID  string
		Level      string
		Commission float64
	}{partnerID, level, commission})
	p := f.partners[partnerID]
	p.PartnerLevel = level
	p.Commission = commission
	return p, nil
}

func (f *fakeDirectory) EnsureReferralCode(ctx context.Context, partnerID string) (string, error) {
	return "PTR-TEST01", nil
}

type fakeLedger struct {
	clients         map[string]*models.Client
	payments        []models.Payment
	qualifyingCount int
	commissions     []models.ReferralCommission
}

func (f *fakeLedger) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	c, ok := f.clients[clientID]
	if !ok {
		return nil, errors.New("client not found")
	}
	return c, nil
}

func (f *fakeLedger) AddPaymentAsAdmin(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == "" {
		payment.ID = "pay-generated"
	}
	f.payments = append(f.payments, *payment)
	return payment, nil
}

func (f *fakeLedger) QualifyingClientCount(ctx context.Context, partnerID string) (int, error) {
	return f.qualifyingCount, nil
}

func (f *fakeLedger) GetReferralCommissions(ctx context.Context, referrerID string) ([]models.ReferralCommission, error) {
	var out []models.ReferralCommission
	for _, rc := range f.commissions {
		if rc.ReferrerID == referrerID {
			out = append(out, rc)
		}
	}
	return out, nil
}

func (f *fakeLedger) AddReferralCommission(ctx context.Context, rc *models.ReferralCommission) error {
	f.commissions = append(f.commissions, *rc)
	return nil
}

func (f *fakeLedger) MarkReferralCommissionsPaid(ctx context.Context, referrerID string) error {
	return nil
}

type recordingNotifier struct {
	levelChanges []string
	referralHits []string
}

func (n *recordingNotifier) NotifyLevelChange(partnerID string, level utils.LevelInfo) {
	n.levelChanges = append(n.levelChanges, partnerID)
}

func (n *recordingNotifier) NotifyReferralCommission(referrerID string, rc *models.ReferralCommission) {
	n.referralHits = append(n.referralHits, referrerID)
}

func newPaymentFixture(qualifyingAfter int) (*PaymentService, *fakeDirectory, *fakeLedger, *recordingNotifier) {
	dir := &fakeDirectory{partners: map[string]*models.Partner{
		"partner-1": {
			ID:                    "partner-1",
			PartnerLevel:          "Bronze",
			Commission:            20,
			ReferrerID:            "referrer-1",
			ReferralAccessEnabled: true,
		},
		"referrer-1": {ID: "referrer-1", ReferralAccessEnabled: true},
	}}
	ledger := &fakeLedger{
		clients: map[string]*models.Client{
			"client-6": {ID: "client-6", PartnerID: "partner-1"},
		},
		qualifyingCount: qualifyingAfter,
	}
	notifier := &recordingNotifier{}
	referrals := NewReferralService(dir, ledger)
	svc := NewPaymentService(dir, ledger, referrals, notifier)
	return svc, dir, ledger, notifier
}

func TestRecordPaymentUsesPreRecomputeRate(t *testing.T) {
	// Sixth qualifying client tips Bronze into Silver; the tipping payment
	// still pays out at the Bronze rate.
	svc, dir, ledger, notifier := newPaymentFixture(6)

	req := &models.AddPaymentRequest{
		ClientID: "client-6",
		Amount:   10000,
		Status:   models.PaymentStatusPaid,
	}
	result, err := svc.RecordPayment(context.Background(), req, "admin-1")
	require.NoError(t, err)
	require.NotNil(t, result.Payment)

	assert.Equal(t, 2000.0, result.Payment.CommissionAmount)
	assert.Equal(t, "admin-1", result.Payment.AdminID)
	assert.Empty(t, result.Warnings)

	require.NotNil(t, result.Level)
	assert.Equal(t, "Silver", result.Level.Level)
	assert.Equal(t, 25.0, result.Level.CommissionRate)
	assert.Equal(t, 6, result.QualifyingClients)

	require.Len(t, dir.levelUpdates, 1)
	assert.Equal(t, "Silver", dir.levelUpdates[0].Level)
	assert.Equal(t, 25.0, dir.levelUpdates[0].Commission)
	assert.Equal(t, []string{"partner-1"}, notifier.levelChanges)

	// Referral commission rides on the payment's own commission
	require.NotNil(t, result.ReferralCommission)
	assert.Equal(t, 60.0, result.ReferralCommission.CommissionAmount)
	assert.Equal(t, []string{"referrer-1"}, notifier.referralHits)
	require.Len(t, ledger.commissions, 1)
}

func TestRecordPaymentPendingSkipsPipeline(t *testing.T) {
	svc, dir, ledger, notifier := newPaymentFixture(5)

	req := &models.AddPaymentRequest{
		ClientID: "client-6",
		Amount:   10000,
		Status:   models.PaymentStatusPending,
	}
	result, err := svc.RecordPayment(context.Background(), req, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Payment.CommissionAmount)
	assert.Nil(t, result.Level)
	assert.Nil(t, result.ReferralCommission)
	assert.Empty(t, dir.levelUpdates)
	assert.Empty(t, ledger.commissions)
	assert.Empty(t, notifier.levelChanges)
}

func TestRecordPaymentWithinTierDoesNotUpdateLevel(t *testing.T) {
	svc, dir, _, notifier := newPaymentFixture(3)

	req := &models.AddPaymentRequest{
		ClientID: "client-6",
		Amount:   500,
		Status:   models.PaymentStatusPaid,
	}
	result, err := svc.RecordPayment(context.Background(), req, "admin-1")
	require.NoError(t, err)

	require.NotNil(t, result.Level)
	assert.Equal(t, "Bronze", result.Level.Level)
	assert.Empty(t, dir.levelUpdates, "unchanged tier must not be rewritten")
	assert.Empty(t, notifier.levelChanges)
}

func TestRecordPaymentUnknownClient(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(0)

	req := &models.AddPaymentRequest{
		ClientID: "missing",
		Amount:   100,
		Status:   models.PaymentStatusPaid,
	}
	_, err := svc.RecordPayment(context.Background(), req, "admin-1")
	assert.Error(t, err)
}

func TestRefreshPartnerLevelPersistsTierChange(t *testing.T) {
	svc, dir, _, notifier := newPaymentFixture(11)

	info, count, err := svc.RefreshPartnerLevel(context.Background(), "partner-1")
	require.NoError(t, err)
	assert.Equal(t, 11, count)
	assert.Equal(t, "Gold", info.Level)
	assert.Equal(t, 27.0, info.CommissionRate)

	require.Len(t, dir.levelUpdates, 1)
	assert.Equal(t, []string{"partner-1"}, notifier.levelChanges)
}

func TestRefreshPartnerLevelNoChangeIsSilent(t *testing.T) {
	svc, dir, _, notifier := newPaymentFixture(2)

	info, count, err := svc.RefreshPartnerLevel(context.Background(), "partner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "Bronze", info.Level)
	assert.Empty(t, dir.levelUpdates)
	assert.Empty(t, notifier.levelChanges)
}
