package utils

// ReferralRatePercent is the secondary commission paid to a referring
// partner, as a percentage of the referee's own commission (not of the raw
// payment amount).
const ReferralRatePercent = 3.0

// ComputeCommission returns the commission owed for a single payment at the
// given percentage rate. Linear in both arguments. The caller persists the
// result on the payment at creation time; it is never recomputed when the
// partner's level later changes.
func ComputeCommission(paymentAmount, ratePercent float64) float64 {
	return paymentAmount * ratePercent / 100
}

// ComputeReferralCommission returns the referral commission owed to the
// referring partner for a payment whose primary commission is
// commissionAmount.
func ComputeReferralCommission(commissionAmount float64) float64 {
	return ComputeCommission(commissionAmount, ReferralRatePercent)
}

// TenureRatePercent is the legacy year-of-relationship commission ladder:
// 50% in the client's first partnership year, 30% in the second, 10% from the
// third onward. It is kept for the admin commission report only and is never
// written to payment records; the tier-based rate is the system of record.
func TenureRatePercent(partnershipYear int) float64 {
	switch {
	case partnershipYear <= 1:
		return 50
	case partnershipYear == 2:
		return 30
	default:
		return 10
	}
}
