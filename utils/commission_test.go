package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCommission(t *testing.T) {
	assert.Equal(t, 2000.0, ComputeCommission(10000, 20))
	assert.Equal(t, 2500.0, ComputeCommission(10000, 25))
	assert.Equal(t, 0.0, ComputeCommission(0, 20))
	assert.Equal(t, 0.0, ComputeCommission(10000, 0))
}

func TestComputeCommissionIsLinear(t *testing.T) {
	single := ComputeCommission(1500, 27)
	assert.InDelta(t, 3*single, ComputeCommission(4500, 27), 1e-9)
	assert.InDelta(t, 2*single, ComputeCommission(1500, 54), 1e-9)
}

func TestComputeReferralCommission(t *testing.T) {
	// 3% of the referee's commission, not of the raw payment
	assert.Equal(t, 60.0, ComputeReferralCommission(2000))
	assert.Equal(t, 0.0, ComputeReferralCommission(0))
	assert.Equal(t, 3.0, ReferralRatePercent)
}

func TestTenureRatePercent(t *testing.T) {
	assert.Equal(t, 50.0, TenureRatePercent(0))
	assert.Equal(t, 50.0, TenureRatePercent(1))
	assert.Equal(t, 30.0, TenureRatePercent(2))
	assert.Equal(t, 10.0, TenureRatePercent(3))
	assert.Equal(t, 10.0, TenureRatePercent(15))
}
