package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLevelTierBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		qualifying int
		level      string
		rate       float64
	}{
		{"zero clients starts at Bronze", 0, "Bronze", 20},
		{"last Bronze count", 5, "Bronze", 20},
		{"first Silver count", 6, "Silver", 25},
		{"last Silver count", 10, "Silver", 25},
		{"first Gold count", 11, "Gold", 27},
		{"last Gold count", 20, "Gold", 27},
		{"first Platinum count", 21, "Platinum", 35},
		{"last Platinum count", 50, "Platinum", 35},
		{"first Transcendent count", 51, "Transcendent", 50},
		{"far beyond top threshold", 500, "Transcendent", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ComputeLevel(tt.qualifying)
			assert.Equal(t, tt.level, info.Level)
			assert.Equal(t, tt.rate, info.CommissionRate)
		})
	}
}

func TestComputeLevelProgress(t *testing.T) {
	info := ComputeLevel(0)
	require.NotNil(t, info.NextThreshold)
	assert.Equal(t, 6, *info.NextThreshold)
	assert.Equal(t, 0, info.ProgressPercent)

	// 5 of 6 needed: round(100*5/6) = 83
	info = ComputeLevel(5)
	assert.Equal(t, 83, info.ProgressPercent)

	// Fresh tier resets progress
	info = ComputeLevel(6)
	require.NotNil(t, info.NextThreshold)
	assert.Equal(t, 11, *info.NextThreshold)
	assert.Equal(t, 0, info.ProgressPercent)

	// 4 of 5 through Silver: round(100*4/5) = 80
	info = ComputeLevel(10)
	assert.Equal(t, 80, info.ProgressPercent)

	// 29 of 30 through Platinum: round(100*29/30) = 97
	info = ComputeLevel(50)
	assert.Equal(t, 97, info.ProgressPercent)
}

func TestComputeLevelTopTier(t *testing.T) {
	info := ComputeLevel(51)
	assert.Equal(t, "Transcendent", info.Level)
	assert.Nil(t, info.NextThreshold)
	assert.Equal(t, 100, info.ProgressPercent)
}

func TestComputeLevelNegativeCountClampsToZero(t *testing.T) {
	assert.Equal(t, ComputeLevel(0), ComputeLevel(-3))
}

func TestComputeLevelProgressMonotonicWithinTier(t *testing.T) {
	prev := -1
	for n := 0; n <= 5; n++ {
		info := ComputeLevel(n)
		require.Equal(t, "Bronze", info.Level)
		assert.GreaterOrEqual(t, info.ProgressPercent, prev)
		prev = info.ProgressPercent
	}
}

func TestComputeLevelProgressInRange(t *testing.T) {
	for n := 0; n <= 120; n++ {
		info := ComputeLevel(n)
		assert.GreaterOrEqual(t, info.ProgressPercent, 0, "count %d", n)
		assert.LessOrEqual(t, info.ProgressPercent, 100, "count %d", n)
	}
}
