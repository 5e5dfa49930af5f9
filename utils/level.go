package utils

import (
	"math"
)

// Tier holds one row of the partner level table. MinClients is inclusive;
// the tier ends where the next one begins.
type Tier struct {
	Level          string
	MinClients     int
	CommissionRate float64
}

// LevelTable is the partner tier ladder, ordered by MinClients ascending.
var LevelTable = []Tier{
	{Level: "Bronze", MinClients: 0, CommissionRate: 20},
	{Level: "Silver", MinClients: 6, CommissionRate: 25},
	{Level: "Gold", MinClients: 11, CommissionRate: 27},
	{Level: "Platinum", MinClients: 21, CommissionRate: 35},
	{Level: "Transcendent", MinClients: 51, CommissionRate: 50},
}

// LevelInfo is the result of a level computation.
type LevelInfo struct {
	Level           string  `json:"level"`
	CommissionRate  float64 `json:"commissionRate"`
	NextThreshold   *int    `json:"nextThreshold"`
	ProgressPercent int     `json:"progressPercent"`
}

// ComputeLevel maps a qualifying-client count (clients with at least one paid
// payment) to the partner's tier. Total for any count >= 0; negative counts
// are clamped to zero. The level is always re-derived from scratch, never
// incrementally updated, so the computation is idempotent and
// order-independent.
func ComputeLevel(qualifyingClients int) LevelInfo {
	if qualifyingClients < 0 {
		qualifyingClients = 0
	}

	idx := 0
	for i, tier := range LevelTable {
		if qualifyingClients >= tier.MinClients {
			idx = i
		}
	}

	tier := LevelTable[idx]
	info := LevelInfo{
		Level:          tier.Level,
		CommissionRate: tier.CommissionRate,
	}

	if idx == len(LevelTable)-1 {
		// Top tier: nothing left to climb.
		info.NextThreshold = nil
		info.ProgressPercent = 100
		return info
	}

	next := LevelTable[idx+1].MinClients
	info.NextThreshold = &next
	span := next - tier.MinClients
	info.ProgressPercent = int(math.Round(100 * float64(qualifyingClients-tier.MinClients) / float64(span)))
	if info.ProgressPercent > 100 {
		info.ProgressPercent = 100
	}
	return info
}
