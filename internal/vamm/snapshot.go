package vamm

import (
	"sort"

	"rateVamm/internal/model"
)

// Snapshot exports the instance's full state in deterministic order.
func (v *VAMM) Snapshot() model.VammSnapshot {
	snap := model.VammSnapshot{
		VammID:               DeriveInstanceID(v.marketID, v.maturity).Hex(),
		MarketID:             v.marketID,
		Maturity:             v.maturity,
		TakenAt:              v.now(),
		TickSpacing:          v.tickSpacing,
		CurrentPrice:         v.currentPrice.String(),
		CurrentTick:          v.currentTick,
		ActiveLiquidity:      v.activeLiquidity.String(),
		GrowthFixedGlobal:    v.growthFixedGlobal.String(),
		GrowthVariableGlobal: v.growthVariableGlobal.String(),
	}

	tickIndexes := make([]int, 0, len(v.registry.ticks))
	for tick := range v.registry.ticks {
		tickIndexes = append(tickIndexes, tick)
	}
	sort.Ints(tickIndexes)
	for _, tick := range tickIndexes {
		entry := v.registry.ticks[tick]
		snap.Ticks = append(snap.Ticks, model.TickSnapshot{
			Tick:                  tick,
			LiquidityGross:        entry.LiquidityGross.String(),
			LiquidityNet:          entry.LiquidityNet.String(),
			GrowthFixedOutside:    entry.GrowthFixedOutside.String(),
			GrowthVariableOutside: entry.GrowthVariableOutside.String(),
		})
	}

	accounts := make([]string, 0, len(v.positions.byAccount))
	for account := range v.positions.byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	for _, account := range accounts {
		for _, pos := range v.positions.accountPositions(account) {
			snap.Positions = append(snap.Positions, model.PositionSnapshot{
				AccountID:              pos.AccountID,
				TickLower:              pos.TickLower,
				TickUpper:              pos.TickUpper,
				BaseAmount:             pos.BaseAmount.String(),
				GrowthFixedSnapshot:    pos.GrowthFixedSnapshot.String(),
				GrowthVariableSnapshot: pos.GrowthVariableSnapshot.String(),
				AccumulatedFixed:       pos.AccumulatedFixed.String(),
				AccumulatedVariable:    pos.AccumulatedVariable.String(),
			})
		}
	}
	return snap
}
