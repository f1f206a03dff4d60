package credit

import "github.com/shopspring/decimal"

// TierConfig is what a card of a tier gets: limit, APR and rewards rate.
// Rates are percentages.
type TierConfig struct {
	Tier        Tier
	CardName    string
	MinScore    int
	MaxScore    int
	LimitCents  int64
	APR         decimal.Decimal
	RewardsRate decimal.Decimal
}

// tiers is ordered ascending; rank is the index.
var tiers = []TierConfig{
	{
		Tier: TierStarter, CardName: "Starter Card", MinScore: 300, MaxScore: 579,
		LimitCents: 20000, APR: decimal.RequireFromString("19.9"), RewardsRate: decimal.Zero,
	},
	{
		Tier: TierBuilder, CardName: "Builder Card", MinScore: 580, MaxScore: 669,
		LimitCents: 50000, APR: decimal.RequireFromString("14.9"), RewardsRate: decimal.NewFromInt(1),
	},
	{
		Tier: TierStrong, CardName: "Strong Card", MinScore: 670, MaxScore: 739,
		LimitCents: 100000, APR: decimal.RequireFromString("9.9"), RewardsRate: decimal.NewFromInt(2),
	},
	{
		Tier: TierElite, CardName: "Elite Card", MinScore: 740, MaxScore: 850,
		LimitCents: 200000, APR: decimal.RequireFromString("5.9"), RewardsRate: decimal.NewFromInt(3),
	},
}

// Tiers returns the tier table in ascending order.
func Tiers() []TierConfig {
	out := make([]TierConfig, len(tiers))
	copy(out, tiers)
	return out
}

// DetermineTier is the highest tier whose minimum the score reaches.
func DetermineTier(score int) Tier {
	qualified := TierStarter
	for _, cfg := range tiers {
		if score >= cfg.MinScore {
			qualified = cfg.Tier
		}
	}
	return qualified
}

// Rank orders tiers; unknown tiers rank -1.
func (t Tier) Rank() int {
	for i, cfg := range tiers {
		if cfg.Tier == t {
			return i
		}
	}
	return -1
}

func (t Tier) Valid() bool { return t.Rank() >= 0 }

func (t Tier) Config() (TierConfig, bool) {
	if i := t.Rank(); i >= 0 {
		return tiers[i], true
	}
	return TierConfig{}, false
}

// LowerTier returns whichever of a and b ranks lower.
func LowerTier(a, b Tier) Tier {
	if a.Rank() <= b.Rank() {
		return a
	}
	return b
}
