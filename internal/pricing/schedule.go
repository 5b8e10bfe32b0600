package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/customer"
)

// Breakpoint applies Rate to subtotals greater than or equal to Threshold.
type Breakpoint struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Schedule holds the discount breakpoints, tax rate and maximum allowable
// discount rate of a tier.
type Schedule struct {
	Tier customer.Tier
	// Breakpoints are ordered from the highest threshold down.
	Breakpoints []Breakpoint
	TaxRate     decimal.Decimal
	Ceiling     decimal.Decimal
}

// DiscountRate returns the rate of the first breakpoint the subtotal
// reaches, or zero when it reaches none. Rates never stack.
func (s Schedule) DiscountRate(subtotal decimal.Decimal) decimal.Decimal {
	for _, bp := range s.Breakpoints {
		if subtotal.GreaterThanOrEqual(bp.Threshold) {
			return bp.Rate
		}
	}
	return decimal.Zero
}

func bp(threshold, rate string) Breakpoint {
	return Breakpoint{
		Threshold: decimal.RequireFromString(threshold),
		Rate:      decimal.RequireFromString(rate),
	}
}

var schedules = map[customer.Tier]Schedule{
	customer.TierVIP: {
		Tier:        customer.TierVIP,
		Breakpoints: []Breakpoint{bp("0", "0.20")},
		TaxRate:     decimal.RequireFromString("0.10"),
		Ceiling:     decimal.RequireFromString("0.20"),
	},
	customer.TierPremium: {
		Tier: customer.TierPremium,
		Breakpoints: []Breakpoint{
			bp("1500", "0.18"),
			bp("800", "0.12"),
			bp("400", "0.07"),
		},
		TaxRate: decimal.RequireFromString("0.12"),
		Ceiling: decimal.RequireFromString("0.18"),
	},
	customer.TierStandard: {
		Tier: customer.TierStandard,
		Breakpoints: []Breakpoint{
			bp("2000", "0.15"),
			bp("1000", "0.10"),
			bp("500", "0.05"),
		},
		TaxRate: decimal.RequireFromString("0.14975"),
		Ceiling: decimal.RequireFromString("0.15"),
	},
}

// ScheduleFor returns the schedule of the tier, falling back to the
// standard schedule for unknown tiers.
func ScheduleFor(tier customer.Tier) Schedule {
	if s, ok := schedules[customer.ParseTier(string(tier))]; ok {
		return s
	}
	return schedules[customer.TierStandard]
}
