// Package pricing computes order totals from a customer tier and a set of
// line items.
//
// Every monetary step is rounded to cents on its own: the subtotal, the
// discount and the tax are each rounded before they are combined, and the
// total is rounded again from those rounded components. Changing that order
// changes totals by a cent in edge cases.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/customer"
)

var hundred = decimal.NewFromInt(100)

// Item is a priced quantity, the only input the engine needs from a line.
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice × Quantity without rounding.
func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals is the result of pricing an order. It is stored with the order as
// computed and never recomputed on read.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Equal reports whether all four amounts are numerically equal.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) &&
		t.Discount.Equal(o.Discount) &&
		t.Tax.Equal(o.Tax) &&
		t.Total.Equal(o.Total)
}

func (t Totals) String() string {
	return fmt.Sprintf("subtotal=%s discount=%s tax=%s total=%s",
		t.Subtotal.StringFixed(2), t.Discount.StringFixed(2),
		t.Tax.StringFixed(2), t.Total.StringFixed(2))
}

// Round2 rounds an amount to cents. Midpoints go to the even cent, which is
// the default decimal rounding of the system the stored totals come from.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Subtotal returns the rounded sum of all item totals.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	return Round2(sum)
}

// Price computes subtotal, discount, tax and total for the given tier.
// It never fails: validation of quantities and prices is the caller's job.
func Price(tier customer.Tier, items []Item) Totals {
	s := ScheduleFor(tier)

	subtotal := Subtotal(items)
	discount := Round2(subtotal.Mul(s.DiscountRate(subtotal)))

	// The taxable amount is not rounded on its own.
	taxable := subtotal.Sub(discount)
	tax := Round2(taxable.Mul(s.TaxRate))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    Round2(subtotal.Sub(discount).Add(tax)),
	}
}

// CeilingError reports a discount above the maximum allowed for a tier.
type CeilingError struct {
	Tier    customer.Tier
	Percent int
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("discount cannot exceed %d%%", e.Percent)
}

// CheckCeiling verifies that the effective discount rate of t does not
// exceed the ceiling of the tier. A zero subtotal always passes.
func CheckCeiling(tier customer.Tier, t Totals) error {
	if !t.Subtotal.IsPositive() {
		return nil
	}
	s := ScheduleFor(tier)
	if t.Discount.Div(t.Subtotal).GreaterThan(s.Ceiling) {
		return &CeilingError{
			Tier:    s.Tier,
			Percent: int(s.Ceiling.Mul(hundred).IntPart()),
		}
	}
	return nil
}
