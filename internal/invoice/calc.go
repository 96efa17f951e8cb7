package invoice

import (
	"math"

	"github.com/shopspring/decimal"
)

// round2 rounds a monetary value to two decimal places, half away from
// zero. All derived fields go through this so the rounding mode is uniform.
// Non-finite values pass through untouched: decimal cannot represent them,
// and a NaN or infinity produced by overflow must surface in the derived
// fields rather than panic.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Recalculate restores every derived field from its inputs, in fixed order:
// item totals, then subtotal, then tax amount, then grand total. It mutates
// the invoice in place and returns it for chaining.
//
// Negative discounts and tax rates pass through unclamped; this layer does
// no input validation. Callers decide which edits trigger recalculation:
// direct overrides of Subtotal or an item Total are written verbatim and
// stand until the next recalculating edit.
func Recalculate(inv *Invoice) *Invoice {
	for i := range inv.Items {
		it := &inv.Items[i]
		it.Total = round2(it.Quantity * it.UnitPrice)
	}

	var sum float64
	for _, it := range inv.Items {
		sum += it.Total
	}
	inv.Subtotal = round2(sum)

	inv.TaxAmount = round2((inv.Subtotal - inv.Discount) * inv.TaxRate / 100)
	inv.TotalAmount = round2(inv.Subtotal - inv.Discount + inv.TaxAmount)

	return inv
}
