package invoice

import (
	"fmt"
	"log/slog"
)

// DefaultTolerance absorbs OCR rounding noise, not true computation error.
const DefaultTolerance = 0.5

// Validator checks an invoice's declared totals against totals recomputed
// from the line items.
type Validator struct {
	tolerance float64
}

// NewValidator creates a Validator with the given tolerance. A tolerance
// of zero or less falls back to DefaultTolerance.
func NewValidator(tolerance float64) *Validator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Validator{tolerance: tolerance}
}

// Validate recomputes the subtotal from quantity and unit price directly,
// bypassing the stored item totals so that stale or overridden totals are
// caught too, and compares both it and the implied grand total against the
// invoice's declared values. It writes IsValid and ValidationMessage onto
// the invoice and returns them; no other field is touched.
//
// A subtotal mismatch is reported in preference to a total mismatch, since
// it is usually the root cause of both.
func (v *Validator) Validate(inv *Invoice) (isValid bool, message string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Validation panicked", "recovered", r)
			isValid = false
			message = "Validation failed due to an internal error"
			if inv != nil {
				inv.IsValid = isValid
				inv.ValidationMessage = message
			}
		}
	}()

	var calculatedSubtotal float64
	for _, it := range inv.Items {
		calculatedSubtotal += it.UnitPrice * it.Quantity
	}
	calculatedTotal := calculatedSubtotal - inv.Discount + inv.TaxAmount

	subtotalDiff := abs(calculatedSubtotal - inv.Subtotal)
	totalDiff := abs(calculatedTotal - inv.TotalAmount)

	slog.Info("Validated invoice totals",
		"calculated_subtotal", calculatedSubtotal,
		"declared_subtotal", inv.Subtotal,
		"calculated_total", calculatedTotal,
		"declared_total", inv.TotalAmount,
	)

	switch {
	case subtotalDiff <= v.tolerance && totalDiff <= v.tolerance:
		inv.IsValid = true
		inv.ValidationMessage = "Calculations check out"
	case subtotalDiff > v.tolerance:
		inv.IsValid = false
		inv.ValidationMessage = fmt.Sprintf(
			"Warning: subtotal mismatch\nCalculated: %.2f\nOn invoice: %.2f\nDifference: %.2f",
			calculatedSubtotal, inv.Subtotal, subtotalDiff,
		)
	default:
		inv.IsValid = false
		inv.ValidationMessage = fmt.Sprintf(
			"Warning: grand total mismatch\nCalculated: %.2f\nOn invoice: %.2f\nDifference: %.2f",
			calculatedTotal, inv.TotalAmount, totalDiff,
		)
	}

	return inv.IsValid, inv.ValidationMessage
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
