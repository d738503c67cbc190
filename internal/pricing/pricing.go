// Package pricing computes the one-time payment amount for a memorial
// request. The result is computed once at submission and persisted; it is
// never recomputed on later edits.
package pricing

import (
	"fmt"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
)

// Base prices in cents.
var tierPrices = map[string]int{
	models.TierMarked:     7500,
	models.TierRemembered: 12500,
	models.TierEnduring:   20000,
}

// Preservation add-on prices in cents.
var cyclePrices = map[string]int{
	models.CycleMonthly: 200,
	models.CycleYearly:  1200,
}

// Applied to the running subtotal when a discount is requested. The discount
// type is informational only; eligibility is not verified.
const discountPercent = 15

// Compute returns the payment amount in cents for the given selection.
// billingCycle is only consulted when preservationAddon is set, and must then
// name a valid cycle. The 15% discount rounds half-up in integer math.
func Compute(tier string, preservationAddon bool, billingCycle string, discountRequested bool) (int, error) {
	base, ok := tierPrices[tier]
	if !ok {
		return 0, fmt.Errorf("%w: unknown tier %q", apperr.ErrValidation, tier)
	}

	total := base
	if preservationAddon {
		addon, ok := cyclePrices[billingCycle]
		if !ok {
			return 0, fmt.Errorf("%w: preservation add-on requires a billing cycle of monthly or yearly, got %q", apperr.ErrValidation, billingCycle)
		}
		total += addon
	}

	if discountRequested {
		total = applyDiscount(total)
	}

	return total, nil
}

// applyDiscount takes 15% off a subtotal in cents, rounding half-up in
// integer math so repeated float multiplication cannot bias the result.
func applyDiscount(subtotalCents int) int {
	return (subtotalCents*(100-discountPercent) + 50) / 100
}
