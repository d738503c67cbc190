// Package lifecycle defines the memorial-request status workflow:
//
//	submitted -> under_review -> approved -> published
//	submitted, under_review   -> rejected
//
// published and rejected are terminal. Every admin-driven status change must
// pass CheckTransition before it is written. The payment callback is a
// separate entry point (see PaymentCascade) and does not consult this table.
package lifecycle

import (
	"fmt"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
)

var allowed = map[string][]string{
	models.StatusSubmitted:   {models.StatusUnderReview, models.StatusRejected},
	models.StatusUnderReview: {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:    {models.StatusPublished},
	models.StatusPublished:   {},
	models.StatusRejected:    {},
}

// ValidStatus reports whether s names a known request status.
func ValidStatus(s string) bool {
	_, ok := allowed[s]
	return ok
}

// CheckTransition returns nil when moving from current to next is permitted.
func CheckTransition(current, next string) error {
	if !ValidStatus(next) {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, next)
	}
	for _, s := range allowed[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, current, next)
}

// PaymentCascade returns the request status forced by a payment result: a
// completed payment advances the request to under_review, anything else
// leaves it at submitted.
func PaymentCascade(paymentStatus string) string {
	if paymentStatus == models.PaymentCompleted {
		return models.StatusUnderReview
	}
	return models.StatusSubmitted
}
