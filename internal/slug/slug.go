// Package slug produces the URL-safe public identifiers for published
// memorials, e.g. "john-doe-1945".
package slug

import (
	"context"
	"fmt"
	"strings"
	"time"

	"memorial-platform/internal/apperr"
)

// Probing stops after this many candidates so a pathological lookup can
// never loop forever.
const maxAttempts = 1000

// Checker reports whether a candidate slug is already taken by an existing
// memorial. Implemented by the memorial repository.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generate normalizes a person's name into a base slug: lowercase, runs of
// whitespace become single hyphens, anything outside [a-z0-9-] is stripped,
// repeated hyphens collapse, leading and trailing hyphens are trimmed.
func Generate(name string) string {
	s := strings.ToLower(name)
	s = strings.Join(strings.Fields(s), "-")

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// Base returns the slug for a name with the birth year appended when a birth
// date (YYYY-MM-DD) is supplied.
func Base(fullName string, birthDate *string) string {
	s := Generate(fullName)
	if birthDate != nil {
		if t, err := time.Parse("2006-01-02", *birthDate); err == nil {
			s = fmt.Sprintf("%s-%d", s, t.Year())
		}
	}
	return s
}

// PublicURL returns the first unused slug for the name: the base slug if
// free, otherwise base-2, base-3, and so on. Each candidate costs one
// existence lookup. This check-then-act is racy under concurrent publishes;
// the caller must still treat a unique-violation on insert as retryable.
func PublicURL(ctx context.Context, checker Checker, fullName string, birthDate *string) (string, error) {
	base := Base(fullName, birthDate)
	candidate := base

	for counter := 1; counter <= maxAttempts; counter++ {
		if counter > 1 {
			candidate = fmt.Sprintf("%s-%d", base, counter)
		}
		taken, err := checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: could not allocate a unique slug for %q after %d attempts", apperr.ErrConflict, base, maxAttempts)
}
