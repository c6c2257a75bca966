package usecase

import (
	"fmt"
	"strings"

	"github.com/wellnesslens/backend/internal/domain"
)

// Output bounds enforced on every verdict before it leaves the pipeline.
const (
	minBullets   = 2
	maxBullets   = 3
	maxBulletLen = 80
	maxCaveatLen = 100
)

// allergenCaveatPrefix marks a caveat that already carries the allergen
// statement, which keeps the prepend idempotent.
const allergenCaveatPrefix = "Contains allergens you flagged"

// SafetyValidator sanitizes and clamps any verdict, AI- or rule-produced,
// and enforces the allergen override. It is total and deterministic: every
// input yields a valid verdict, and validating twice yields the same result.
// No caller may publish a verdict without passing through Validate.
type SafetyValidator struct{}

// NewSafetyValidator creates the validator.
func NewSafetyValidator() *SafetyValidator {
	return &SafetyValidator{}
}

// Validate returns a sanitized copy of the verdict. The original is not
// modified.
func (v *SafetyValidator) Validate(verdict *domain.Verdict, facts *domain.FactSet, profile *domain.UserProfile) *domain.Verdict {
	out := &domain.Verdict{}
	if verdict != nil {
		*out = *verdict
		out.Bullets = append([]string(nil), verdict.Bullets...)
	}

	// 1. Clamp the verdict to the three-value enum.
	switch out.Verdict {
	case domain.VerdictHelpful, domain.VerdictMixed, domain.VerdictNotIdeal:
	default:
		out.Verdict = domain.VerdictMixed
	}

	// 2. Bullet bounds: at most 3 entries, at least 2, each ellipsis-capped.
	if len(out.Bullets) > maxBullets {
		out.Bullets = out.Bullets[:maxBullets]
	}
	for i, bullet := range out.Bullets {
		out.Bullets[i] = clampText(bullet, maxBulletLen)
	}
	for len(out.Bullets) < minBullets {
		out.Bullets = append(out.Bullets, genericBullet)
	}

	// 3. Caveat bounds.
	out.Caveat = strings.TrimSpace(out.Caveat)
	if out.Caveat == "" {
		out.Caveat = DefaultCaveat
	}
	out.Caveat = clampText(out.Caveat, maxCaveatLen)

	// 4. Allergen override: non-negotiable, regardless of what either
	// generator strategy said.
	var matched []string
	if facts != nil {
		matched = allergenIntersection(facts.AllergenWarnings, profile)
	}
	if len(matched) > 0 {
		out.Verdict = domain.VerdictNotIdeal
		out.AllergenAlert = true
		if !strings.HasPrefix(out.Caveat, allergenCaveatPrefix) {
			statement := fmt.Sprintf("%s: %s. ", allergenCaveatPrefix, strings.Join(matched, ", "))
			out.Caveat = clampText(statement+out.Caveat, maxCaveatLen)
		}
	} else {
		out.AllergenAlert = false
	}

	return out
}

// clampText truncates s to at most n characters, replacing the tail with an
// ellipsis when truncation happens.
func clampText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
