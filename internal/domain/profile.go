package domain

import "strings"

// DefaultCondition is used when the preference store has no saved profile.
const DefaultCondition = "POTS"

// CustomCondition is the sentinel condition value indicating that the
// shopper typed their own condition into CustomCondition.
const CustomCondition = "custom"

// UserProfile holds the shopper's self-declared chronic condition and
// allergy lists. It is owned by the preference store and read-only for the
// analysis pipeline.
type UserProfile struct {
	Condition       string   `json:"condition"`
	CustomCondition string   `json:"customCondition,omitempty"`
	Allergies       []string `json:"allergies,omitempty"`
	CustomAllergies []string `json:"customAllergies,omitempty"`
}

// DefaultProfile returns the profile assumed when none has been saved.
func DefaultProfile() *UserProfile {
	return &UserProfile{Condition: DefaultCondition}
}

// ResolvedCondition returns the condition the verdict should address,
// substituting the free-text custom condition when one was declared.
func (p *UserProfile) ResolvedCondition() string {
	if p == nil {
		return DefaultCondition
	}
	if strings.EqualFold(p.Condition, CustomCondition) && p.CustomCondition != "" {
		return p.CustomCondition
	}
	if p.Condition == "" {
		return DefaultCondition
	}
	return p.Condition
}

// CombinedAllergies returns the union of the declared and custom allergy
// lists, normalized to the canonical allergen vocabulary (lowercase,
// hyphen-separated). Duplicates are removed, order of first appearance wins.
func (p *UserProfile) CombinedAllergies() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool)
	var combined []string
	for _, list := range [][]string{p.Allergies, p.CustomAllergies} {
		for _, a := range list {
			canonical := CanonicalAllergen(a)
			if canonical == "" || seen[canonical] {
				continue
			}
			seen[canonical] = true
			combined = append(combined, canonical)
		}
	}
	return combined
}

// CanonicalAllergen normalizes a user-entered allergen name into the
// canonical identifier form shared with FactSet.AllergenWarnings
// (e.g. "Tree Nuts" -> "tree-nuts").
func CanonicalAllergen(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "-")
}
