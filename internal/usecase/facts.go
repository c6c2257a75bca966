package usecase

import (
	"strings"

	"github.com/wellnesslens/backend/internal/domain"
)

// allergenTrigger maps a canonical allergen identifier to the tokens that
// mark it present in product text. Scanning is case-insensitive substring
// matching; the first token that matches wins and the rest of that
// allergen's tokens are skipped, so an allergen is never double-counted.
type allergenTrigger struct {
	ID     string
	Tokens []string
}

// allergenTriggers is ordered so results are deterministic across runs.
// Both extraction strategies funnel through this table, which keeps the
// canonical vocabulary identical regardless of which path produced the text.
var allergenTriggers = []allergenTrigger{
	{ID: "peanuts", Tokens: []string{"peanut", "groundnut", "arachis"}},
	{ID: "tree-nuts", Tokens: []string{"tree nut", "almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia", "brazil nut"}},
	{ID: "milk", Tokens: []string{"milk", "dairy", "cheese", "whey", "casein", "lactose", "butter"}},
	{ID: "eggs", Tokens: []string{"egg", "albumin", "mayonnaise"}},
	{ID: "wheat", Tokens: []string{"wheat", "semolina", "farina", "spelt"}},
	{ID: "gluten", Tokens: []string{"contains gluten", "barley", "rye", "malt", "triticale"}},
	{ID: "soy", Tokens: []string{"soy", "soya", "edamame", "tofu"}},
	{ID: "fish", Tokens: []string{"fish oil", "salmon", "tuna", "cod", "anchov", "sardine"}},
	{ID: "shellfish", Tokens: []string{"shellfish", "shrimp", "prawn", "crab", "lobster", "oyster", "clam", "mussel", "scallop"}},
	{ID: "sesame", Tokens: []string{"sesame", "tahini"}},
}

// claimTrigger marks a dietary claim by canonical identifier.
type claimTrigger struct {
	ID     string
	Tokens []string
}

var claimTriggers = []claimTrigger{
	{ID: "gluten-free", Tokens: []string{"gluten free", "gluten-free"}},
	{ID: "sugar-free", Tokens: []string{"sugar free", "sugar-free", "no added sugar", "unsweetened"}},
	{ID: "dairy-free", Tokens: []string{"dairy free", "dairy-free", "non-dairy", "lactose free", "lactose-free"}},
	{ID: "nut-free", Tokens: []string{"nut free", "nut-free"}},
	{ID: "low-sodium", Tokens: []string{"low sodium", "low-sodium", "reduced sodium", "no salt added"}},
	{ID: "vegan", Tokens: []string{"vegan"}},
	{ID: "vegetarian", Tokens: []string{"vegetarian"}},
	{ID: "organic", Tokens: []string{"organic"}},
	{ID: "non-gmo", Tokens: []string{"non-gmo", "non gmo"}},
	{ID: "keto", Tokens: []string{"keto", "ketogenic"}},
	{ID: "low-carb", Tokens: []string{"low carb", "low-carb"}},
}

// Attribute flag triggers. Same case-insensitive substring rule as allergens.
var (
	highSodiumTokens  = []string{"high sodium", "sodium", "salted", "sea salt", "electrolyte", "brine"}
	highSugarTokens   = []string{"high sugar", "sugar", "corn syrup", "sweetened", "fructose"}
	compressionTokens = []string{"compression", "mmhg", "support sock", "support stocking"}
	lightweightTokens = []string{"lightweight", "light weight", "ultralight", "ultra light", "featherweight"}
	easeOfUseTokens   = []string{"easy to use", "ease of use", "easy to clean", "user friendly", "user-friendly", "effortless", "one-touch", "one touch"}
	ergonomicTokens   = []string{"ergonomic", "contoured", "adjustable"}
)

// parseFacts runs the shared fact-parsing routine over a block of text,
// either an AI summary or raw record text. Confidence and SourceText are
// filled in by the caller; everything else is derived here.
func parseFacts(text string) domain.FactSet {
	lower := strings.ToLower(text)

	facts := domain.FactSet{
		CompressionGarment: containsAny(lower, compressionTokens),
		Lightweight:        containsAny(lower, lightweightTokens),
		EaseOfUse:          containsAny(lower, easeOfUseTokens),
		ErgonomicDesign:    containsAny(lower, ergonomicTokens),
	}

	for _, claim := range claimTriggers {
		if containsAny(lower, claim.Tokens) {
			facts.DietaryClaims = append(facts.DietaryClaims, claim.ID)
		}
	}
	facts.GlutenFree = hasClaim(facts.DietaryClaims, "gluten-free")

	// A "sugar free" or "low sodium" claim should not also raise the
	// corresponding content flag off the same words.
	if !hasClaim(facts.DietaryClaims, "low-sodium") {
		facts.HighSodium = containsAny(lower, highSodiumTokens)
	}
	if !hasClaim(facts.DietaryClaims, "sugar-free") {
		facts.HighSugar = containsAny(lower, highSugarTokens)
	}

	for _, allergen := range allergenTriggers {
		// Claimed "-free" variants suppress the matching allergen token
		// (e.g. "dairy-free" contains "dairy").
		if allergen.ID == "milk" && hasClaim(facts.DietaryClaims, "dairy-free") {
			continue
		}
		if (allergen.ID == "peanuts" || allergen.ID == "tree-nuts") && hasClaim(facts.DietaryClaims, "nut-free") {
			continue
		}
		if containsAny(lower, allergen.Tokens) {
			facts.AllergenWarnings = append(facts.AllergenWarnings, allergen.ID)
		}
	}

	return facts
}

// confidenceFor applies the shared confidence rule: high when ingredients
// are present or the record has at least 3 bullets, medium when both title
// and description exist, low otherwise. Identical for both strategies.
func confidenceFor(record *domain.ProductRecord) domain.Confidence {
	if record == nil {
		return domain.ConfidenceLow
	}
	if record.HasIngredients() || len(record.Bullets) >= 3 {
		return domain.ConfidenceHigh
	}
	if record.Title != "" && record.Description != "" {
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}

// allergenIntersection returns the detected allergens that appear in the
// user's combined allergy list, preserving detection order.
func allergenIntersection(warnings []string, profile *domain.UserProfile) []string {
	declared := make(map[string]bool)
	for _, a := range profile.CombinedAllergies() {
		declared[a] = true
	}

	var matched []string
	for _, w := range warnings {
		if declared[domain.CanonicalAllergen(w)] {
			matched = append(matched, w)
		}
	}
	return matched
}

// containsAny reports whether any token appears in the (lowercased) text.
// First match wins; remaining tokens are not scanned.
func containsAny(lower string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func hasClaim(claims []string, id string) bool {
	for _, c := range claims {
		if c == id {
			return true
		}
	}
	return false
}
