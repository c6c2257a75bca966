package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wellnesslens/backend/internal/domain"
)

// DefaultCaveat is used whenever no caveat was computed or provided.
const DefaultCaveat = "AI analysis unavailable. Please verify details manually."

// genericBullet pads verdicts that produced fewer than two bullets.
const genericBullet = "Additional details available on the product page."

// verdictSystemPrompt is the fixed safety-constrained instruction for the
// generative capability. The shape constraints here are advisory; the
// SafetyValidator enforces them regardless of what the model returns.
const verdictSystemPrompt = `You are a cautious shopping assistant for people managing chronic health conditions.
Rules:
- Never give medical advice, diagnosis, or treatment guidance.
- Use supportive, hedged language ("may help", "some people find").
- Respond with strict JSON only, no markdown, matching:
  {"verdict":"helpful|mixed|not_ideal","bullets":["..."],"caveat":"..."}
- 2 to 3 bullets, each under 80 characters. Caveat under 100 characters.
- If any listed allergen matches the shopper's allergies, the verdict must be "not_ideal".`

// conditionGuidance gives the generative capability a condition-specific
// framing hint. Keys are lowercase condition names; unknown conditions get
// genericGuidance.
var conditionGuidance = map[string]string{
	"pots":         "POTS shoppers often benefit from electrolyte support, compression garments, and low-effort products.",
	"me/cfs":       "ME/CFS shoppers prioritize energy conservation: lightweight, easy-to-use products matter most.",
	"eds":          "EDS shoppers look for joint support, ergonomic design, and gentle materials.",
	"fibromyalgia": "Fibromyalgia shoppers favor soft textures, ergonomic design, and low-effort use.",
	"long covid":   "Long COVID shoppers value pacing aids, lightweight items, and simple operation.",
	"mcas":         "MCAS shoppers need strict attention to ingredient and additive lists.",
	"celiac":       "Celiac shoppers require certified gluten-free products; cross-contamination matters.",
}

const genericGuidance = "Focus on comfort, ease of use, and ingredient transparency for chronic-condition shoppers."

// VerdictGenerator turns a fact set and user profile into a bounded verdict.
// Like FactExtractor, the two implementations are interchangeable and the
// orchestrator falls back on any error.
type VerdictGenerator interface {
	Generate(ctx context.Context, facts *domain.FactSet, profile *domain.UserProfile) (*domain.Verdict, error)
}

// CapabilityVerdictGenerator asks the on-device generative capability for a
// verdict and extracts the first parseable JSON object from its free-text
// response.
type CapabilityVerdictGenerator struct {
	model domain.TextGenerator
}

// NewCapabilityVerdictGenerator creates the capability-backed generator strategy.
func NewCapabilityVerdictGenerator(model domain.TextGenerator) *CapabilityVerdictGenerator {
	return &CapabilityVerdictGenerator{model: model}
}

// Generate builds the prompt pair, invokes the capability, and parses the
// embedded verdict object. Parse failure means the strategy failed and the
// caller falls back; the result is still subject to the SafetyValidator.
func (g *CapabilityVerdictGenerator) Generate(ctx context.Context, facts *domain.FactSet, profile *domain.UserProfile) (*domain.Verdict, error) {
	response, err := g.model.Generate(ctx, verdictSystemPrompt, buildVerdictUserPrompt(facts, profile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCapabilityInvocation, err)
	}

	verdict, err := parseVerdictResponse(response)
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

// buildVerdictUserPrompt embeds the resolved condition, guidance, allergy
// list, and every fact field into a single user message.
func buildVerdictUserPrompt(facts *domain.FactSet, profile *domain.UserProfile) string {
	condition := profile.ResolvedCondition()
	guidance, ok := conditionGuidance[strings.ToLower(condition)]
	if !ok {
		guidance = genericGuidance
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shopper condition: %s\n", condition)
	fmt.Fprintf(&b, "Guidance: %s\n", guidance)
	fmt.Fprintf(&b, "Shopper allergies: %s\n", joinOrNone(profile.CombinedAllergies()))
	fmt.Fprintf(&b, "Detected allergens: %s\n", joinOrNone(facts.AllergenWarnings))
	fmt.Fprintf(&b, "Dietary claims: %s\n", joinOrNone(facts.DietaryClaims))
	fmt.Fprintf(&b, "Product facts: highSodium=%t highSugar=%t glutenFree=%t compressionGarment=%t lightweight=%t easeOfUse=%t ergonomicDesign=%t\n",
		facts.HighSodium, facts.HighSugar, facts.GlutenFree, facts.CompressionGarment,
		facts.Lightweight, facts.EaseOfUse, facts.ErgonomicDesign)
	fmt.Fprintf(&b, "Extraction confidence: %s\n", facts.Confidence)
	b.WriteString("Produce the JSON verdict now.")
	return b.String()
}

// candidateVerdict is the loose shape parsed out of model prose before
// validation clamps it.
type candidateVerdict struct {
	Verdict string   `json:"verdict"`
	Bullets []string `json:"bullets"`
	Caveat  string   `json:"caveat"`
}

// parseVerdictResponse locates the first balanced {...} substring in free
// text and parses it as a verdict object. Surrounding commentary is
// discarded. If no balanced substring parses, the response is malformed.
func parseVerdictResponse(response string) (*domain.Verdict, error) {
	for start := 0; start < len(response); {
		open := strings.IndexByte(response[start:], '{')
		if open < 0 {
			break
		}
		open += start

		object, ok := balancedObject(response[open:])
		if !ok {
			break
		}

		var candidate candidateVerdict
		if err := json.Unmarshal([]byte(object), &candidate); err == nil && candidate.Verdict != "" {
			return &domain.Verdict{
				Verdict: domain.VerdictLabel(strings.ToLower(strings.TrimSpace(candidate.Verdict))),
				Bullets: candidate.Bullets,
				Caveat:  candidate.Caveat,
			}, nil
		}
		start = open + 1
	}
	return nil, fmt.Errorf("%w: no verdict object in response", domain.ErrMalformedCapabilityOutput)
}

// balancedObject returns the shortest balanced {...} prefix of s, tracking
// string literals and escapes so braces inside values don't break matching.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[:i+1], true
				}
			}
		}
	}
	return "", false
}

// RuleVerdictGenerator is the deterministic fallback strategy. It always
// produces a verdict with at least two bullets and a caveat.
type RuleVerdictGenerator struct{}

// NewRuleVerdictGenerator creates the fallback generator strategy.
func NewRuleVerdictGenerator() *RuleVerdictGenerator {
	return &RuleVerdictGenerator{}
}

// Generate applies the rule table: a matched allergen forces not_ideal,
// compression or gluten-free facts push toward helpful, high sodium is
// surfaced as information without changing the verdict, default is mixed.
func (g *RuleVerdictGenerator) Generate(ctx context.Context, facts *domain.FactSet, profile *domain.UserProfile) (*domain.Verdict, error) {
	verdict := &domain.Verdict{Verdict: domain.VerdictMixed}

	matched := allergenIntersection(facts.AllergenWarnings, profile)
	if len(matched) > 0 {
		verdict.Verdict = domain.VerdictNotIdeal
		verdict.AllergenAlert = true
		verdict.Bullets = append(verdict.Bullets,
			fmt.Sprintf("Listing mentions %s, which is on your allergy list", strings.Join(matched, ", ")))
	} else {
		if facts.CompressionGarment {
			verdict.Verdict = domain.VerdictHelpful
			verdict.Bullets = append(verdict.Bullets, "Compression garments may help with circulation support")
		}
		if facts.GlutenFree {
			verdict.Verdict = domain.VerdictHelpful
			verdict.Bullets = append(verdict.Bullets, "Labeled gluten-free")
		}
	}

	if facts.Lightweight {
		verdict.Bullets = append(verdict.Bullets, "Lightweight design may reduce fatigue during use")
	}
	if facts.ErgonomicDesign {
		verdict.Bullets = append(verdict.Bullets, "Ergonomic design noted in the listing")
	}
	if facts.EaseOfUse {
		verdict.Bullets = append(verdict.Bullets, "Reviewers describe it as easy to use")
	}

	// Informational only: sodium content can be desirable (e.g. POTS), so
	// it never changes the verdict here.
	if facts.HighSodium {
		verdict.Bullets = append(verdict.Bullets, "Contains notable sodium; relevant to your hydration plan")
	}

	for len(verdict.Bullets) < 2 {
		verdict.Bullets = append(verdict.Bullets, genericBullet)
	}
	verdict.Caveat = DefaultCaveat

	return verdict, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
