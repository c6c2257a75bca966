package usecase

import (
	"reflect"
	"testing"

	"github.com/wellnesslens/backend/internal/domain"
)

func TestParseFacts_Allergens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "peanut oil maps to peanuts",
			text: "contains peanut oil",
			want: []string{"peanuts"},
		},
		{
			name: "whey maps to milk",
			text: "Ingredients: whey protein isolate, cocoa",
			want: []string{"milk"},
		},
		{
			name: "multiple allergens in canonical order",
			text: "made with wheat flour, almonds and sesame seeds",
			want: []string{"tree-nuts", "wheat", "sesame"},
		},
		{
			name: "no double counting within one allergen",
			text: "milk, dairy, cheese, whey and more milk",
			want: []string{"milk"},
		},
		{
			name: "case insensitive",
			text: "CONTAINS: PEANUTS, SOY",
			want: []string{"peanuts", "soy"},
		},
		{
			name: "no allergens",
			text: "stainless steel water bottle",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := parseFacts(tt.text)
			if !reflect.DeepEqual(facts.AllergenWarnings, tt.want) {
				t.Errorf("AllergenWarnings = %v, want %v", facts.AllergenWarnings, tt.want)
			}
		})
	}
}

func TestParseFacts_Flags(t *testing.T) {
	t.Run("compression garment attributes", func(t *testing.T) {
		facts := parseFacts("Compression Socks, lightweight, ergonomic fit, 20-30 mmHg")
		if !facts.CompressionGarment {
			t.Error("CompressionGarment = false, want true")
		}
		if !facts.Lightweight {
			t.Error("Lightweight = false, want true")
		}
		if !facts.ErgonomicDesign {
			t.Error("ErgonomicDesign = false, want true")
		}
	})

	t.Run("high sodium flagged", func(t *testing.T) {
		facts := parseFacts("electrolyte drink mix with sea salt")
		if !facts.HighSodium {
			t.Error("HighSodium = false, want true")
		}
	})

	t.Run("low sodium claim suppresses sodium flag", func(t *testing.T) {
		facts := parseFacts("low sodium broth")
		if facts.HighSodium {
			t.Error("HighSodium = true, want false for low-sodium claim")
		}
		if !hasClaim(facts.DietaryClaims, "low-sodium") {
			t.Errorf("DietaryClaims = %v, want low-sodium", facts.DietaryClaims)
		}
	})

	t.Run("sugar free claim suppresses sugar flag", func(t *testing.T) {
		facts := parseFacts("sugar free gum, sweetened with xylitol")
		if facts.HighSugar {
			t.Error("HighSugar = true, want false for sugar-free claim")
		}
	})

	t.Run("gluten free claim sets flag without gluten warning", func(t *testing.T) {
		facts := parseFacts("certified gluten-free oat bars")
		if !facts.GlutenFree {
			t.Error("GlutenFree = false, want true")
		}
		for _, w := range facts.AllergenWarnings {
			if w == "gluten" {
				t.Error("gluten warning raised for a gluten-free claim")
			}
		}
	})

	t.Run("dairy free claim suppresses milk warning", func(t *testing.T) {
		facts := parseFacts("dairy-free frozen dessert")
		for _, w := range facts.AllergenWarnings {
			if w == "milk" {
				t.Error("milk warning raised for a dairy-free claim")
			}
		}
	})

	t.Run("ease of use", func(t *testing.T) {
		facts := parseFacts("one-touch operation, easy to use")
		if !facts.EaseOfUse {
			t.Error("EaseOfUse = false, want true")
		}
	})
}

func TestParseFacts_Deterministic(t *testing.T) {
	text := "Trail mix with peanuts, almonds, sea salt and milk chocolate. Gluten-free."
	first := parseFacts(text)
	for i := 0; i < 10; i++ {
		if got := parseFacts(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("parseFacts not deterministic: run %d = %+v, first = %+v", i, got, first)
		}
	}
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		name   string
		record *domain.ProductRecord
		want   domain.Confidence
	}{
		{
			name:   "ingredients present",
			record: &domain.ProductRecord{Title: "Bar", Ingredients: "oats, honey"},
			want:   domain.ConfidenceHigh,
		},
		{
			name:   "three bullets",
			record: &domain.ProductRecord{Title: "Socks", Bullets: []string{"a", "b", "c"}},
			want:   domain.ConfidenceHigh,
		},
		{
			name:   "title and description",
			record: &domain.ProductRecord{Title: "Socks", Description: "soft"},
			want:   domain.ConfidenceMedium,
		},
		{
			name:   "title only",
			record: &domain.ProductRecord{Title: "Socks"},
			want:   domain.ConfidenceLow,
		},
		{
			name:   "nil record",
			record: nil,
			want:   domain.ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confidenceFor(tt.record); got != tt.want {
				t.Errorf("confidenceFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllergenIntersection(t *testing.T) {
	profile := &domain.UserProfile{
		Allergies:       []string{"Peanuts"},
		CustomAllergies: []string{"Tree Nuts"},
	}

	t.Run("matches across both lists with normalization", func(t *testing.T) {
		got := allergenIntersection([]string{"peanuts", "milk", "tree-nuts"}, profile)
		want := []string{"peanuts", "tree-nuts"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("allergenIntersection() = %v, want %v", got, want)
		}
	})

	t.Run("empty when nothing declared", func(t *testing.T) {
		if got := allergenIntersection([]string{"milk"}, &domain.UserProfile{}); got != nil {
			t.Errorf("allergenIntersection() = %v, want nil", got)
		}
	})

	t.Run("empty when nothing detected", func(t *testing.T) {
		if got := allergenIntersection(nil, profile); got != nil {
			t.Errorf("allergenIntersection() = %v, want nil", got)
		}
	})
}
