package domain

// Confidence expresses how much source material backed a fact set.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// VerdictLabel is the three-valued recommendation shown to the shopper.
type VerdictLabel string

const (
	VerdictHelpful  VerdictLabel = "helpful"
	VerdictMixed    VerdictLabel = "mixed"
	VerdictNotIdeal VerdictLabel = "not_ideal"
)

// CapabilitySet reports which on-device text capabilities are ready.
// It is recomputed once per analysis request and never persisted; either
// flag may flip between runs.
type CapabilitySet struct {
	SummarizerReady bool              `json:"summarizerReady"`
	PromptReady     bool              `json:"promptReady"`
	Diagnostics     map[string]string `json:"diagnostics,omitempty"`
}

// FactSet is the structured summary of a product's wellness-relevant
// attributes. Both extraction strategies emit the same shape, with
// AllergenWarnings drawn from the canonical allergen vocabulary.
type FactSet struct {
	HighSodium         bool       `json:"highSodium"`
	HighSugar          bool       `json:"highSugar"`
	GlutenFree         bool       `json:"glutenFree"`
	CompressionGarment bool       `json:"compressionGarment"`
	Lightweight        bool       `json:"lightweight"`
	EaseOfUse          bool       `json:"easeOfUse"`
	ErgonomicDesign    bool       `json:"ergonomicDesign"`
	DietaryClaims      []string   `json:"dietaryClaims,omitempty"`
	AllergenWarnings   []string   `json:"allergenWarnings,omitempty"`
	Confidence         Confidence `json:"confidence"`
	SourceText         string     `json:"sourceText"`
}

// Verdict is the bounded recommendation produced by either generator
// strategy. After validation it carries 2-3 bullets of at most 80 characters
// each and a caveat of at most 100 characters.
type Verdict struct {
	Verdict       VerdictLabel `json:"verdict"`
	Bullets       []string     `json:"bullets"`
	Caveat        string       `json:"caveat"`
	AllergenAlert bool         `json:"allergenAlert"`
}

// AnalysisPayload is the only object handed to the display collaborator.
type AnalysisPayload struct {
	Verdict
	Condition        string     `json:"condition"`
	AllergenWarnings []string   `json:"allergenWarnings,omitempty"`
	Confidence       Confidence `json:"confidence"`
}
