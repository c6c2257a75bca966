package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/wellnesslens/backend/internal/domain"
)

// Document assembly budgets for the capability-backed extractor. The
// assembled document is truncated as a whole before it reaches the
// summarizer so a verbose page can't blow the model's context.
const (
	maxDocumentBullets  = 5
	maxDescriptionChars = 800
	maxReviewSnippets   = 3
	maxReviewChars      = 400
	maxDocumentChars    = 2800
)

// FactExtractor turns a product record into a structured fact set. The two
// implementations are interchangeable; the orchestrator picks one based on
// the capability probe and falls back on any error.
type FactExtractor interface {
	Extract(ctx context.Context, record *domain.ProductRecord) (*domain.FactSet, error)
}

// CapabilityFactExtractor summarizes the product page with the on-device
// summarization capability and parses facts out of the summary.
type CapabilityFactExtractor struct {
	summarizer domain.Summarizer
}

// NewCapabilityFactExtractor creates the capability-backed extraction strategy.
func NewCapabilityFactExtractor(summarizer domain.Summarizer) *CapabilityFactExtractor {
	return &CapabilityFactExtractor{summarizer: summarizer}
}

// Extract builds the bounded input document, invokes the summarizer, and
// runs the shared fact parser over the summary. Any capability failure is
// reported as an error for the orchestrator to downgrade to the fallback;
// nothing propagates further.
func (e *CapabilityFactExtractor) Extract(ctx context.Context, record *domain.ProductRecord) (*domain.FactSet, error) {
	if record == nil || record.Title == "" {
		return nil, domain.ErrInvalidRecord
	}

	document := BuildDocument(record)

	summary, err := e.summarizer.Summarize(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCapabilityInvocation, err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: empty summary", domain.ErrMalformedCapabilityOutput)
	}

	facts := parseFacts(summary)
	facts.Confidence = confidenceFor(record)
	facts.SourceText = summary
	return &facts, nil
}

// FallbackFactExtractor applies the identical fact-parsing logic directly
// to the raw record text. It is deterministic and never fails on a valid
// record.
type FallbackFactExtractor struct{}

// NewFallbackFactExtractor creates the deterministic extraction strategy.
func NewFallbackFactExtractor() *FallbackFactExtractor {
	return &FallbackFactExtractor{}
}

// Extract concatenates the raw record fields and parses facts from them.
func (e *FallbackFactExtractor) Extract(ctx context.Context, record *domain.ProductRecord) (*domain.FactSet, error) {
	if record == nil || record.Title == "" {
		return nil, domain.ErrInvalidRecord
	}

	raw := rawRecordText(record)
	facts := parseFacts(raw)
	facts.Confidence = confidenceFor(record)
	facts.SourceText = raw
	return &facts, nil
}

// BuildDocument assembles the summarizer input with a fixed section order:
// title, up to 5 bullets, ingredients (prioritized because they drive
// allergen detection), truncated description, then up to 3 truncated review
// snippets. The whole document is clamped to maxDocumentChars.
func BuildDocument(record *domain.ProductRecord) string {
	var b strings.Builder

	b.WriteString("Product: ")
	b.WriteString(record.Title)
	b.WriteString("\n")

	bullets := record.Bullets
	if len(bullets) > maxDocumentBullets {
		bullets = bullets[:maxDocumentBullets]
	}
	if len(bullets) > 0 {
		b.WriteString("Features: ")
		b.WriteString(strings.Join(bullets, "; "))
		b.WriteString("\n")
	}

	if record.Ingredients != "" {
		b.WriteString("Ingredients: ")
		b.WriteString(record.Ingredients)
		b.WriteString("\n")
	}

	if record.Description != "" {
		b.WriteString("Description: ")
		b.WriteString(truncate(record.Description, maxDescriptionChars))
		b.WriteString("\n")
	}

	reviews := record.Reviews
	if len(reviews) > maxReviewSnippets {
		reviews = reviews[:maxReviewSnippets]
	}
	if len(reviews) > 0 {
		b.WriteString("Reviews: ")
		b.WriteString(truncate(strings.Join(reviews, " | "), maxReviewChars))
		b.WriteString("\n")
	}

	return truncate(b.String(), maxDocumentChars)
}

// rawRecordText concatenates every record field for the fallback parser.
func rawRecordText(record *domain.ProductRecord) string {
	parts := []string{record.Title}
	parts = append(parts, record.Bullets...)
	if record.Ingredients != "" {
		parts = append(parts, record.Ingredients)
	}
	if record.Description != "" {
		parts = append(parts, record.Description)
	}
	parts = append(parts, record.Reviews...)
	return strings.Join(parts, "\n")
}

// truncate clamps s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
