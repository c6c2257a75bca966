package modelgw

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/wellnesslens/backend/internal/domain"
)

// Completion budgets. The verdict prompt instructs strict JSON under a
// length budget, so generation stays small.
const (
	summaryMaxTokens = 400
	verdictMaxTokens = 512
)

// summarySystemPrompt steers the summarization capability toward the
// factual details the fact parser looks for.
const summarySystemPrompt = `Summarize the product listing in at most 5 short factual sentences.
Always preserve ingredient names, allergen mentions, dietary claims, and physical attributes
(compression, weight, ergonomics, ease of use). No opinions, no recommendations.`

// Client talks to an OpenAI-compatible local model gateway (e.g. an Ollama
// or llama.cpp server) that hosts the summarization and generative models.
// It implements domain.CapabilityProber, domain.Summarizer, and
// domain.TextGenerator.
type Client struct {
	api             *openai.Client
	summarizerModel string
	promptModel     string
	rateLimiter     *rate.Limiter
	debug           bool
}

// NewClient creates a gateway client. baseURL points at the gateway's
// OpenAI-compatible API root; apiKey may be empty for local gateways.
func NewClient(baseURL, apiKey, summarizerModel, promptModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	// Local inference is the bottleneck, not the API: cap at 2 calls/sec
	// with a small burst so one page analysis never queues behind itself.
	limiter := rate.NewLimiter(rate.Limit(2), 4)

	return &Client{
		api:             openai.NewClientWithConfig(cfg),
		summarizerModel: summarizerModel,
		promptModel:     promptModel,
		rateLimiter:     limiter,
	}
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Probe checks each configured model for readiness. It never returns an
// error: a failed lookup is recorded in diagnostics and the capability
// reported unready. Results are not cached; readiness may flip between runs.
func (c *Client) Probe(ctx context.Context) domain.CapabilitySet {
	caps := domain.CapabilitySet{Diagnostics: make(map[string]string)}

	caps.SummarizerReady = c.probeModel(ctx, c.summarizerModel, "summarizer", caps.Diagnostics)
	if c.promptModel == c.summarizerModel {
		caps.PromptReady = caps.SummarizerReady
		if !caps.PromptReady {
			caps.Diagnostics["prompt"] = caps.Diagnostics["summarizer"]
		}
	} else {
		caps.PromptReady = c.probeModel(ctx, c.promptModel, "prompt", caps.Diagnostics)
	}

	if c.debug {
		log.Printf("[MODELGW] Probe: summarizer=%t prompt=%t diagnostics=%v",
			caps.SummarizerReady, caps.PromptReady, caps.Diagnostics)
	}
	return caps
}

func (c *Client) probeModel(ctx context.Context, model, name string, diagnostics map[string]string) bool {
	if model == "" {
		diagnostics[name] = "no model configured"
		return false
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		diagnostics[name] = err.Error()
		return false
	}
	if _, err := c.api.GetModel(ctx, model); err != nil {
		diagnostics[name] = err.Error()
		return false
	}
	return true
}

// Summarize runs the summarization model over the assembled document.
func (c *Client) Summarize(ctx context.Context, document string) (string, error) {
	return c.complete(ctx, c.summarizerModel, summarySystemPrompt, document, summaryMaxTokens)
}

// Generate runs the generative model with the given prompt pair.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, c.promptModel, system, user, verdictMaxTokens)
}

// complete issues one chat completion. No retries: a failed capability call
// within an analysis run is not retried.
func (c *Client) complete(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	if c.debug {
		log.Printf("[MODELGW] Completion request: model=%s userChars=%d", model, len(user))
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if c.debug {
		log.Printf("[MODELGW] Completion response: model=%s chars=%d", model, len(content))
	}
	return content, nil
}
