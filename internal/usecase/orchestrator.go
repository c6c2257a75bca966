package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/wellnesslens/backend/internal/domain"
)

// runState is the per-page-context analysis state. Completion and failure
// both return to idle; there is no separate terminal state.
type runState int

const (
	stateIdle runState = iota
	stateRunning
)

// OrchestratorConfig holds tunables for the analysis pipeline.
type OrchestratorConfig struct {
	// CapabilityTimeout bounds each individual capability call. A timeout
	// counts as an invocation failure and triggers the fallback strategy.
	CapabilityTimeout  time.Duration
	EnableDebugLogging bool
}

// Orchestrator sequences the analysis pipeline: probe capabilities, extract
// facts, generate a verdict, validate, and assemble the payload for the
// display collaborator. It owns the Idle/Running guard per page context; a
// second trigger while running is dropped, not queued.
type Orchestrator struct {
	prober          domain.CapabilityProber
	capExtractor    FactExtractor
	fallbackExtract FactExtractor
	capGenerator    VerdictGenerator
	ruleGenerator   VerdictGenerator
	validator       *SafetyValidator
	sink            domain.PayloadSink

	capabilityTimeout time.Duration
	debug             bool

	mu     sync.Mutex
	states map[string]runState
}

// NewOrchestrator wires the pipeline together. The sink may be nil when the
// caller consumes the returned payload directly.
func NewOrchestrator(
	prober domain.CapabilityProber,
	summarizer domain.Summarizer,
	generator domain.TextGenerator,
	sink domain.PayloadSink,
	config OrchestratorConfig,
) *Orchestrator {
	timeout := config.CapabilityTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Orchestrator{
		prober:            prober,
		capExtractor:      NewCapabilityFactExtractor(summarizer),
		fallbackExtract:   NewFallbackFactExtractor(),
		capGenerator:      NewCapabilityVerdictGenerator(generator),
		ruleGenerator:     NewRuleVerdictGenerator(),
		validator:         NewSafetyValidator(),
		sink:              sink,
		capabilityTimeout: timeout,
		debug:             config.EnableDebugLogging,
		states:            make(map[string]runState),
	}
}

// Run executes one analysis for the given page context. It returns
// ErrAnalysisBusy without side effects while a run for the same key is in
// flight, and ErrAnalysisFailed when an unexpected error escapes both
// strategies. The guard is always released.
func (o *Orchestrator) Run(ctx context.Context, pageKey string, record *domain.ProductRecord, profile *domain.UserProfile) (payload *domain.AnalysisPayload, err error) {
	if record == nil || record.Title == "" {
		return nil, domain.ErrInvalidRecord
	}
	if profile == nil {
		profile = domain.DefaultProfile()
	}

	if !o.acquire(pageKey) {
		if o.debug {
			log.Printf("[PIPELINE] Dropped re-trigger for %q while running", pageKey)
		}
		return nil, domain.ErrAnalysisBusy
	}
	defer o.release(pageKey)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PIPELINE] Run aborted for %q: %v", pageKey, r)
			if o.sink != nil {
				o.sink.PublishFailure(ctx, pageKey, domain.ErrAnalysisFailed)
			}
			payload, err = nil, domain.ErrAnalysisFailed
		}
	}()

	caps := o.prober.Probe(ctx)
	if o.debug {
		log.Printf("[PIPELINE] Capabilities for %q: summarizer=%t prompt=%t", pageKey, caps.SummarizerReady, caps.PromptReady)
	}

	facts := o.extractFacts(ctx, record, caps)
	verdict := o.generateVerdict(ctx, facts, profile, caps)
	verdict = o.validator.Validate(verdict, facts, profile)

	payload = &domain.AnalysisPayload{
		Verdict:          *verdict,
		Condition:        profile.ResolvedCondition(),
		AllergenWarnings: facts.AllergenWarnings,
		Confidence:       facts.Confidence,
	}

	if o.sink != nil {
		o.sink.Publish(ctx, pageKey, payload)
	}
	return payload, nil
}

// extractFacts attempts the capability-backed strategy only when the
// summarizer is ready; any error or nil result falls back to the
// deterministic extractor. Strategy errors never propagate.
func (o *Orchestrator) extractFacts(ctx context.Context, record *domain.ProductRecord, caps domain.CapabilitySet) *domain.FactSet {
	if caps.SummarizerReady {
		callCtx, cancel := context.WithTimeout(ctx, o.capabilityTimeout)
		facts, err := o.capExtractor.Extract(callCtx, record)
		cancel()
		if err == nil && facts != nil {
			return facts
		}
		if o.debug {
			log.Printf("[PIPELINE] Summarizer extraction failed, using fallback: %v", err)
		}
	}

	facts, err := o.fallbackExtract.Extract(ctx, record)
	if err != nil || facts == nil {
		// The fallback only fails on an invalid record, which Run already
		// rejected. Treat it as a pipeline bug.
		panic(err)
	}
	return facts
}

// generateVerdict mirrors extractFacts for the generation stage.
func (o *Orchestrator) generateVerdict(ctx context.Context, facts *domain.FactSet, profile *domain.UserProfile, caps domain.CapabilitySet) *domain.Verdict {
	if caps.PromptReady {
		callCtx, cancel := context.WithTimeout(ctx, o.capabilityTimeout)
		verdict, err := o.capGenerator.Generate(callCtx, facts, profile)
		cancel()
		if err == nil && verdict != nil {
			return verdict
		}
		if o.debug {
			log.Printf("[PIPELINE] Generative verdict failed, using rules: %v", err)
		}
	}

	verdict, err := o.ruleGenerator.Generate(ctx, facts, profile)
	if err != nil || verdict == nil {
		panic(err)
	}
	return verdict
}

// Running reports whether an analysis is in flight for the page context.
func (o *Orchestrator) Running(pageKey string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[pageKey] == stateRunning
}

func (o *Orchestrator) acquire(pageKey string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.states[pageKey] == stateRunning {
		return false
	}
	o.states[pageKey] = stateRunning
	return true
}

func (o *Orchestrator) release(pageKey string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.states, pageKey)
}
