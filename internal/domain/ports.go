package domain

import "context"

// CapabilityProber queries whether the on-device text capabilities are
// present and ready. Probe never fails: any error querying a capability is
// recorded in the returned diagnostics and that capability reported unready.
type CapabilityProber interface {
	Probe(ctx context.Context) CapabilitySet
}

// Summarizer condenses an assembled product document into a short factual
// summary. Calls may suspend for multiple seconds (model inference latency)
// and are treated as fallible.
type Summarizer interface {
	Summarize(ctx context.Context, document string) (string, error)
}

// TextGenerator produces free text from a system instruction and a user
// message. The response carries no format guarantee; callers must parse
// defensively.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ProfileStore is the local preference store holding wellness profiles
// keyed by page context.
type ProfileStore interface {
	Get(ctx context.Context, key string) (*UserProfile, error)
	Put(ctx context.Context, key string, profile *UserProfile) error
	Delete(ctx context.Context, key string) error
}

// PayloadSink receives the final analysis payload, or a generic failure
// notice when a run aborts. It is the display collaborator boundary.
type PayloadSink interface {
	Publish(ctx context.Context, pageKey string, payload *AnalysisPayload)
	PublishFailure(ctx context.Context, pageKey string, err error)
}
