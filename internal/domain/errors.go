package domain

import "errors"

var (
	// ErrCapabilityUnavailable is returned when a capability probe reports
	// the requested on-device capability as not ready.
	ErrCapabilityUnavailable = errors.New("capability not available")

	// ErrCapabilityInvocation is returned when a capability call fails
	// (transport error, model error, timeout).
	ErrCapabilityInvocation = errors.New("capability invocation failed")

	// ErrMalformedCapabilityOutput is returned when a capability response
	// cannot be parsed into the expected shape.
	ErrMalformedCapabilityOutput = errors.New("malformed capability output")

	// ErrAnalysisBusy is returned when an analysis run is triggered while
	// one is already in flight for the same page context.
	ErrAnalysisBusy = errors.New("analysis already running")

	// ErrAnalysisFailed is the generic failure surfaced when an unexpected
	// error escapes both the capability and fallback strategies.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrInvalidRecord is returned when the product record is missing the
	// minimum fields needed to analyze anything.
	ErrInvalidRecord = errors.New("invalid product record")

	// ErrProfileNotFound is returned when no profile has been saved for a
	// page context key.
	ErrProfileNotFound = errors.New("profile not found")
)
