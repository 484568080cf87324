package engine

import (
	"errors"
	"fmt"
)

// Degradation reasons surfaced in SearchResponse metadata when a soft
// dependency failed and the affected feature was neutralised.
const (
	DegradedDefaultLocation = "default_location"
	DegradedEmbedding       = "embedding_unavailable"
	DegradedTagInference    = "tag_inference_unavailable"
	DegradedImpressionLog   = "impression_logging_failed"
)

var (
	// ErrInvalidRequest is the only error class surfaced to callers as a
	// hard failure; everything else degrades.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRetrieval marks an unrecoverable failure while applying hard
	// filters; the orchestrator short-circuits to its failed state.
	ErrRetrieval = errors.New("candidate retrieval failed")

	// ErrScoring marks an unrecoverable failure while scoring candidates.
	ErrScoring = errors.New("candidate scoring failed")
)

// InvalidRequestError carries the offending field for 4xx-style reporting.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

func invalidRequest(field, reason string) error {
	return &InvalidRequestError{Field: field, Reason: reason}
}
