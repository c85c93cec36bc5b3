package domain

import (
	"context"
)

// Classifier attempts one classification of the given image bytes. A failed
// or unconfigured classifier returns an error wrapping
// ErrClassificationUnavailable; the caller decides whether to substitute the
// fallback analyzer.
type Classifier interface {
	Classify(ctx context.Context, data []byte, mimeType string) (*ClassificationResult, error)
}

// FallbackAnalyzer produces a complete synthetic result without external
// dependencies. It must never fail.
type FallbackAnalyzer interface {
	Simulate(mimeType string) *ClassificationResult
}

// InsightSource computes the clinical insight snapshot attached to every
// response. Implementations tolerate an empty dataset by returning an empty
// snapshot rather than an error.
type InsightSource interface {
	Insights(label Label) ClinicalInsights
}

// OverloadChecker reports whether the system is under resource pressure and
// should reject new requests before processing.
type OverloadChecker interface {
	Check(ctx context.Context) error
}

// ConfigManager provides access to application configuration.
type ConfigManager interface {
	GetConfig() *Config
	Validate() error
}
