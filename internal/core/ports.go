package core

import (
	"context"
	"time"
)

// TextGenerator defines the interface for interacting with LLM services
type TextGenerator interface {
	// GenerateText sends the prompt to the model and returns its raw text output
	GenerateText(ctx context.Context, req GenerationRequest) (string, error)

	// ModelName returns the model identifier used for generation
	ModelName() string
}

// Classifier assigns a category to normalized email text
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// Responder drafts a reply to an email of a given category
type Responder interface {
	Respond(ctx context.Context, originalText string, category Category) (string, error)
}

// CacheRepository defines the interface for caching classification results
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// ContentExtractor turns raw input into plain text. Implementations never fail;
// unusable input yields "".
type ContentExtractor interface {
	Extract(raw *string) string
	ExtractInline(raw *string) string
	ExtractFile(path string) string
}

// TextNormalizer prepares extracted text for classification
type TextNormalizer interface {
	Normalize(text string) string
}

// SenderPolicy decides whether a sender bypasses classification
type SenderPolicy interface {
	IsTrusted(sender string) bool
}

// MetricsRecorder receives triage measurements
type MetricsRecorder interface {
	ObserveRequest(outcome string)
	ObserveClassification(category Category)
	ObserveCacheLookup(hit bool)
	ObserveLLMDuration(operation string, d time.Duration)
}

// NopMetrics discards all measurements
type NopMetrics struct{}

func (NopMetrics) ObserveRequest(string) {}
func (NopMetrics) ObserveClassification(Category) {}
func (NopMetrics) ObserveCacheLookup(bool) {}
func (NopMetrics) ObserveLLMDuration(string, time.Duration) {}
