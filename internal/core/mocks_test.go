package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockGenerator implements TextGenerator for testing
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) ModelName() string {
	return "mock-model"
}

// MockClassifier implements Classifier for testing
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	args := m.Called(ctx, text)
	c, _ := args.Get(0).(*Classification)
	return c, args.Error(1)
}

// MockResponder implements Responder for testing
type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Respond(ctx context.Context, originalText string, category Category) (string, error) {
	args := m.Called(ctx, originalText, category)
	return args.String(0), args.Error(1)
}

// MockCache implements CacheRepository for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	args := m.Called(ctx, key)
	e, _ := args.Get(0).(*CacheEntry)
	return e, args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, entry *CacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Cleanup(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMetrics implements MetricsRecorder for testing
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) ObserveRequest(outcome string) {
	m.Called(outcome)
}

func (m *MockMetrics) ObserveClassification(category Category) {
	m.Called(category)
}

func (m *MockMetrics) ObserveCacheLookup(hit bool) {
	m.Called(hit)
}

func (m *MockMetrics) ObserveLLMDuration(operation string, d time.Duration) {
	m.Called(operation, d)
}

// stubExtractor returns the raw content unchanged, or the mapped content for a file path
type stubExtractor struct {
	files map[string]string
}

func (s stubExtractor) Extract(raw *string) string {
	if raw == nil {
		return ""
	}
	return *raw
}

func (s stubExtractor) ExtractInline(raw *string) string {
	if raw == nil {
		return ""
	}
	return "inline:" + *raw
}

func (s stubExtractor) ExtractFile(path string) string {
	return s.files[path]
}

// upperNormalizer marks its output so tests can tell processed from raw text
type upperNormalizer struct{}

func (upperNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	return "norm:" + text
}

type domainPolicy string

func (d domainPolicy) IsTrusted(sender string) bool {
	return len(sender) > len(d) && sender[len(sender)-len(d):] == string(d)
}
