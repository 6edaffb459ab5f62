package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

type serviceFixture struct {
	classifier *MockClassifier
	responder  *MockResponder
	cache      *MockCache
	metrics    *MockMetrics
	service    *TriageService
}

func newServiceFixture(cacheEnabled bool) *serviceFixture {
	f := &serviceFixture{
		classifier: new(MockClassifier),
		responder:  new(MockResponder),
		cache:      new(MockCache),
		metrics:    new(MockMetrics),
	}
	f.metrics.On("ObserveRequest", mock.Anything).Maybe()
	f.metrics.On("ObserveClassification", mock.Anything).Maybe()
	f.metrics.On("ObserveCacheLookup", mock.Anything).Maybe()

	f.service = NewTriageService(
		stubExtractor{files: map[string]string{"/tmp/upload.pdf": "Fatura em anexo"}},
		upperNormalizer{},
		f.classifier,
		f.responder,
		f.cache,
		domainPolicy("@trusted.example"),
		f.metrics,
		zap.NewNop(),
		cacheEnabled,
		time.Hour,
	)
	return f
}

func TestTriageService_Triage(t *testing.T) {
	f := newServiceFixture(false)
	ctx := context.Background()

	f.classifier.On("Classify", ctx, "norm:Qual o prazo?").Return(&Classification{
		Category:   CategoryProductive,
		Confidence: 0.8,
		Reason:     "Pergunta sobre prazo",
		ModelUsed:  "mock-model",
	}, nil)
	f.responder.On("Respond", ctx, "Qual o prazo?", CategoryProductive).Return("O prazo é sexta-feira.", nil)

	result, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("Qual o prazo?")})

	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, CategoryProductive, result.Category)
	assert.Equal(t, "Produtivo", result.Label)
	assert.Equal(t, 0.8, result.Confidence)
	assert.Equal(t, "O prazo é sexta-feira.", result.Reply)
	assert.Equal(t, "norm:Qual o prazo?", result.ProcessedText)
	assert.False(t, result.Cached)
	f.classifier.AssertExpectations(t)
	f.responder.AssertExpectations(t)
	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	f.metrics.AssertCalled(t, "ObserveRequest", OutcomeSuccess)
	f.metrics.AssertCalled(t, "ObserveClassification", CategoryProductive)
}

func TestTriageService_FilePathTakesPrecedence(t *testing.T) {
	f := newServiceFixture(false)
	ctx := context.Background()

	f.classifier.On("Classify", ctx, "norm:Fatura em anexo").
		Return(&Classification{Category: CategoryProductive, Confidence: 1}, nil)
	f.responder.On("Respond", ctx, "Fatura em anexo", CategoryProductive).Return("Recebido, obrigado.", nil)

	result, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("ignored"), FilePath: "/tmp/upload.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "Recebido, obrigado.", result.Reply)
}

func TestTriageService_InlineContent(t *testing.T) {
	f := newServiceFixture(false)
	ctx := context.Background()

	f.classifier.On("Classify", ctx, "norm:inline:/etc/report.txt").
		Return(&Classification{Category: CategoryUnproductive, Confidence: 0.6}, nil)
	f.responder.On("Respond", ctx, "inline:/etc/report.txt", CategoryUnproductive).Return("Obrigado pela mensagem.", nil)

	result, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("/etc/report.txt"), Inline: true})

	require.NoError(t, err)
	assert.Equal(t, CategoryUnproductive, result.Category)
	f.classifier.AssertExpectations(t)
}

func TestTriageService_EmptyContent(t *testing.T) {
	f := newServiceFixture(true)

	for _, req := range []TriageRequest{
		{},
		{Content: strPtr("   ")},
		{FilePath: "/tmp/missing.txt"},
	} {
		_, err := f.service.Triage(context.Background(), req)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}

	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	f.metrics.AssertCalled(t, "ObserveRequest", OutcomeEmpty)
}

func TestTriageService_TrustedSender(t *testing.T) {
	f := newServiceFixture(true)
	ctx := context.Background()

	f.responder.On("Respond", ctx, "Bom dia", CategoryProductive).Return("Bom dia! Recebemos sua mensagem.", nil)

	result, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("Bom dia"), Sender: "ana@trusted.example"})

	require.NoError(t, err)
	assert.Equal(t, "allowlist", result.ModelUsed)
	assert.Equal(t, 1.0, result.Confidence)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestTriageService_CacheHit(t *testing.T) {
	f := newServiceFixture(true)
	ctx := context.Background()
	key := CacheKey("norm:Feliz aniversário!")

	f.cache.On("Get", ctx, key).Return(&CacheEntry{
		Key:        key,
		Category:   CategoryUnproductive,
		Confidence: 0.99,
		Reason:     "Felicitação",
		ModelUsed:  "mock-model",
	}, nil)
	f.responder.On("Respond", ctx, "Feliz aniversário!", CategoryUnproductive).Return("Muito obrigado pela lembrança!", nil)

	result, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("Feliz aniversário!")})

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, CategoryUnproductive, result.Category)
	f.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	f.metrics.AssertCalled(t, "ObserveCacheLookup", true)
}

func TestTriageService_CacheMissStoresResult(t *testing.T) {
	f := newServiceFixture(true)
	ctx := context.Background()
	key := CacheKey("norm:Enviar relatório")

	f.cache.On("Get", ctx, key).Return(nil, errors.New("not found"))
	f.cache.On("Set", ctx, mock.MatchedBy(func(e *CacheEntry) bool {
		return e.Key == key && e.Category == CategoryProductive && e.ExpiresAt.Sub(e.CreatedAt) == time.Hour
	})).Return(errors.New("disk full"))
	f.classifier.On("Classify", ctx, "norm:Enviar relatório").
		Return(&Classification{Category: CategoryProductive, Confidence: 0.7, ModelUsed: "mock-model"}, nil)
	f.responder.On("Respond", ctx, "Enviar relatório", CategoryProductive).Return("Segue o relatório solicitado.", nil)

	result, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("Enviar relatório")})

	require.NoError(t, err, "cache write failures must not fail the request")
	assert.False(t, result.Cached)
	f.cache.AssertExpectations(t)
	f.metrics.AssertCalled(t, "ObserveCacheLookup", false)
}

func TestTriageService_ClassifierError(t *testing.T) {
	f := newServiceFixture(false)
	ctx := context.Background()

	f.classifier.On("Classify", ctx, mock.Anything).Return(nil, ErrInvalidResponseJSON)

	_, err := f.service.Triage(ctx, TriageRequest{Content: strPtr("texto")})

	assert.ErrorIs(t, err, ErrInvalidResponseJSON)
	f.responder.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything)
	f.metrics.AssertCalled(t, "ObserveRequest", OutcomeModelError)
}

func TestTriageService_Classify(t *testing.T) {
	f := newServiceFixture(false)
	ctx := context.Background()

	f.classifier.On("Classify", ctx, "norm:Obrigado!").
		Return(&Classification{Category: CategoryUnproductive, Confidence: 0.9}, nil)

	c, err := f.service.Classify(ctx, TriageRequest{Content: strPtr("Obrigado!")})

	require.NoError(t, err)
	assert.Equal(t, CategoryUnproductive, c.Category)
	f.responder.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything)
}

func TestDescribeError(t *testing.T) {
	assert.Contains(t, DescribeError(ErrEmptyContent), "empty")
	assert.Contains(t, DescribeError(ErrInvalidClassification), "AI response")
	assert.Contains(t, DescribeError(errors.New("boom")), "unexpected")
}
