package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request outcomes reported to the metrics recorder
const (
	OutcomeSuccess    = "success"
	OutcomeEmpty      = "empty"
	OutcomeModelError = "model_error"
	OutcomeError      = "error"
)

// TriageService is the core service for email triage
type TriageService struct {
	extractor    ContentExtractor
	normalizer   TextNormalizer
	classifier   Classifier
	responder    Responder
	cache        CacheRepository
	senders      SenderPolicy
	metrics      MetricsRecorder
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewTriageService creates a new triage service. cache and senders may be nil.
func NewTriageService(
	extractor ContentExtractor,
	normalizer TextNormalizer,
	classifier Classifier,
	responder Responder,
	cache CacheRepository,
	senders SenderPolicy,
	metrics MetricsRecorder,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *TriageService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &TriageService{
		extractor:    extractor,
		normalizer:   normalizer,
		classifier:   classifier,
		responder:    responder,
		cache:        cache,
		senders:      senders,
		metrics:      metrics,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
	}
}

// Triage extracts, normalizes, classifies and answers an email
func (s *TriageService) Triage(ctx context.Context, req TriageRequest) (*TriageResult, error) {
	start := time.Now()
	result, err := s.triage(ctx, req)
	s.metrics.ObserveRequest(outcomeOf(err))
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (s *TriageService) triage(ctx context.Context, req TriageRequest) (*TriageResult, error) {
	content := s.extract(req)
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	processed := s.normalizer.Normalize(content)
	if strings.TrimSpace(processed) == "" {
		return nil, ErrEmptyContent
	}

	classification, err := s.classify(ctx, req.Sender, processed)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveClassification(classification.Category)

	reply, err := s.responder.Respond(ctx, content, classification.Category)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.logger.Info("Email triaged",
		zap.String("id", id),
		zap.String("sender", req.Sender),
		zap.String("category", string(classification.Category)),
		zap.Float64("confidence", classification.Confidence),
		zap.String("model", classification.ModelUsed),
		zap.Bool("cached", classification.Cached))

	return &TriageResult{
		ID:            id,
		Category:      classification.Category,
		Label:         classification.Category.Label(),
		Confidence:    classification.Confidence,
		Reason:        classification.Reason,
		Reply:         reply,
		ModelUsed:     classification.ModelUsed,
		Cached:        classification.Cached,
		ProcessedText: processed,
	}, nil
}

// Classify runs extraction, normalization and classification without drafting a reply
func (s *TriageService) Classify(ctx context.Context, req TriageRequest) (*Classification, error) {
	content := s.extract(req)

	processed := s.normalizer.Normalize(content)
	if strings.TrimSpace(processed) == "" {
		return nil, ErrEmptyContent
	}
	return s.classify(ctx, req.Sender, processed)
}

func (s *TriageService) classify(ctx context.Context, sender, processed string) (*Classification, error) {
	// Check trusted senders first
	if sender != "" && s.senders != nil && s.senders.IsTrusted(sender) {
		s.logger.Info("Skipping classification for trusted sender",
			zap.String("sender", sender),
			zap.String("action", "allowlist_bypass"))

		return &Classification{
			Category:   CategoryProductive,
			Confidence: 1.0,
			Reason:     "Sender domain is trusted",
			ModelUsed:  "allowlist",
			AnalyzedAt: time.Now(),
		}, nil
	}

	key := CacheKey(processed)

	// Check cache if enabled
	if s.cacheEnabled {
		entry, err := s.cache.Get(ctx, key)
		s.metrics.ObserveCacheLookup(err == nil)
		if err == nil {
			s.logger.Debug("Cache hit for content", zap.String("key", key))
			return &Classification{
				Category:   entry.Category,
				Confidence: entry.Confidence,
				Reason:     entry.Reason,
				ModelUsed:  entry.ModelUsed,
				AnalyzedAt: time.Now(),
				Cached:     true,
			}, nil
		}
	}

	classification, err := s.classifier.Classify(ctx, processed)
	if err != nil {
		return nil, err
	}

	// Update cache with result if enabled
	if s.cacheEnabled {
		now := time.Now()
		entry := &CacheEntry{
			Key:        key,
			Category:   classification.Category,
			Confidence: classification.Confidence,
			Reason:     classification.Reason,
			ModelUsed:  classification.ModelUsed,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return classification, nil
}

func (s *TriageService) extract(req TriageRequest) string {
	switch {
	case req.FilePath != "":
		return s.extractor.ExtractFile(req.FilePath)
	case req.Inline:
		return s.extractor.ExtractInline(req.Content)
	default:
		return s.extractor.Extract(req.Content)
	}
}

// CacheKey returns the cache key for normalized text
func CacheKey(processed string) string {
	sum := sha256.Sum256([]byte(processed))
	return hex.EncodeToString(sum[:])
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrEmptyContent):
		return OutcomeEmpty
	case IsModelOutputError(err):
		return OutcomeModelError
	default:
		return OutcomeError
	}
}

// DescribeError returns a short user-facing description of a triage failure
func DescribeError(err error) string {
	switch {
	case errors.Is(err, ErrEmptyContent):
		return "The email content is empty or could not be read."
	case IsModelOutputError(err):
		return fmt.Sprintf("Failed to process the AI response: %v", err)
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}
