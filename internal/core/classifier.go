package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// EmailTextPlaceholder is replaced with the email text in prompt templates
	EmailTextPlaceholder = "<<<EMAIL_TEXT>>>"
	// EmailCategoryPlaceholder is replaced with the category label in the reply template
	EmailCategoryPlaceholder = "<<<EMAIL_CATEGORY>>>"
)

// classificationPayload is the JSON object the model is asked to produce.
// Pointer fields distinguish a missing key from a zero value.
type classificationPayload struct {
	Category   *string  `json:"category" validate:"required"`
	Confidence *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	Reason     *string  `json:"reason" validate:"required"`
}

// LLMClassifier classifies email text with a language model
type LLMClassifier struct {
	generator   TextGenerator
	template    string
	temperature float32
	maxTokens   int
	validate    *validator.Validate
	metrics     MetricsRecorder
	logger      *zap.Logger
}

// NewLLMClassifier creates a new classifier. template must contain EmailTextPlaceholder.
func NewLLMClassifier(
	generator TextGenerator,
	template string,
	temperature float32,
	maxTokens int,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *LLMClassifier {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &LLMClassifier{
		generator:   generator,
		template:    template,
		temperature: temperature,
		maxTokens:   maxTokens,
		validate:    validator.New(),
		metrics:     metrics,
		logger:      logger,
	}
}

// Classify asks the model for a category, a confidence and a reason
func (c *LLMClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	prompt := strings.ReplaceAll(c.template, EmailTextPlaceholder, text)

	start := time.Now()
	raw, err := c.generator.GenerateText(ctx, GenerationRequest{
		Prompt:      prompt,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		JSON:        true,
	})
	c.metrics.ObserveLLMDuration("classify", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to classify email: %w", err)
	}

	payload, err := parseClassification(raw)
	if err != nil {
		c.logger.Warn("Unusable classification response",
			zap.String("model", c.generator.ModelName()),
			zap.Error(err))
		return nil, err
	}

	if err := c.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClassification, err)
	}

	category, err := ParseCategory(*payload.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidClassification, *payload.Category)
	}

	return &Classification{
		Category:   category,
		Confidence: *payload.Confidence,
		Reason:     strings.TrimSpace(*payload.Reason),
		ModelUsed:  c.generator.ModelName(),
		AnalyzedAt: time.Now(),
	}, nil
}

// parseClassification decodes the model output, falling back to the outermost
// brace-delimited span when the model wrapped the JSON in prose or fences.
func parseClassification(raw string) (*classificationPayload, error) {
	raw = strings.TrimSpace(raw)

	var payload classificationPayload
	err := json.Unmarshal([]byte(raw), &payload)
	if err == nil {
		return &payload, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClassification, err)
	}

	jsonStart := strings.IndexByte(raw, '{')
	jsonEnd := strings.LastIndexByte(raw, '}')
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseJSON, err)
	}

	payload = classificationPayload{}
	if err := json.Unmarshal([]byte(raw[jsonStart:jsonEnd+1]), &payload); err != nil {
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClassification, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponseJSON, err)
	}
	return &payload, nil
}
