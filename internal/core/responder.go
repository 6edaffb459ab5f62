package core

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	minReplyChars = 10
	maxReplyChars = 2000
	echoPrefixLen = 50
)

// Phrases that reveal the model talking about itself instead of replying
var forbiddenReplyPhrases = []string{
	"como modelo de linguagem",
	"sou uma ia",
	"não consigo",
	"não posso",
	"as a language model",
	"as an ai",
}

var replyPrefixes = strings.NewReplacer(
	"Assunto:", "",
	"Resposta:", "",
	"Subject:", "",
	"Reply:", "",
)

// ResponderSettings are the sampling settings used for reply generation
type ResponderSettings struct {
	Temperature float32
	TopP        float32
	TopK        int32
	MaxTokens   int
}

// DefaultResponderSettings returns settings tuned for short, conservative replies
func DefaultResponderSettings() ResponderSettings {
	return ResponderSettings{
		Temperature: 0.2,
		TopP:        0.8,
		TopK:        40,
		MaxTokens:   2500,
	}
}

// LLMResponder drafts replies with a language model
type LLMResponder struct {
	generator TextGenerator
	template  string
	settings  ResponderSettings
	metrics   MetricsRecorder
	logger    *zap.Logger
}

// NewLLMResponder creates a new responder. template must contain
// EmailTextPlaceholder and EmailCategoryPlaceholder.
func NewLLMResponder(
	generator TextGenerator,
	template string,
	settings ResponderSettings,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *LLMResponder {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &LLMResponder{
		generator: generator,
		template:  template,
		settings:  settings,
		metrics:   metrics,
		logger:    logger,
	}
}

// Respond drafts a reply to originalText appropriate for category
func (r *LLMResponder) Respond(ctx context.Context, originalText string, category Category) (string, error) {
	if strings.TrimSpace(originalText) == "" {
		return "", ErrEmptyContent
	}
	if !category.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	prompt := strings.NewReplacer(
		EmailCategoryPlaceholder, category.Label(),
		EmailTextPlaceholder, originalText,
	).Replace(r.template)

	start := time.Now()
	raw, err := r.generator.GenerateText(ctx, GenerationRequest{
		Prompt:      prompt,
		Temperature: r.settings.Temperature,
		TopP:        r.settings.TopP,
		TopK:        r.settings.TopK,
		MaxTokens:   r.settings.MaxTokens,
	})
	r.metrics.ObserveLLMDuration("respond", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	reply := CleanReply(raw)
	if err := ValidateReply(reply, originalText); err != nil {
		r.logger.Warn("Generated reply rejected",
			zap.String("model", r.generator.ModelName()),
			zap.String("category", string(category)),
			zap.Error(err))
		return "", err
	}

	return reply, nil
}

// CleanReply removes markdown fences and chat-style prefixes from model output
func CleanReply(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		}
	}
	if strings.HasSuffix(text, "```") {
		if i := strings.LastIndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
	}

	return strings.TrimSpace(replyPrefixes.Replace(text))
}

// ValidateReply rejects replies that are too short, too long, speak as an AI
// or echo the start of the original email.
func ValidateReply(reply, originalText string) error {
	if utf8.RuneCountInString(strings.TrimSpace(reply)) < minReplyChars {
		return fmt.Errorf("%w: reply is empty or too short", ErrInvalidGeneratedResponse)
	}
	if utf8.RuneCountInString(reply) > maxReplyChars {
		return fmt.Errorf("%w: reply exceeds %d characters", ErrInvalidGeneratedResponse, maxReplyChars)
	}

	lowered := strings.ToLower(reply)
	for _, phrase := range forbiddenReplyPhrases {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("%w: reply contains %q", ErrInvalidGeneratedResponse, phrase)
		}
	}

	if utf8.RuneCountInString(originalText) > echoPrefixLen {
		prefix := strings.ToLower(string([]rune(originalText)[:echoPrefixLen]))
		if strings.Contains(lowered, prefix) {
			return fmt.Errorf("%w: reply repeats the original email", ErrInvalidGeneratedResponse)
		}
	}

	return nil
}
